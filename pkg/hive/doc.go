/*
Package hive provides a high-level, ergonomic API for reading Windows
registry hive files.

# Quick Start

Open a hive and read a value:

	r, err := hive.Open("system.hive", hive.OpenOptions{})
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()

	key, err := r.Find(`ControlSet001\Services\Tcpip\Parameters`)
	if err != nil {
	    log.Fatal(err)
	}
	v, err := r.GetValue(key, "Hostname")
	if err != nil {
	    log.Fatal(err)
	}
	name, _ := r.ValueString(v, hive.ReadOptions{})

# Features

  - Zero-copy parsing of NK/VK/SK/LF/LH/LI/RI cells
  - Transaction-log reconciliation (.LOG, .LOG1, .LOG2) via OpenWithLogs
  - Tolerant mode for best-effort traversal of mildly corrupt hives
  - Passive or on-demand structural diagnostics
  - Registry limits to bound traversal of hostile or damaged input

# Opening a Hive

Open accepts a plain path. Tolerant mode allows traversal to continue past
bounded inconsistencies instead of failing the whole open:

	r, err := hive.Open("system.hive", hive.OpenOptions{
	    Tolerant:    true,
	    MaxCellSize: 64 << 20,
	})

When the hive was not cleanly unmounted, its transaction logs hold pending
writes that never made it into the base file. OpenWithLogs replays any
sidecar .LOG1/.LOG2 (or legacy .LOG) file it finds next to path before
constructing the reader:

	r, image, report, err := hive.OpenWithLogs("system.hive", hive.TxLogOptions{
	    Logger: slog.Default(),
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()
	log.Printf("replayed %d log entries (%s)", report.EntriesApplied, report.StoppedReason)

	// Persist the reconciled image back to disk.
	err = hive.Save(image, &hive.FileWriter{Path: "system.hive"}, hive.WriteOptions{})

# Navigating the Tree

	root, _ := r.Root()
	children, _ := r.Subkeys(root)
	for _, child := range children {
	    meta, _ := r.StatKey(child)
	    fmt.Println(meta.Name)
	}

BuildTreeStructure flattens the whole tree under r.Root() into a pre-order
slice of TreeNode for callers that want to traverse repeatedly without
re-issuing calls through the Reader.

# Registry Limits

Limits bound how wide traversal will go (subkeys and values per key) and how
large a single value or the whole image may be, which matters when reading
hives of unknown provenance. Tree depth is not among the checked limits:

	// Windows defaults.
	hive.Open(path, hive.OpenOptions{})

	// Conservative limits for safety-critical or sandboxed use.
	limits := hive.StrictLimits()

# Diagnostics

Diagnose performs an exhaustive scan of every HBIN, NK, VK, and data cell
and returns every issue found rather than stopping at the first one:

	report, err := r.Diagnose()

Passive diagnostics collected during ordinary traversal (OpenOptions.CollectDiagnostics)
are available without a dedicated scan via r.GetDiagnostics().
*/
package hive
