package hive

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/duskforge/reghive/internal/reader"
	"github.com/duskforge/reghive/internal/txlog"
)

// Open opens a registry hive file for reading.
// Returns a Reader interface that can be used to query the hive tree.
// The caller must call Close() when done to release resources.
//
// Example:
//
//	r, err := hive.Open("system.hive", hive.OpenOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func Open(path string, opts OpenOptions) (Reader, error) {
	return reader.Open(path, opts)
}

// OpenBytes opens a registry hive from a byte slice.
// Returns a Reader interface that can be used to query the hive tree.
// The caller must call Close() when done to release resources.
//
// Example:
//
//	data, _ := os.ReadFile("system.hive")
//	r, err := hive.OpenBytes(data, hive.OpenOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func OpenBytes(buf []byte, opts OpenOptions) (Reader, error) {
	return reader.OpenBytes(buf, opts)
}

// LogApplyReport mirrors txlog.Report, surfaced through the hive package so
// callers don't need to import the internal txlog package directly.
type LogApplyReport = txlog.Report

// OpenWithLogs opens the hive at path after replaying its sidecar
// transaction logs against it. Log1Path/Log2Path default to path+".LOG1"
// and path+".LOG2"; if neither resolves to an existing file, the legacy
// single path+".LOG" file is tried instead. Any sidecar that is missing is
// treated as absent rather than an error, so a hive that was cleanly shut
// down (no logs, or empty logs) opens unchanged.
//
// The returned image is the reconciled bytes backing the Reader; pass it to
// Save to persist the replayed state back to disk.
func OpenWithLogs(path string, opts TxLogOptions) (Reader, []byte, LogApplyReport, error) {
	base, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, LogApplyReport{}, fmt.Errorf("hive: open base image: %w", err)
	}

	log1 := opts.Log1Path
	if log1 == "" {
		log1 = path + ".LOG1"
	}
	log2 := opts.Log2Path
	if log2 == "" {
		log2 = path + ".LOG2"
	}

	var logs [][]byte
	for _, p := range []string{log1, log2} {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, nil, LogApplyReport{}, fmt.Errorf("hive: read %s: %w", p, err)
		}
		logs = append(logs, data)
	}
	if len(logs) == 0 {
		if data, err := os.ReadFile(path + ".LOG"); err == nil {
			logs = append(logs, data)
		} else if !os.IsNotExist(err) {
			return nil, nil, LogApplyReport{}, fmt.Errorf("hive: read %s.LOG: %w", path, err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if len(logs) == 0 {
		r, err := reader.OpenBytes(base, opts.Open)
		return r, base, LogApplyReport{StoppedReason: "no sidecar logs present"}, err
	}

	image, report, err := txlog.Reconcile(base, logs...)
	if err != nil {
		logger.Warn("transaction log replay failed, falling back to base image", "error", err)
		r, openErr := reader.OpenBytes(base, opts.Open)
		return r, base, report, openErr
	}
	logger.Info("transaction log replay complete",
		"entriesApplied", report.EntriesApplied,
		"pagesApplied", report.PagesApplied,
		"finalSequence", report.FinalSequence,
		"stoppedReason", report.StoppedReason,
	)

	r, err := reader.OpenBytes(image, opts.Open)
	return r, image, report, err
}
