package reader

import (
	"fmt"
	"math"
	"time"

	"github.com/duskforge/reghive/internal/buf"
	"github.com/duskforge/reghive/internal/format"
	"github.com/duskforge/reghive/pkg/types"
)

const (
	confidenceLow    = 0.8
	confidenceMedium = 0.9
	confidenceHigh   = 0.95

	minAllocatedCellSize = 8 // smallest cell that could hold anything meaningful
	maxOrphansReported   = 10

	// maxAuditDepth bounds the tree walk independently of Limits.MaxTreeDepth
	// so a cyclic or pathologically deep hive ends the scan with a
	// diagnostic instead of exhausting the goroutine stack.
	maxAuditDepth = types.WindowsMaxTreeDepthDeep
)

// hiveAuditor holds the state accumulated across one exhaustive Diagnose()
// pass: the report being built, cycle/orphan tracking, and scan counters.
type hiveAuditor struct {
	r             *reader
	report        *types.DiagnosticReport
	visitedNodes  map[uint32]bool
	orphanedCells map[uint32]bool
	startTime     time.Time
	cellCount     int
	nodeCount     int
	valueCount    int
}

func newHiveAuditor(r *reader) *hiveAuditor {
	return &hiveAuditor{
		r:             r,
		report:        types.NewDiagnosticReport(),
		visitedNodes:  make(map[uint32]bool),
		orphanedCells: make(map[uint32]bool),
		startTime:     time.Now(),
	}
}

// run performs the audit: header, bins, cell catalog, tree walk and orphan
// detection, then calls the auditCounts hook, which currently checks nothing.
func (a *hiveAuditor) run() (*types.DiagnosticReport, error) {
	a.auditHeader()
	a.auditBins()
	a.catalogCells()
	a.walkTree(types.NodeID(a.r.head.RootCellOffset), "", 0)
	a.reportOrphans()
	a.auditCounts()

	a.report.FileSize = int64(len(a.r.buf))
	a.report.ScanTime = time.Since(a.startTime)
	a.report.Finalize()
	return a.report, nil
}

// cellFieldOffset computes the absolute file offset of a field inside a
// cell, given the cell's NodeID/ValueID-style offset (relative to the first
// HBIN) and the field's offset within the cell payload.
func cellFieldOffset(cellOffset uint32, fieldOffset int) uint64 {
	return uint64(format.HeaderSize) + uint64(cellOffset) + uint64(format.CellHeaderSize) + uint64(fieldOffset)
}

func (a *hiveAuditor) auditHeader() {
	head := a.r.head

	if !head.Clean() {
		a.report.Add(diagStructure(
			types.SevWarning,
			uint64(format.REGFPrimarySeqOffset),
			"REGF",
			"primary and secondary sequence numbers differ; hive may not have closed cleanly",
			head.PrimarySequence,
			head.SecondarySequence,
			&types.RepairAction{
				Type:        types.RepairDefault,
				Description: "sync sequence numbers to mark the hive clean",
				Confidence:  confidenceLow,
				Risk:        types.RiskLow,
			},
		))
	}

	if head.RootCellOffset == 0 || head.RootCellOffset >= head.HiveBinsDataSize {
		a.report.Add(diagStructure(
			types.SevCritical,
			uint64(format.REGFRootCellOffset),
			"REGF",
			"root cell offset is invalid",
			fmt.Sprintf("offset < %d", head.HiveBinsDataSize),
			head.RootCellOffset,
			nil,
		))
	}

	if head.HiveBinsDataSize%format.HBINAlignment != 0 {
		a.report.Add(diagStructure(
			types.SevWarning,
			uint64(format.REGFDataSizeOffset),
			"REGF",
			fmt.Sprintf("hive bins data size not aligned to 0x%x", format.HBINAlignment),
			"aligned size",
			head.HiveBinsDataSize,
			nil,
		))
	}
}

func (a *hiveAuditor) auditBins() {
	dataEnd := int(format.HeaderSize) + int(a.r.head.HiveBinsDataSize)
	idx := 0

	for offset := int(format.HeaderSize); offset < dataEnd && offset < len(a.r.buf); idx++ {
		hbin, next, err := format.NextHBIN(a.r.buf, offset)
		if err != nil {
			a.report.Add(diagStructure(
				types.SevCritical,
				uint64(offset),
				"HBIN",
				fmt.Sprintf("HBIN %d failed validation: %v", idx, err),
				"valid HBIN structure",
				"corrupt or truncated",
				nil,
			))
			return
		}

		wantOffset := uint32(offset - int(format.HeaderSize))
		if hbin.FileOffset != wantOffset {
			a.report.Add(diagStructure(
				types.SevError,
				uint64(offset+format.HBINFileOffsetField),
				"HBIN",
				fmt.Sprintf("HBIN %d file offset mismatch", idx),
				wantOffset,
				hbin.FileOffset,
				&types.RepairAction{
					Type:        types.RepairReplace,
					Description: fmt.Sprintf("rewrite HBIN file offset to 0x%x", wantOffset),
					Confidence:  1.0,
					Risk:        types.RiskLow,
					AutoApply:   true,
				},
			))
		}

		offset = next
	}
}

// catalogCells records every allocated cell's offset so the tree walk can,
// by elimination, determine which cells survive unreferenced.
func (a *hiveAuditor) catalogCells() {
	dataEnd := int(format.HeaderSize) + int(a.r.head.HiveBinsDataSize)

	for offset := int(format.HeaderSize); offset < dataEnd && offset < len(a.r.buf); {
		hbin, next, err := format.NextHBIN(a.r.buf, offset)
		if err != nil {
			return // already reported by auditBins
		}

		cellEnd := offset + int(hbin.Size)
		for cell := offset + format.HBINHeaderSize; cell < cellEnd; {
			if cell+format.CellHeaderSize > len(a.r.buf) {
				break
			}
			size := int32(buf.Uint32LE(a.r.buf[cell : cell+format.CellHeaderSize]))
			allocated := size < 0
			if allocated {
				size = -size
			}
			if size < minAllocatedCellSize {
				a.report.Add(diagStructure(
					types.SevError,
					uint64(cell),
					"CELL",
					fmt.Sprintf("implausible cell size %d", size),
					fmt.Sprintf(">= %d", minAllocatedCellSize),
					size,
					nil,
				))
				break
			}
			if allocated {
				a.orphanedCells[uint32(cell-int(format.HeaderSize))] = true
				a.cellCount++
			}
			cell += int(size)
		}

		offset = next
	}
}

func (a *hiveAuditor) walkTree(node types.NodeID, path string, depth int) {
	offset := uint32(node)

	if depth > maxAuditDepth {
		a.report.Add(diagIntegrity(
			types.SevError,
			cellFieldOffset(offset, 0),
			"NK",
			fmt.Sprintf("tree depth exceeds %d at %s, treating as a cycle", maxAuditDepth, path),
			"bounded depth",
			depth,
			&types.DiagContext{KeyPath: path, CellOffset: offset},
			nil,
		))
		return
	}
	if a.visitedNodes[offset] {
		a.report.Add(diagIntegrity(
			types.SevError,
			cellFieldOffset(offset, 0),
			"NK",
			"cycle detected at "+path,
			"acyclic tree",
			"cycle",
			&types.DiagContext{KeyPath: path, CellOffset: offset},
			nil,
		))
		return
	}
	a.visitedNodes[offset] = true
	delete(a.orphanedCells, offset)

	nk, err := a.r.nk(node)
	if err != nil {
		a.report.Add(diagData(
			types.SevError,
			cellFieldOffset(offset, 0),
			"NK",
			fmt.Sprintf("failed to read NK at %s: %v", path, err),
			"valid NK record",
			"corrupt or truncated",
			&types.DiagContext{KeyPath: path, CellOffset: offset},
			nil,
		))
		return
	}
	a.nodeCount++

	name, err := DecodeKeyName(nk)
	if err != nil {
		name = fmt.Sprintf("(corrupt_name_0x%x)", offset)
	}
	if path != "" {
		path += `\`
	}
	path += name

	a.auditNK(nk, offset, path)

	if nk.ValueCount > 0 && nk.ValueListOffset != format.InvalidOffset {
		delete(a.orphanedCells, nk.ValueListOffset)
	}
	if nk.SubkeyCount > 0 && nk.SubkeyListOffset != format.InvalidOffset {
		delete(a.orphanedCells, nk.SubkeyListOffset)
	}

	a.auditValues(node, path)

	subkeys, err := a.r.Subkeys(node)
	if err != nil {
		return
	}
	for _, child := range subkeys {
		a.walkTree(child, path, depth+1)
	}
}

// danglingCheck is one "count says N but the paired offset field disagrees"
// rule, applied identically to the subkey and value list pairs in auditNK.
type danglingCheck struct {
	count        uint32
	listOffset   uint32
	fieldOffset  int
	label        string
	maxListBound uint32
}

func (a *hiveAuditor) auditNK(nk format.NKRecord, offset uint32, path string) {
	ctx := &types.DiagContext{KeyPath: path, CellOffset: offset}

	if nk.SecurityOffset != format.InvalidOffset && nk.SecurityOffset != 0 {
		delete(a.orphanedCells, nk.SecurityOffset)
	}
	if nk.ClassNameOffset != format.InvalidOffset && nk.ClassNameOffset != 0 {
		delete(a.orphanedCells, nk.ClassNameOffset)
	}

	if nk.LastWriteRaw == 0 {
		a.report.Add(diagData(
			types.SevInfo,
			cellFieldOffset(offset, format.NKLastWriteOffset),
			"NK", "key has a zero timestamp", "non-zero timestamp", uint64(0), ctx, nil,
		))
	}

	checks := [2]danglingCheck{
		{nk.SubkeyCount, nk.SubkeyListOffset, format.NKSubkeyListOffset, "subkey", a.r.head.HiveBinsDataSize},
		{nk.ValueCount, nk.ValueListOffset, format.NKValueListOffset, "value", a.r.head.HiveBinsDataSize},
	}
	for _, c := range checks {
		a.auditListPointer(c, offset, ctx)
	}
}

func (a *hiveAuditor) auditListPointer(c danglingCheck, offset uint32, ctx *types.DiagContext) {
	switch {
	case c.count > 0 && c.listOffset == math.MaxUint32:
		a.report.Add(diagIntegrity(
			types.SevError,
			cellFieldOffset(offset, c.fieldOffset),
			"NK",
			fmt.Sprintf("%s count > 0 but list offset is invalid", c.label),
			uint32(0), c.count, ctx,
			&types.RepairAction{
				Type:        types.RepairReplace,
				Description: fmt.Sprintf("set %s count to 0", c.label),
				Confidence:  confidenceMedium,
				Risk:        types.RiskLow,
				AutoApply:   true,
			},
		))
	case c.count == 0 && c.listOffset != format.InvalidOffset && c.listOffset != 0:
		a.report.Add(diagIntegrity(
			types.SevWarning,
			cellFieldOffset(offset, c.fieldOffset),
			"NK",
			fmt.Sprintf("%s count is 0 but list offset is 0x%X, expected 0xFFFFFFFF", c.label, c.listOffset),
			format.InvalidOffset, c.listOffset, ctx,
			&types.RepairAction{
				Type:        types.RepairDefault,
				Description: fmt.Sprintf("set %s list offset to InvalidOffset", c.label),
				Confidence:  confidenceHigh,
				Risk:        types.RiskLow,
				AutoApply:   true,
			},
		))
	case c.count > 0 && c.listOffset != format.InvalidOffset && c.listOffset >= c.maxListBound:
		a.report.Add(diagIntegrity(
			types.SevError,
			cellFieldOffset(offset, c.fieldOffset),
			"NK",
			fmt.Sprintf("%s list offset 0x%X exceeds hive size 0x%X", c.label, c.listOffset, c.maxListBound),
			fmt.Sprintf("< 0x%X", c.maxListBound), c.listOffset, ctx, nil,
		))
	}
}

func (a *hiveAuditor) auditValues(node types.NodeID, path string) {
	values, err := a.r.Values(node)
	if err != nil {
		return
	}

	for _, vid := range values {
		a.valueCount++
		offset := uint32(vid)
		delete(a.orphanedCells, offset)

		if _, err := a.r.StatValue(vid); err != nil {
			a.report.Add(diagData(
				types.SevError,
				uint64(format.HeaderSize)+uint64(offset),
				"VK",
				fmt.Sprintf("failed to read VK: %v", err),
				"valid VK record", "corrupt", &types.DiagContext{KeyPath: path, CellOffset: offset}, nil,
			))
			continue
		}
		// A data-read failure here would be surfaced by passive diagnostics
		// if the caller enabled them; the audit doesn't duplicate that.
		_, _ = a.r.ValueBytes(vid, types.ReadOptions{})
	}
}

func (a *hiveAuditor) reportOrphans() {
	orphans := len(a.orphanedCells)
	if orphans == 0 {
		return
	}

	a.report.Add(types.Diagnostic{
		Severity:  types.SevWarning,
		Category:  types.DiagIntegrity,
		Structure: "HIVE",
		Issue:     fmt.Sprintf("%d cells are not referenced by the tree", orphans),
		Expected:  "all cells referenced",
		Actual:    orphans,
	})

	reported := 0
	for offset := range a.orphanedCells {
		if reported >= maxOrphansReported {
			break
		}
		a.report.Add(diagIntegrity(
			types.SevInfo,
			uint64(format.HeaderSize)+uint64(offset),
			"CELL", "orphaned cell not referenced by tree", "referenced", "orphaned", nil, nil,
		))
		reported++
	}
}

// auditCounts exists as a hook for scan-wide tallies; the per-structure
// checks above already cover every known corruption pattern, so this is
// currently a no-op recording point.
func (a *hiveAuditor) auditCounts() {}
