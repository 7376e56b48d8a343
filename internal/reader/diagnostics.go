package reader

import (
	"sync"

	"github.com/duskforge/reghive/pkg/types"
)

// diagCollector accumulates diagnostics surfaced during ordinary read calls,
// when OpenOptions.CollectDiagnostics is set. It stays nil otherwise, so
// every hot-path call site pays only a nil check.
type diagCollector struct {
	report *types.DiagnosticReport
	mu     sync.Mutex
}

func newDiagCollector() *diagCollector {
	return &diagCollector{report: types.NewDiagnosticReport()}
}

func (dc *diagCollector) record(d types.Diagnostic) {
	if dc == nil {
		return
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.report.Add(d)
}

func (dc *diagCollector) getReport() *types.DiagnosticReport {
	if dc == nil {
		return nil
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.report.Finalize()
	return dc.report
}

// diagEntry is the shared shape behind diagStructure/diagData/diagIntegrity:
// every category differs only in which Category value it stamps and whether
// a DiagContext applies, so they all build from this one literal.
func diagEntry(category types.DiagCategory, severity types.Severity, offset uint64, structure, issue string, expected, actual interface{}, ctx *types.DiagContext, repair *types.RepairAction) types.Diagnostic {
	return types.Diagnostic{
		Severity:  severity,
		Category:  category,
		Offset:    offset,
		Structure: structure,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
		Context:   ctx,
		Repair:    repair,
	}
}

// diagStructure reports a malformed on-disk structure (bad signature, size,
// or offset field) rather than a data-content problem.
func diagStructure(severity types.Severity, offset uint64, structure, issue string, expected, actual interface{}, repair *types.RepairAction) types.Diagnostic {
	return diagEntry(types.DiagStructure, severity, offset, structure, issue, expected, actual, nil, repair)
}

// diagData reports a failure to decode a structure's payload once its
// framing was otherwise sound.
func diagData(severity types.Severity, offset uint64, structure, issue string, expected, actual interface{}, ctx *types.DiagContext, repair *types.RepairAction) types.Diagnostic {
	return diagEntry(types.DiagData, severity, offset, structure, issue, expected, actual, ctx, repair)
}

// diagIntegrity reports a cross-structure inconsistency: a count that
// disagrees with its paired offset, a cycle, an out-of-range reference.
func diagIntegrity(severity types.Severity, offset uint64, structure, issue string, expected, actual interface{}, ctx *types.DiagContext, repair *types.RepairAction) types.Diagnostic {
	return diagEntry(types.DiagIntegrity, severity, offset, structure, issue, expected, actual, ctx, repair)
}
