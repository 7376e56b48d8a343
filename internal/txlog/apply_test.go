package txlog

import (
	"testing"

	"github.com/duskforge/reghive/internal/format"
)

func TestReconcileAppliesContiguousNewSchemeEntries(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)

	e1 := buildNewSchemeEntry(1, 0x1000, 0, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	e2 := buildNewSchemeEntry(2, 0x1000, 4, []byte{0xCA, 0xFE, 0xBA, 0xBE})
	log1 := append(buildBaseBlock(0, 0, 0x1000), e1...)
	log1 = append(log1, e2...)

	image, report, err := Reconcile(base, log1)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.EntriesApplied != 2 {
		t.Errorf("entriesApplied: got %d want 2", report.EntriesApplied)
	}
	if report.FinalSequence != 2 {
		t.Errorf("finalSequence: got %d want 2", report.FinalSequence)
	}

	got := image[format.HeaderSize : format.HeaderSize+8]
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE, 0xBA, 0xBE}
	if string(got) != string(want) {
		t.Errorf("applied bytes: got %x want %x", got, want)
	}

	head, err := format.ParseHeader(image)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if head.PrimarySequence != 2 || head.SecondarySequence != 2 {
		t.Errorf("sequences not equalized: primary=%d secondary=%d", head.PrimarySequence, head.SecondarySequence)
	}
	ok, err := format.VerifyHeaderChecksum(image)
	if err != nil {
		t.Fatalf("VerifyHeaderChecksum: %v", err)
	}
	if !ok {
		t.Errorf("expected checksum to validate after replay")
	}
}

func TestReconcileGrowsHiveBinsDataSize(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)

	e1 := buildNewSchemeEntry(1, 0x2000, 0x1000, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	log1 := append(buildBaseBlock(0, 0, 0x1000), e1...)

	image, report, err := Reconcile(base, log1)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.EntriesApplied != 1 {
		t.Errorf("entriesApplied: got %d want 1", report.EntriesApplied)
	}

	wantLen := format.HeaderSize + 0x2000
	if len(image) != wantLen {
		t.Fatalf("image not grown: got %d bytes want %d", len(image), wantLen)
	}

	head, err := format.ParseHeader(image)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if head.HiveBinsDataSize != 0x2000 {
		t.Errorf("hiveBinsDataSize: got 0x%x want 0x2000", head.HiveBinsDataSize)
	}

	ok, err := format.VerifyHeaderChecksum(image)
	if err != nil {
		t.Fatalf("VerifyHeaderChecksum: %v", err)
	}
	if !ok {
		t.Errorf("expected checksum to validate after growth")
	}
}

func TestReconcileStopsAtSequenceGap(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)

	e1 := buildNewSchemeEntry(1, 0x1000, 0, []byte{1, 2, 3, 4})
	e3 := buildNewSchemeEntry(3, 0x1000, 4, []byte{5, 6, 7, 8}) // sequence 2 missing
	log1 := append(buildBaseBlock(0, 0, 0x1000), e1...)
	log1 = append(log1, e3...)

	_, report, err := Reconcile(base, log1)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.EntriesApplied != 1 {
		t.Errorf("entriesApplied: got %d want 1", report.EntriesApplied)
	}
	if report.FinalSequence != 1 {
		t.Errorf("finalSequence: got %d want 1", report.FinalSequence)
	}
}

func TestReconcileStopsAtHashMismatch(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)

	e1 := buildNewSchemeEntry(1, 0x1000, 0, []byte{1, 2, 3, 4})
	e2 := buildNewSchemeEntry(2, 0x1000, 4, []byte{5, 6, 7, 8})
	e2[len(e2)-1] ^= 0xFF // corrupt body after hash was computed

	log1 := append(buildBaseBlock(0, 0, 0x1000), e1...)
	log1 = append(log1, e2...)

	image, report, err := Reconcile(base, log1)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.EntriesApplied != 1 {
		t.Errorf("entriesApplied: got %d want 1", report.EntriesApplied)
	}
	if report.FinalSequence != 1 {
		t.Errorf("finalSequence: got %d want 1", report.FinalSequence)
	}
	got := image[format.HeaderSize : format.HeaderSize+4]
	if string(got) != string([]byte{1, 2, 3, 4}) {
		t.Errorf("expected only first entry applied, got %x", got)
	}
}

func TestReconcileMergesTwoLogsBySequenceRegardlessOfOrder(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)

	e1 := buildNewSchemeEntry(1, 0x1000, 0, []byte{0x11})
	e2 := buildNewSchemeEntry(2, 0x1000, 1, []byte{0x22})

	log1 := append(buildBaseBlock(0, 0, 0x1000), e1...)
	log2 := append(buildBaseBlock(0, 0, 0x1000), e2...)

	imageAB, reportAB, err := Reconcile(base, log1, log2)
	if err != nil {
		t.Fatalf("Reconcile(log1, log2): %v", err)
	}
	imageBA, reportBA, err := Reconcile(base, log2, log1)
	if err != nil {
		t.Fatalf("Reconcile(log2, log1): %v", err)
	}

	if reportAB.FinalSequence != reportBA.FinalSequence {
		t.Errorf("final sequence depends on argument order: %d vs %d", reportAB.FinalSequence, reportBA.FinalSequence)
	}
	if string(imageAB) != string(imageBA) {
		t.Errorf("resulting image depends on argument order")
	}
	if reportAB.EntriesApplied != 2 {
		t.Errorf("entriesApplied: got %d want 2", reportAB.EntriesApplied)
	}
}

func TestReconcileAppliesOldSchemeLogWholesale(t *testing.T) {
	base := buildBaseBlock(0, 0, pageSize)

	bitmap := []byte{0x01}
	page := make([]byte, pageSize)
	for i := range page {
		page[i] = 0x42
	}
	oldLog := append(append([]byte{}, buildBaseBlock(9, 8, pageSize)...), bitmap...)
	oldLog = append(oldLog, page...)

	image, report, err := Reconcile(base, oldLog)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.PagesApplied != 1 {
		t.Errorf("pagesApplied: got %d want 1", report.PagesApplied)
	}
	if report.FinalSequence != 9 {
		t.Errorf("finalSequence: got %d want 9", report.FinalSequence)
	}
	if image[format.HeaderSize] != 0x42 {
		t.Errorf("expected dirty page applied to image")
	}
}

func TestReconcileWithNoLogsLeavesSequenceUnchanged(t *testing.T) {
	base := buildBaseBlock(5, 5, 0x1000)
	image, report, err := Reconcile(base)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.EntriesApplied != 0 {
		t.Errorf("entriesApplied: got %d want 0", report.EntriesApplied)
	}
	if string(image) != string(base) {
		t.Errorf("expected image unchanged when no logs are supplied")
	}
}

func TestApplierApplyWrapsReconcile(t *testing.T) {
	base := buildBaseBlock(0, 0, 0x1000)
	entry := buildNewSchemeEntry(1, 0x1000, 0, []byte{0x01, 0x02})
	log1 := append(buildBaseBlock(0, 0, 0x1000), entry...)

	a := &Applier{}
	image, err := a.Apply(base, log1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := image[format.HeaderSize : format.HeaderSize+2]
	if string(got) != string([]byte{0x01, 0x02}) {
		t.Errorf("applied bytes: got %x", got)
	}
}
