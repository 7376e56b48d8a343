package txlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/duskforge/reghive/internal/format"
)

// Report summarizes how far transaction-log replay got.
type Report struct {
	EntriesApplied int
	PagesApplied   int
	FinalSequence  uint32
	StoppedReason  string
}

// Reconcile replays up to two transaction logs against base, returning a new
// image with every contiguous, hash-verified entry starting at
// secondary_sequence+1 applied. Replay stops at the first sequence gap or
// hash mismatch; entries from two new-scheme logs are merged by sequence
// number, so either argument order converges to the same result.
func Reconcile(base []byte, logs ...[]byte) ([]byte, Report, error) {
	head, err := format.ParseHeader(base)
	if err != nil {
		return nil, Report{}, fmt.Errorf("txlog: base block: %w", err)
	}

	image := append([]byte(nil), base...)

	bySeq := make(map[uint32]Entry)
	var oldPages []PageWrite
	var oldSeq uint32
	haveOld := false

	for _, l := range logs {
		if len(l) == 0 {
			continue
		}
		if isNewScheme(l) {
			entries, err := ParseNewScheme(l)
			if err != nil {
				return nil, Report{}, err
			}
			for _, e := range entries {
				if existing, ok := bySeq[e.Sequence]; !ok || (!existing.hashOK() && e.hashOK()) {
					bySeq[e.Sequence] = e
				}
			}
		} else {
			seq, pages, err := ParseOldScheme(l)
			if err != nil {
				return nil, Report{}, err
			}
			oldPages = append(oldPages, pages...)
			oldSeq = seq
			haveOld = true
		}
	}

	report := Report{FinalSequence: head.SecondarySequence}

	switch {
	case haveOld:
		for _, pw := range oldPages {
			image = applyPage(image, pw)
		}
		report.EntriesApplied = 1
		report.PagesApplied = len(oldPages)
		report.FinalSequence = oldSeq
		report.StoppedReason = "old-scheme log fully applied"

	default:
		expected := head.SecondarySequence + 1
		for {
			e, ok := bySeq[expected]
			if !ok {
				report.StoppedReason = fmt.Sprintf("sequence gap at %d", expected)
				break
			}
			if !e.hashOK() {
				report.StoppedReason = fmt.Sprintf("hash mismatch at sequence %d", expected)
				break
			}
			needed := format.HeaderSize + int(e.HiveBinsDataSize)
			if needed > len(image) {
				grown := make([]byte, needed)
				copy(grown, image)
				image = grown
			}
			for _, pw := range e.Pages {
				image = applyPage(image, pw)
			}
			report.EntriesApplied++
			report.PagesApplied += len(e.Pages)
			report.FinalSequence = expected
			expected++
		}
		if report.StoppedReason == "" {
			report.StoppedReason = "no log entries available"
		}
	}

	if report.EntriesApplied > 0 {
		binary.LittleEndian.PutUint32(image[format.REGFPrimarySeqOffset:], report.FinalSequence)
		binary.LittleEndian.PutUint32(image[format.REGFSecondarySeqOffset:], report.FinalSequence)
		if grownSize := len(image) - format.HeaderSize; grownSize > int(head.HiveBinsDataSize) {
			binary.LittleEndian.PutUint32(image[format.REGFDataSizeOffset:], uint32(grownSize))
		}
		if err := format.PutHeaderChecksum(image); err != nil {
			return nil, report, err
		}
	}

	return image, report, nil
}

func applyPage(image []byte, pw PageWrite) []byte {
	start := format.HeaderSize + int(pw.Offset)
	end := start + len(pw.Data)
	if end > len(image) {
		grown := make([]byte, end)
		copy(grown, image)
		image = grown
	}
	copy(image[start:end], pw.Data)
	return image
}

// Applier adapts Reconcile to the types.LogApplier seam, optionally logging
// the outcome of replay for callers that want visibility without the
// structured Report.
type Applier struct {
	Logger *slog.Logger
}

// Apply implements types.LogApplier.
func (a *Applier) Apply(base []byte, logsArg ...[]byte) ([]byte, error) {
	image, report, err := Reconcile(base, logsArg...)
	if err != nil {
		return nil, err
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Debug("transaction log replay finished",
		"entriesApplied", report.EntriesApplied,
		"pagesApplied", report.PagesApplied,
		"finalSequence", report.FinalSequence,
		"stoppedReason", report.StoppedReason,
	)
	return image, nil
}
