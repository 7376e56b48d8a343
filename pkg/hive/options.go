package hive

import (
	"log/slog"

	"github.com/duskforge/reghive/pkg/types"
)

// OpenOptions controls hive opening behavior.
// This is an alias to types.OpenOptions for convenience.
type OpenOptions = types.OpenOptions

// Limits defines registry constraints to prevent corruption.
// These match Windows registry specifications.
type Limits = types.Limits

// TxLogOptions controls how OpenWithLogs reconciles transaction logs
// against a base hive image before the reader is constructed.
type TxLogOptions struct {
	// Open controls the reader returned once logs have been applied.
	Open OpenOptions

	// Log1Path and Log2Path override where the new-scheme sidecar logs are
	// read from. Empty means "path+\".LOG1\"" / "path+\".LOG2\"" respectively;
	// a path that does not exist is treated as that log source being absent.
	Log1Path string
	Log2Path string

	// Logger receives Info/Warn entries describing how far replay got.
	// A nil Logger discards log output.
	Logger *slog.Logger
}

// DefaultLimits returns standard Windows registry limits.
// These are safe for all production use cases.
//
// Limits:
//   - MaxSubkeys: 512 (Windows default)
//   - MaxValues: 16,384 (Windows hard limit)
//   - MaxValueSize: 1 MB
//   - MaxKeyNameLen: 255 characters
//   - MaxValueNameLen: 16,383 characters
//   - MaxTreeDepth: 512 levels
//   - MaxTotalSize: 2 GB
func DefaultLimits() Limits {
	return types.DefaultLimits()
}

// RelaxedLimits returns more permissive limits for system keys.
// Use with caution - may accept hives that don't validate on all Windows versions.
//
// Limits:
//   - MaxSubkeys: 65,535 (absolute Windows maximum)
//   - MaxValues: 16,384 (same as default)
//   - MaxValueSize: 10 MB
//   - MaxTreeDepth: 1,024 levels
//   - MaxTotalSize: 4 GB
func RelaxedLimits() Limits {
	return types.RelaxedLimits()
}

// StrictLimits returns conservative limits for safety-critical applications.
// Prevents resource exhaustion in constrained environments.
//
// Limits:
//   - MaxSubkeys: 256
//   - MaxValues: 1,024
//   - MaxValueSize: 64 KB
//   - MaxTreeDepth: 128 levels
//   - MaxTotalSize: 100 MB
func StrictLimits() Limits {
	return types.StrictLimits()
}
