// Package types defines the public data model for reading, diagnosing, and
// repairing Windows Registry hive ("regf") files: handles (NodeID/ValueID),
// metadata structs (KeyMeta, ValueMeta, HiveInfo), the Reader/Writer
// interfaces, diagnostic and repair reporting, and the Limits a caller can
// use to bound traversal of an untrusted hive.
//
// This package holds declarations only; internal/reader and internal/writer
// provide the concrete implementations so that pkg/hive callers can depend
// on stable types without pulling in the hive-format decoders directly.
//
// Design goals:
//   - Zero-copy where safe; explicit copying where requested.
//   - Small, copyable handles (NodeID/ValueID) instead of large object graphs.
//   - Paranoid bounds checking; never panic on malformed input.
//   - Typed errors with stable categories (format/corrupt/unsupported/...).
package types
