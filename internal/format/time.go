package format

import "time"

// Windows FILETIME counts 100-nanosecond intervals since 1601-01-01 UTC.
// epochDelta100ns is that epoch's offset from the Unix epoch in the same
// units, and the piece every FILETIME conversion in this package pivots on.
const (
	epochDelta100ns  = 116444736000000000
	hundredNanosecond = 100
)

// FiletimeToTime converts a raw FILETIME field (as decoded from an 8-byte
// little-endian run) to a UTC time.Time. Values at or before the Unix epoch
// collapse to the epoch itself rather than going negative; hives sometimes
// carry zeroed timestamp fields for never-written keys.
func FiletimeToTime(v uint64) time.Time {
	if v <= epochDelta100ns {
		return time.Unix(0, 0).UTC()
	}
	ns := int64(v-epochDelta100ns) * hundredNanosecond
	return time.Unix(ns/int64(time.Second), ns%int64(time.Second)).UTC()
}

// TimeToFiletime is the inverse of FiletimeToTime, used by the writer to
// stamp a hive's last-written time on serialization.
func TimeToFiletime(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return uint64(ns)/hundredNanosecond + epochDelta100ns
}
