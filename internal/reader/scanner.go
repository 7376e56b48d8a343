package reader

import (
	"fmt"
	"math"

	"github.com/duskforge/reghive/pkg/types"
)

// ScanSubkeys returns an iterator over direct child keys of id. Prefer this
// over Subkeys when a caller only needs to walk a key's children once and
// wants to avoid materializing the full slice up front.
func (r *reader) ScanSubkeys(id types.NodeID) (types.NodeIter, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	nk, err := r.nk(id)
	if err != nil {
		return nil, err
	}
	if nk.SubkeyCount == 0 || nk.SubkeyListOffset == math.MaxUint32 {
		return &cursor[types.NodeID]{}, nil
	}
	if limit := r.opts.Limits.MaxSubkeys; limit > 0 && int(nk.SubkeyCount) > limit && !r.opts.Tolerant {
		return nil, &types.Error{
			Kind: types.ErrKindCorrupt,
			Msg:  fmt.Sprintf("subkey count %d exceeds configured limit %d", nk.SubkeyCount, limit),
			Err:  types.ErrCorrupt,
		}
	}
	list, err := r.subkeyList(nk.SubkeyListOffset, nk.SubkeyCount)
	if err != nil {
		return nil, err
	}
	ids := make([]types.NodeID, len(list))
	for i, off := range list {
		ids[i] = types.NodeID(off)
	}
	return &cursor[types.NodeID]{data: ids}, nil
}

// ScanValues returns an iterator over value handles associated with id.
func (r *reader) ScanValues(id types.NodeID) (types.ValueIter, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	nk, err := r.nk(id)
	if err != nil {
		return nil, err
	}
	if nk.ValueCount == 0 || nk.ValueListOffset == math.MaxUint32 {
		return &cursor[types.ValueID]{}, nil
	}
	if limit := r.opts.Limits.MaxValues; limit > 0 && int(nk.ValueCount) > limit && !r.opts.Tolerant {
		return nil, &types.Error{
			Kind: types.ErrKindCorrupt,
			Msg:  fmt.Sprintf("value count %d exceeds configured limit %d", nk.ValueCount, limit),
			Err:  types.ErrCorrupt,
		}
	}
	list, err := r.valueList(nk.ValueListOffset, nk.ValueCount)
	if err != nil {
		return nil, err
	}
	return &cursor[types.ValueID]{data: list}, nil
}

// cursor is a forward-only, never-erroring iterator over a pre-materialized
// slice of handles. Both NodeIter and ValueIter are this same shape aside
// from the accessor's name, so ScanSubkeys and ScanValues share one type
// parameterized over the handle kind instead of hand-rolling two.
type cursor[T any] struct {
	data []T
	idx  int
}

func (c *cursor[T]) Next() bool {
	if c.idx >= len(c.data) {
		return false
	}
	c.idx++
	return true
}

func (c *cursor[T]) Err() error { return nil }

func (c *cursor[T]) current() T { return c.data[c.idx-1] }

// Node implements types.NodeIter for cursor[types.NodeID].
func (c *cursor[T]) Node() types.NodeID {
	var v T = c.current()
	id, _ := any(v).(types.NodeID)
	return id
}

// Value implements types.ValueIter for cursor[types.ValueID].
func (c *cursor[T]) Value() types.ValueID {
	var v T = c.current()
	id, _ := any(v).(types.ValueID)
	return id
}
