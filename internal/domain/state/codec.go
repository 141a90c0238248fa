package state

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// Encode serializes a snapshot to JSON. The returned slice is owned by the caller.
func Encode(snapshot Snapshot) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// Decode parses a snapshot and normalizes its collections.
func Decode(raw []byte) (Snapshot, error) {
	var out Snapshot
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	out.Normalize()
	return out, nil
}
