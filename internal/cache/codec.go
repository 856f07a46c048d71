package cache

import (
	"context"
	"encoding/json"
)

// GetJSON loads and decodes the value under key into a T. A decode
// failure is treated as a miss so a corrupt entry never blocks the
// remote fetch path.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool) {
	var out T

	raw, ok := store.Get(ctx, key)
	if !ok {
		return out, false
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		store.Delete(ctx, key)
		return out, false
	}

	return out, true
}

// SetJSON encodes value and stores it under key. Encode failures are
// silently dropped; the entry simply stays absent.
func SetJSON[T any](ctx context.Context, store Store, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	store.Set(ctx, key, raw)
}
