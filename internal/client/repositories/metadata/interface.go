package metadata

import "context"

// Repository is the local key/value table holding the sync watermark, the
// session tokens and the signed-in account.
type Repository interface {
	// Get returns "" when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, keys ...string) error
}
