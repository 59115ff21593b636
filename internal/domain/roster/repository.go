package roster

import "context"

// Storage is a key/value facility holding whole serialized documents.
// Set must replace the value atomically.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
