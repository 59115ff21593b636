package bolt

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
)

// Storage keeps every key in a single bucket of a bolt database.
type Storage struct {
	db     *bolt.DB
	bucket []byte
}

// NewStorage expects bucket to exist already, see db.NewBolt.
func NewStorage(db *bolt.DB, bucket string) *Storage {
	return &Storage{db: db, bucket: []byte(bucket)}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", s.bucket)
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction.
		value = make([]byte, len(data))
		copy(value, data)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", s.bucket)
		}
		return bucket.Put([]byte(key), value)
	})
}
