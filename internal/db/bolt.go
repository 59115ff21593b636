package db

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"bandly-go/pkg/logger"
)

// NewBolt opens the bolt file at path and makes sure bucket exists.
func NewBolt(path string, bucket string, log logger.Logger) (*bolt.DB, error) {
	boltDB, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = boltDB.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		boltDB.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	log.Info("db: bolt ready", "path", path, "bucket", bucket)
	return boltDB, nil
}
