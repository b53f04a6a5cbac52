package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const readsBucket = "reads"

// ErrNotFound is returned when a read does not exist
var ErrNotFound = errors.New("read not found")

// DB defines the interface for database operations
type DB interface {
	// SaveRead saves a card read to the database
	SaveRead(read *Read) error

	// GetRead retrieves a card read by ID
	GetRead(id string) (*Read, error)

	// ListReads returns all card reads, newest first
	ListReads() ([]*Read, error)

	// DeleteRead removes a card read from the database
	DeleteRead(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(readsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveRead saves a card read to the database
func (b *BoltDB) SaveRead(read *Read) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(read)
		if err != nil {
			return fmt.Errorf("marshaling read: %w", err)
		}
		return tx.Bucket([]byte(readsBucket)).Put([]byte(read.ID), data)
	})
}

// GetRead retrieves a card read by ID
func (b *BoltDB) GetRead(id string) (*Read, error) {
	var read *Read
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(readsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &read)
	})
	if err != nil {
		return nil, err
	}
	return read, nil
}

// ListReads returns all card reads, newest first
func (b *BoltDB) ListReads() ([]*Read, error) {
	reads := make([]*Read, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(readsBucket)).ForEach(func(k, v []byte) error {
			var read Read
			if err := json.Unmarshal(v, &read); err != nil {
				return fmt.Errorf("unmarshaling read: %w", err)
			}
			reads = append(reads, &read)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(reads, func(i, j int) bool {
		return reads[i].CreatedAt.After(reads[j].CreatedAt)
	})
	return reads, nil
}

// DeleteRead removes a card read from the database
func (b *BoltDB) DeleteRead(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(readsBucket))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
