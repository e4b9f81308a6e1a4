package blobstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when no blob exists under the requested id.
var ErrNotFound = errors.New("blob not found")

// Blob is a stored attachment: raw bytes plus serving metadata.
type Blob struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	Data        []byte    `json:"data"`
}

// Info is blob metadata without the payload, for listing and sweeping.
type Info struct {
	ID          string
	ContentType string
	CreatedAt   time.Time
	Size        int
}

// Store wraps BoltDB to persist uploaded attachment blobs.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "attachments"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Put stores the blob and returns it with id and timestamp filled in.
func (s *Store) Put(blob Blob) (Blob, error) {
	if s == nil || s.db == nil {
		return Blob{}, bolt.ErrDatabaseNotOpen
	}
	if blob.ID == "" {
		blob.ID = uuid.NewString()
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(blob)
	if err != nil {
		return Blob{}, err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(blob.ID), payload)
	})
	return blob, err
}

// Get returns the blob stored under id, or ErrNotFound.
func (s *Store) Get(id string) (*Blob, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var blob Blob
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &blob)
	})
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Delete removes the blob under id. Missing ids are not an error.
func (s *Store) Delete(id string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(id))
	})
}

// List returns metadata for every stored blob.
func (s *Store) List() ([]Info, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var infos []Info
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var blob Blob
			if err := json.Unmarshal(v, &blob); err != nil {
				continue
			}
			infos = append(infos, Info{
				ID:          blob.ID,
				ContentType: blob.ContentType,
				CreatedAt:   blob.CreatedAt,
				Size:        len(blob.Data),
			})
		}
		return nil
	})
	return infos, err
}

// Size returns the number of stored blobs.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}
