// Package store persists the catalog, quotation and company records in a
// single bbolt file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("store: record not found")

// Bucket names.
var (
	bucketComponents = []byte("components")
	bucketQuotations = []byte("quotations")
	bucketPDFInfo    = []byte("pdf_info")
	bucketCompany    = []byte("company")
)

// DB is the open database file.
type DB struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the database at path and its buckets.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketComponents, bucketQuotations, bucketPDFInfo, bucketCompany} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	slog.Info("record store opened", "path", path)
	return &DB{db: db}, nil
}

// Close closes the database file.
func (d *DB) Close() error {
	return d.db.Close()
}

// record is implemented by pointers to the stored model types.
type record[T any] interface {
	*T
	RecordID() string
	SetRecordID(id string)
}

// Collection is a bucket of JSON-encoded records keyed by id.
type Collection[T any, P record[T]] struct {
	db     *bbolt.DB
	bucket []byte
}

func newCollection[T any, P record[T]](d *DB, bucket []byte) *Collection[T, P] {
	return &Collection[T, P]{db: d.db, bucket: bucket}
}

// List returns every record in key order.
func (c *Collection[T, P]) List() ([]T, error) {
	out := make([]T, 0)
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(c.bucket).ForEach(func(_, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			out = append(out, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", c.bucket, err)
	}
	return out, nil
}

// Get returns the record with id, or ErrNotFound.
func (c *Collection[T, P]) Get(id string) (T, error) {
	var item T
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(c.bucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return item, fmt.Errorf("store: get %s/%s: %w", c.bucket, id, err)
	}
	if !found {
		return item, ErrNotFound
	}
	return item, nil
}

// Put writes v, assigning a new UUID first when it has no id. An existing
// record with the same id is replaced.
func (c *Collection[T, P]) Put(v P) error {
	if v.RecordID() == "" {
		v.SetRecordID(uuid.New().String())
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", c.bucket, err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(c.bucket).Put([]byte(v.RecordID()), data)
	})
}

// Update replaces the record with id using fn, which receives the stored
// value and may modify it. It returns ErrNotFound if id does not exist.
func (c *Collection[T, P]) Update(id string, fn func(current P) error) (T, error) {
	var item T
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		p := P(&item)
		if err := fn(p); err != nil {
			return err
		}
		p.SetRecordID(id)
		encoded, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), encoded)
	})
	return item, err
}

// Delete removes the record with id. It returns ErrNotFound if id does not
// exist.
func (c *Collection[T, P]) Delete(id string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Replace atomically swaps the whole collection for items. Items without
// an id get a new one.
func (c *Collection[T, P]) Replace(items []T) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(c.bucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(c.bucket)
		if err != nil {
			return err
		}
		for i := range items {
			p := P(&items[i])
			if p.RecordID() == "" {
				p.SetRecordID(uuid.New().String())
			}
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(p.RecordID()), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of records.
func (c *Collection[T, P]) Count() int {
	n := 0
	_ = c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(c.bucket).Stats().KeyN
		return nil
	})
	return n
}
