package embed

import (
	"time"

	"go.etcd.io/bbolt"

	"github.com/hupe1980/holograph/hypervector"
)

var bucketEmbeddings = []byte("embeddings")

// BoltStore persists text -> hypervector entries in a bbolt file so a Cache
// survives restarts.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Get returns the vector stored for text.
func (s *BoltStore) Get(text string) (hypervector.Vector, bool, error) {
	var (
		v     hypervector.Vector
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(text))
		if data == nil {
			return nil
		}
		found = true
		return v.UnmarshalBinary(data)
	})
	if err != nil {
		return hypervector.Vector{}, false, err
	}
	return v, found, nil
}

// Put stores the vector for text.
func (s *BoltStore) Put(text string, v hypervector.Vector) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put([]byte(text), data)
	})
}

// Len returns the number of stored entries.
func (s *BoltStore) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEmbeddings).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
