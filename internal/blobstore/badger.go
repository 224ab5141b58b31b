package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// BadgerStore persists objects in an embedded Badger database, one entry per
// object. Values are compressed with zstd; whole-tree git metadata is mostly
// small text files and compresses well.
type BadgerStore struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &BadgerStore{db: db, encoder: encoder, decoder: decoder}, nil
}

func (s *BadgerStore) Close() error {
	s.decoder.Close()
	_ = s.encoder.Close()
	return s.db.Close()
}

func (s *BadgerStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	full := []byte(bucket + "/" + prefix)
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(full); it.ValidForPrefix(full); it.Next() {
			k := string(it.Item().Key())
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", bucket, err)
	}
	return keys, nil
}

func (s *BadgerStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(bucket + "/" + key))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *BadgerStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	compressed := s.encoder.EncodeAll(data, nil)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(bucket+"/"+key), compressed)
	})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", bucket, key, err)
	}
	return nil
}
