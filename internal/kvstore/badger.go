// Package kvstore is the embedded storage backend: a Badger database holding
// the draw history and backtest runs in one local directory, for running the
// analyzer without a PostgreSQL server. It implements models.DrawStore and
// models.ResultSink.
package kvstore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"megasena-analyzer/internal/source"
	"megasena-analyzer/models"
)

const (
	drawKeyPrefix = "draws/"
	runsKeyPrefix = "runs/"
)

// Store is a Badger-backed draw store and result sink.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the Badger database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// drawKey pads the sequence so lexicographic key order matches numeric order.
func drawKey(sequence uint) []byte {
	return []byte(fmt.Sprintf("%s%012d", drawKeyPrefix, sequence))
}

func runsKey(method models.Method) []byte {
	return []byte(runsKeyPrefix + string(method))
}

// InsertDraw stores one draw keyed by sequence; re-inserting a sequence
// overwrites it with identical content.
func (s *Store) InsertDraw(d models.Draw) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(drawKey(d.Sequence), data)
	})
}

// Load returns every stored draw sorted by sequence ascending. Key order is
// already sequence order, so a prefix scan suffices.
func (s *Store) Load() ([]models.Draw, error) {
	var draws []models.Draw
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(drawKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var d models.Draw
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &d)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			draws = append(draws, d)
		}
		return nil
	})
	return draws, err
}

// LastSequence returns the highest stored draw sequence, 0 when empty.
func (s *Store) LastSequence() (uint, error) {
	var last uint
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		// seek just past the draw keyspace, then step back into it
		it.Seek([]byte(drawKeyPrefix + "~"))
		if it.ValidForPrefix([]byte(drawKeyPrefix)) {
			key := strings.TrimPrefix(string(it.Item().Key()), drawKeyPrefix)
			if _, err := fmt.Sscanf(key, "%d", &last); err != nil {
				return fmt.Errorf("parse draw key %q: %w", key, err)
			}
		}
		return nil
	})
	return last, err
}

// Fingerprint identifies the draw keyspace content by count and highest
// sequence, both of which change on every ingest.
func (s *Store) Fingerprint() (string, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(drawKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	last, err := s.LastSequence()
	if err != nil {
		return "", err
	}
	return source.Fingerprint(count, last), nil
}

// SaveRuns replaces the method's stored runs. All runs live under one key, so
// the swap is a single atomic write.
func (s *Store) SaveRuns(method models.Method, runs []models.BacktestRun) error {
	data, err := json.Marshal(runs)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runsKey(method), data)
	})
}

// LoadRuns returns the method's stored runs; no stored runs is an empty
// slice, not an error.
func (s *Store) LoadRuns(method models.Method) ([]models.BacktestRun, error) {
	var runs []models.BacktestRun
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runsKey(method))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &runs)
		})
	})
	return runs, err
}
