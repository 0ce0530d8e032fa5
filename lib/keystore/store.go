// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/sshield/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS keys (
	nickname    TEXT PRIMARY KEY,
	user        TEXT NOT NULL,
	host        TEXT NOT NULL,
	port        INTEGER NOT NULL DEFAULT 22,
	encoded_key BLOB NOT NULL,
	cipher      TEXT NOT NULL
);
`

const selectColumns = `SELECT nickname, user, host, port, encoded_key, cipher FROM keys`

// Config holds the parameters for Open.
type Config struct {
	Path   string
	Codec  Codec
	Logger *slog.Logger
}

// Store is a handle on the key database. It is safe for concurrent
// use.
type Store struct {
	pool   *sqlitepool.Pool
	codec  Codec
	logger *slog.Logger
	path   string
}

// Open opens (creating if needed) the database at cfg.Path and ensures
// the schema exists. A connection is taken immediately so an unusable
// file fails here rather than on first use.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Codec == nil {
		return nil, fmt.Errorf("keystore: Codec is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, &StorageError{Op: "open", Path: cfg.Path, Err: err}
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, &StorageError{Op: "open", Path: cfg.Path, Err: err}
	}
	pool.Put(conn)

	return &Store{pool: pool, codec: cfg.Codec, logger: logger, path: cfg.Path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return &StorageError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// Insert adds a record. It returns false with a nil error if the
// nickname is already taken, leaving the existing row untouched, and
// false with an error on any other failure.
func (s *Store) Insert(ctx context.Context, record Record) (bool, error) {
	if err := record.validate(); err != nil {
		return false, fmt.Errorf("invalid record: %w", err)
	}

	var inserted bool
	err := s.withConn(ctx, "insert", func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `
			INSERT INTO keys (nickname, user, host, port, encoded_key, cipher)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (nickname) DO NOTHING`,
			&sqlitex.ExecOptions{Args: []any{
				record.Nickname, record.User, record.Host, record.Port, record.EncodedKey, record.Cipher,
			}})
		if err != nil {
			return err
		}
		inserted = conn.Changes() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.logger.Debug("key inserted", "nickname", record.Nickname, "cipher", record.Cipher)
	}
	return inserted, nil
}

// Get returns the named key, decoded.
func (s *Store) Get(ctx context.Context, nickname string) (ProcessedKey, error) {
	var records []Record
	err := s.withConn(ctx, "get", func(conn *sqlite.Conn) error {
		var err error
		records, err = queryRecords(conn, selectColumns+` WHERE nickname = ?`, nickname)
		return err
	})
	if err != nil {
		return ProcessedKey{}, err
	}
	if len(records) == 0 {
		return ProcessedKey{}, fmt.Errorf("%w: %q", ErrNotFound, nickname)
	}
	return s.process(records[0])
}

// GetAll returns every key ordered by nickname. An empty store yields
// an empty slice. Any undecodable record fails the whole call.
func (s *Store) GetAll(ctx context.Context) ([]ProcessedKey, error) {
	var records []Record
	err := s.withConn(ctx, "list", func(conn *sqlite.Conn) error {
		var err error
		records, err = queryRecords(conn, selectColumns+` ORDER BY nickname`)
		return err
	})
	if err != nil {
		return nil, err
	}

	keys := make([]ProcessedKey, 0, len(records))
	for _, record := range records {
		key, err := s.process(record)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Records returns the raw rows without decoding, ordered by nickname.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.withConn(ctx, "list", func(conn *sqlite.Conn) error {
		var err error
		records, err = queryRecords(conn, selectColumns+` ORDER BY nickname`)
		return err
	})
	return records, err
}

// Update changes the set fields of the named record and returns the
// number of rows affected.
func (s *Store) Update(ctx context.Context, nickname string, update Update) (int, error) {
	if update.Port != nil && (*update.Port < 1 || *update.Port > 65535) {
		return 0, fmt.Errorf("invalid record: port %d out of range", *update.Port)
	}

	var user, host, port any
	if update.User != nil {
		user = *update.User
	}
	if update.Host != nil {
		host = *update.Host
	}
	if update.Port != nil {
		port = *update.Port
	}

	var changed int
	err := s.withConn(ctx, "update", func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `
			UPDATE keys SET
				user = COALESCE(?, user),
				host = COALESCE(?, host),
				port = COALESCE(?, port)
			WHERE nickname = ?`,
			&sqlitex.ExecOptions{Args: []any{user, host, port, nickname}})
		changed = conn.Changes()
		return err
	})
	return changed, err
}

// ReplaceKey swaps the stored blob and cipher of the named record.
func (s *Store) ReplaceKey(ctx context.Context, nickname string, encodedKey []byte, cipher string) (int, error) {
	if len(encodedKey) == 0 {
		return 0, fmt.Errorf("invalid record: encoded key is empty")
	}
	var changed int
	err := s.withConn(ctx, "replace", func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `UPDATE keys SET encoded_key = ?, cipher = ? WHERE nickname = ?`,
			&sqlitex.ExecOptions{Args: []any{encodedKey, cipher, nickname}})
		changed = conn.Changes()
		return err
	})
	return changed, err
}

// Delete removes the named record and returns the number of rows
// affected.
func (s *Store) Delete(ctx context.Context, nickname string) (int, error) {
	var changed int
	err := s.withConn(ctx, "delete", func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, `DELETE FROM keys WHERE nickname = ?`,
			&sqlitex.ExecOptions{Args: []any{nickname}})
		changed = conn.Changes()
		return err
	})
	return changed, err
}

// ResealFunc produces a replacement blob for one record.
type ResealFunc func(nickname string, encodedKey []byte) ([]byte, error)

// Reseal rewrites every blob through transform inside one immediate
// transaction. If transform fails for any record nothing is changed.
// It returns the number of records rewritten.
func (s *Store) Reseal(ctx context.Context, transform ResealFunc) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, &StorageError{Op: "reseal", Path: s.path, Err: err}
	}
	defer s.pool.Put(conn)

	count, err := reseal(conn, transform)
	if err != nil {
		var decodeError *DecodeError
		if errors.As(err, &decodeError) {
			return 0, err
		}
		return 0, &StorageError{Op: "reseal", Path: s.path, Err: err}
	}
	s.logger.Debug("keys resealed", "count", count)
	return count, nil
}

func reseal(conn *sqlite.Conn, transform ResealFunc) (count int, err error) {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, err
	}
	defer endFn(&err)

	records, err := queryRecords(conn, selectColumns+` ORDER BY nickname`)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		replacement, transformErr := transform(record.Nickname, record.EncodedKey)
		if transformErr != nil {
			return 0, &DecodeError{Nickname: record.Nickname, Err: transformErr}
		}
		if err := sqlitex.Execute(conn, `UPDATE keys SET encoded_key = ? WHERE nickname = ?`,
			&sqlitex.ExecOptions{Args: []any{replacement, record.Nickname}}); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func (s *Store) process(record Record) (ProcessedKey, error) {
	material, err := s.codec.Decode(record.EncodedKey)
	if err != nil {
		return ProcessedKey{}, &DecodeError{Nickname: record.Nickname, Err: err}
	}
	return ProcessedKey{
		Nickname: record.Nickname,
		User:     record.User,
		Host:     record.Host,
		Port:     record.Port,
		Cipher:   record.Cipher,
		Material: material,
	}, nil
}

func (s *Store) withConn(ctx context.Context, op string, fn func(conn *sqlite.Conn) error) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return &StorageError{Op: op, Path: s.path, Err: err}
	}
	defer s.pool.Put(conn)
	if err := fn(conn); err != nil {
		return &StorageError{Op: op, Path: s.path, Err: err}
	}
	return nil
}

func queryRecords(conn *sqlite.Conn, query string, args ...any) ([]Record, error) {
	var records []Record
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			blob := make([]byte, stmt.ColumnLen(4))
			stmt.ColumnBytes(4, blob)
			records = append(records, Record{
				Nickname:   stmt.ColumnText(0),
				User:       stmt.ColumnText(1),
				Host:       stmt.ColumnText(2),
				Port:       stmt.ColumnInt(3),
				EncodedKey: blob,
				Cipher:     stmt.ColumnText(5),
			})
			return nil
		},
	})
	return records, err
}
