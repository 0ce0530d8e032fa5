// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the key
// store.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool with defaults suited
// to a small file that holds sealed secrets: rollback journal rather
// than WAL (no sidecar file keeps old pages around), secure_delete so
// freed pages are overwritten, and an owner-only file mode.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back. Connections are not safe for concurrent use.
//
// # Pragmas
//
//   - journal_mode=DELETE: the journal is removed after each commit.
//   - synchronous=FULL: the store is the only copy of its keys.
//   - secure_delete=ON: deleted content is overwritten with zeros.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock.
//   - foreign_keys=ON
//   - temp_store=MEMORY: temporary tables never touch disk.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   databasePath,
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
