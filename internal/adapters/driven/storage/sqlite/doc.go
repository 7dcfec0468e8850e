// Package sqlite provides the SQLite-based implementation of the catalog ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two store interfaces
// through a single database connection:
//
//   - CatalogStore: Article persistence, filtered search and aggregates
//   - RunLogStore: Append-only sync run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Tags are stored as a JSON array and queried with json_each.
//
// # Data Location
//
// By default, the database is stored at ~/.librarian/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, so readers never block on a running sync.
package sqlite
