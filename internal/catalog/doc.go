// Package catalog records generated fixtures in a small SQLite database so
// the CLI can list what was produced, where, and from which settings.
//
// The store follows the same pragmas and busy-retry rules as any other
// single-writer SQLite file: WAL journaling, a busy timeout, and bounded
// exponential backoff when another process holds the write lock.
package catalog
