// Package workspace implements the workspace registry: creation of the
// durable, purpose-named containers that hold bookmark groups, and the
// single write path that maps categorized groups into persisted form.
//
// The registry owns the mapping from transient import-run shapes
// (CategorizedGroup/RawItem) to durable shapes (BookmarkGroup/
// BookmarkEntry), the write-through into the cache tiers, and the
// anti-clobber rule for empty writes. It depends on the Repository
// interface defined here; the PostgreSQL implementation lives in
// repository/postgres.
package workspace
