// Package domain defines the core business types for the bookmark import
// and workspace synchronization pipeline.
//
// Types in this package are pure value objects with no behavior beyond
// validation helpers. They are the shared language between collectors,
// the categorization service, the workspace registry, and the cache tiers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
