// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Users, courses, items and import jobs are soft deleted via deleted_at timestamps and excluded from queries by default.
//
// Key Implementations:
//   - [UserRepository] : User account persistence with email-based lookups
//   - [CourseRepository] : Courses with owner-scoped lookups
//   - [CourseItemRepository] : Ordered course items, batch inserts for playlist imports
//   - [ProgressRepository] : Per-user item progress keyed on (user, item)
//   - [ImportJobRepository] : Playlist import history with status tracking
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
