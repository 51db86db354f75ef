// Package tasks orchestrates course operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Import] : Playlist → course items
//     - Verifies the caller owns the target course
//     - Fetches the playlist through [services.PlaylistFetcher]
//     - Projects videos onto item drafts ([ProjectItems]) and saves them in one transaction
//     - Points the course at the playlist and records an import job
//
//  2. [Engine.Export] : Snapshot of one course with its ordered items
//
//  3. [Engine.BulkExport] : Every course of a user written to disk with a manifest
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a slow or absent reader never stalls an import.
//
// # Implementation
//
// [CourseEngine] implements [Engine] with dependencies on:
//   - [services.Service] : YouTube Data API client
//   - [CourseStore], [ItemStore] : repositories.CourseRepository and repositories.CourseItemRepository
//   - [JobStore] : Optional import history (repositories.ImportJobRepository)
package tasks
