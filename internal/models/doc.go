// Package models defines domain entities and persistence interfaces for coursetube.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs describing YouTube data and import output
//   - [PlaylistMetadata] : Playlist-level fields from the metadata call
//   - [Video] : One playlist slot, possibly a placeholder for an unavailable video
//   - [YouTubePlaylist] : Metadata plus the ordered, deduplicated videos
//   - [CourseItemDraft] : A video projected onto the course item shape, ready to persist
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Owner of courses and progress
//   - [Course] : A named, ordered collection of items
//   - [CourseItem] : A video, reading, assignment, quiz or other learning component
//   - [Progress] : Per-user completion state for one course item
//   - [ImportJob] : History of playlist imports with status tracking
//
// User, Course, CourseItem and ImportJob implement the Model interface providing ID generation, timestamps, validation,
// and soft delete support. The Repository[T] interface defines standard CRUD operations for database access.
package models
