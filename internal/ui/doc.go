// Package ui implements an interactive terminal interface for playlist imports using bubbletea's Elm architecture.
//
// The TUI walks through one import:
//  1. [CourseListView] : Pick one of the user's courses
//  2. [URLInputView] : Paste a playlist URL, validated before continuing
//  3. [ConfirmView] : Confirm the import
//  4. [ImportView] : Follow the engine's phases with a spinner
//  5. [ResultView] : Review imported items and unavailable placeholders
//
// [Options] can preset the course and URL, in which case the import starts as soon as the courses are loaded.
// Progress updates flow through a channel from the engine and arrive as [Msg] values.
package ui
