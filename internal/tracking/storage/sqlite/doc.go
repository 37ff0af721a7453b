// Package sqlite contains SQLite repository implementations for vertex
// finding domain types.
//
// All database read/write operations for runs and decay candidates
// belong here rather than in the tracking or vertexing packages. A run
// row captures the full finder configuration as JSON so any result set
// can be reproduced; candidates are flattened to one row per accepted
// pair with explicit columns, queryable without JSON decoding.
package sqlite
