// Package bonds maintains the neighbour list of a peridynamic particle set.
//
// A [List] is a fixed-capacity ragged adjacency table: row i holds the
// indices of particles currently bonded to particle i, and a parallel count
// array gives the meaningful prefix length of each row. Entries at or beyond
// a row's count are stale and must never be read as bonds.
//
//   - [Family]: per-particle count of neighbours within the horizon
//   - [Build] / [BuildGrid]: initial list construction
//   - [List.Break]: in-place removal of bonds stretched past the horizon
//
// Bonds only break, never re-form: row counts are non-increasing over the
// lifetime of a List. Rows are fully independent, so breaking may be sharded
// across goroutines (see [List.BreakParallel]) with no synchronization beyond
// the final join.
package bonds
