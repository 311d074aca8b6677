// Package filter builds structured metadata constraints for vector store
// queries. A Filter is an immutable tree of equals/in/range/contains
// leaves joined by and/or/not combinators, with explicit match-everything
// and match-nothing nodes so "no constraint" is never represented as nil.
//
// Filters are constructed fresh per query and never persisted. The same
// tree drives both the SQL translation used by the SQLite store and the
// in-memory evaluation used by keyword search and tests; the two
// evaluations agree on every tree, including negation over fields a
// record does not carry.
package filter
