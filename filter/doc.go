// Package filter evaluates expr-language expressions against search results.
//
// Expressions see the result fields Title, Link, Size, Seeders, Leechers,
// Engine, InfoHash and IsMagnet, plus helpers:
//
//	contains(Title, "1080p") and Seeders >= 5 and Size < gb(4)
//
// Size helpers (kb, mb, gb) use binary units; bytes("1.5 GiB") parses a
// human readable size.
package filter
