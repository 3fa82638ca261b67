// Package tweetexport extracts, deduplicates, filters and exports tweets
// found in the markup of a live, continuously mutating timeline page.
//
// This package contains domain types, interfaces and the pure pieces of the
// engine (filtering, bulk selection, export serialization) following Ben
// Johnson's Standard Package Layout. Implementations live in subdirectories
// named after their primary dependency (e.g., goquery/, rod/, sqlite/).
package tweetexport
