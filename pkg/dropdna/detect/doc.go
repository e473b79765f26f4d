// Package detect scores a track's analysis features and picks a single drop
// timestamp.
//
// Everything here is pure: no I/O, no clocks, no logging. The same FeatureSet,
// duration and loudness offset always produce the same Outcome.
//
// Strategies run in a fixed priority order and the first one that yields a
// candidate wins, even if a later strategy would have scored higher:
//
//  1. section scanner
//  2. segment scanner
//  3. loudest segment strictly inside the search window (confidence 0.6)
//  4. 30% of the track duration (confidence 0.2)
//
// ErrorFallback covers the case where no analysis could be fetched at all.
package detect
