// Package scoring implements deterministic duplicate-group analysis: metadata
// completeness scoring, winner selection, cross-asset conflict detection, and
// iPhone 4:3/16:9 crop-pair discovery. Everything here is pure computation
// over asset snapshots; no I/O.
package scoring
