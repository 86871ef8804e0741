// Command dupesweep resolves Immich duplicate groups. It scores each asset's
// metadata completeness, keeps the most complete copy, consolidates metadata
// and album memberships onto it, backs the rest up locally, and deletes them.
package main
