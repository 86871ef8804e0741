// Package journal records resolution runs in SQLite: one row per run, one
// row per processed group, written as groups complete.
package journal
