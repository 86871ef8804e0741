// Package restore re-uploads backed-up originals to the Immich server,
// undoing a resolution run's deletions from the local backup directory.
package restore
