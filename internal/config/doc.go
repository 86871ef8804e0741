// Package config loads, normalizes, and validates dupesweep's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/dupesweep, or a
// project-local dupesweep.toml), decodes it over Default(), expands ~ in all
// path fields, and validates the result. Server credentials may come from the
// IMMICH_SERVER_URL and IMMICH_API_KEY environment variables instead of the
// file. Validation failures here are the only place bad URLs or missing
// credentials are reported; the pipeline never sees an unvalidated config.
package config
