// Package logging builds the slog loggers used across dupesweep.
//
// Two output formats are supported: a console handler that renders
// "TIME LEVEL component: msg key=value" lines for interactive use, and a JSON
// handler for machine consumption. Components attach themselves with
// NewComponentLogger so the console prefix and structured field stay
// consistent. Field key constants (group_id, asset_id, stage, ...) keep
// attribute names uniform across packages.
package logging
