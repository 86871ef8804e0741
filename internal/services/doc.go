// Package services defines the error taxonomy shared by dupesweep's remote
// integrations.
//
// Sentinel markers (ErrValidation, ErrNotFound, ErrTransient, ...) classify
// failures without coupling callers to transport details; Wrap tags an error
// with a marker plus component/operation context. Callers test markers with
// errors.Is and reach typed payloads (such as the Immich APIError) with
// errors.As.
package services
