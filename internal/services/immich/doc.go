// Package immich provides the HTTP client for the Immich server API.
//
// The Service interface is the surface the rest of dupesweep depends on;
// Client implements it with x-api-key authentication, streaming downloads,
// and typed APIError values for non-2xx responses.
package immich
