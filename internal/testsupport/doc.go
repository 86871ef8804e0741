// Package testsupport holds shared test fixtures: a prevalidated config
// builder and a scripted fake of the Immich service.
package testsupport
