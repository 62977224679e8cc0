// Package idgen generates the opaque identifiers used for queue messages
// and version placeholders. It is internal so callers never depend on the
// identifier shape, and stubbable so tests stay deterministic.
package idgen
