// Package trace records what happened to a delta-state object, one event per
// operation, and renders that record deterministically.
//
// Traces serialize to RFC 8785 canonical JSON: object keys sorted by UTF-16
// code units, strings NFC normalized, no HTML escaping, no floats, no null.
// Register words are rendered as zero-padded hex strings of their field width
// so that 64-bit values survive JSON consumers that only have float64.
//
// A trace's fingerprint is a BLAKE3 keyed hash of its canonical bytes. Two runs
// of the same scenario produce byte-identical traces and equal fingerprints.
package trace
