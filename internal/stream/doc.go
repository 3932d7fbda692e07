// Package stream encodes delta streams: the ordered register operations a
// producer ships to a replica so the replica can fold them into its own
// object.
//
// # Wire format
//
//	offset  size  field
//	0       4     magic "DSTM"
//	4       1     format version (1)
//	5       1     compression tag (0 none, 1 lz4, 2 zstd)
//	6       ...   body, compressed per tag
//
// The body is deterministic CBOR (RFC 8949 core deterministic encoding) of a
// Stream with integer map keys. Equal streams encode to equal bytes for a
// given compression tag.
//
// Transport is out of scope: Encode and Decode work on any io.Writer and
// io.Reader.
package stream
