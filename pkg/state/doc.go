// Package state defines the persistence contract for single-document
// snapshots plus the pieces needed to put one on disk safely.
//
// Responsibilities:
//   - Store[T] loads, saves and deletes one snapshot per key.
//   - Codec[T] wraps a snapshot in a versioned Envelope and, on the way back,
//     migrates older payloads forward and validates the result before handing
//     it out. Documents written before envelopes existed are read as version 1.
//   - BlobStore[T] joins a Codec with a Backend that only moves bytes.
//
// Data flow:
//
//	snapshot -> Codec.Encode -> Envelope JSON -> Backend.Put
//	Backend.Get -> Codec.Decode (migrate, hydrate, validate) -> snapshot
//
// Backends:
//
//	MemoryBackend and FileBackend live here; badgerstore and sqlstore provide
//	embedded-database backends with the same contract.
package state
