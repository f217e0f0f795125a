// Package storage defines the Store port used to persist formatted word
// count results and the backends that satisfy it: an in-memory map, a
// local directory, MinIO/S3 object storage, Redis, and PostgreSQL. The
// Cached and Guarded decorators add a read-through LRU cache and a
// circuit breaker in front of any backend.
//
// Artifacts are immutable: Save never overwrites an existing name and
// nothing in this package deletes one.
package storage
