// Package scouterrors defines the distinct error kinds raised by the index
// and query layers, each carrying enough context to act on without string
// matching.
package scouterrors

import "fmt"

// MissingFieldError reports that an add-document request is missing a
// required field (doc_id or name).
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// DuplicateDocumentError reports that doc_id already exists in the forward
// index.
type DuplicateDocumentError struct {
	DocID int64
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("document %d already exists", e.DocID)
}

// EmptyDocumentError reports that tokenization of a new document yielded no
// surviving tokens.
type EmptyDocumentError struct {
	DocID int64
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("document %d produced no indexable tokens", e.DocID)
}

// MissingSideFileError is recoverable: the named side-data file was not
// found, so the boosts that consume it are skipped.
type MissingSideFileError struct {
	Path string
}

func (e *MissingSideFileError) Error() string {
	return fmt.Sprintf("side-metadata file not found: %s", e.Path)
}

// CorruptShardError is fatal for the affected operation: a barrel file is
// absent when routed to, or fails to parse.
type CorruptShardError struct {
	ShardName string
	Reason    string
}

func (e *CorruptShardError) Error() string {
	return fmt.Sprintf("corrupt shard %s: %s", e.ShardName, e.Reason)
}

// IOError wraps any other file read/write failure, fatal for the current
// operation.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s on %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
