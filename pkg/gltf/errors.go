package gltf

import "errors"

// Import error kinds. Every error returned by this package and the importer
// wraps exactly one of them.
var (
	// ErrFormat marks a structural or semantic violation of the schema.
	ErrFormat = errors.New("invalid glTF")
	// ErrIO marks an unreadable file or undecodable payload.
	ErrIO = errors.New("glTF I/O failure")
)
