package database

import "errors"

// ErrNotFound is returned by repositories when no document matches.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned when a conditional update matched no document
// because the document's state changed underneath the caller.
var ErrConflict = errors.New("document state changed")
