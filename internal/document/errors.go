/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveDocument means there is no buffer to work on.
	ErrNoActiveDocument = errors.New("no active document")
	// ErrNoLinkedPath is returned by Save for a buffer that was never linked to a file;
	// callers fall back to Export with a user-chosen path.
	ErrNoLinkedPath = errors.New("document has no linked file path")
	// ErrLineOutOfRange is returned when a line command addresses a line the buffer lacks.
	ErrLineOutOfRange = errors.New("line index out of range")
)

// FileWriteError reports a failed export or save. The buffer is left as it was.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *FileWriteError) Unwrap() error { return e.Err }
