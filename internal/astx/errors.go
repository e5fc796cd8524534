package astx

import "errors"

// ErrFileTooLarge is returned when input content exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ErrInvalidContent is returned when input is not valid UTF-8.
var ErrInvalidContent = errors.New("content is not valid UTF-8")

// defaultMaxFileSize is the maximum file size a full parse will accept
// before degrading to quick-scan (10MB, matching the teacher's
// ast.DefaultMaxFileSize).
const defaultMaxFileSize = 10 * 1024 * 1024
