// Package horosafe guards the file inputs of the service: document paths
// supplied by remote callers and uploaded bodies.
package horosafe

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a caller-supplied path escapes its root.
var ErrPathTraversal = errors.New("horosafe: path traversal detected")

// ErrTooLarge is returned by LimitedReadAll when the input exceeds its cap.
var ErrTooLarge = errors.New("horosafe: input too large")

// SafePath resolves userInput below root. The input is always taken as
// relative to root, even when it starts with a slash.
func SafePath(root, userInput string) (string, error) {
	if userInput == "" {
		return "", errors.New("horosafe: empty path")
	}
	for _, part := range strings.FieldsFunc(userInput, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "", ErrPathTraversal
		}
	}
	base := filepath.Clean(root)
	cleaned := filepath.Join(base, filepath.Clean("/"+userInput))
	if cleaned != base && !strings.HasPrefix(cleaned, base+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleaned, nil
}

// LimitedReadAll reads at most maxBytes from r.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
