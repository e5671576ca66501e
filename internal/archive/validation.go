package archive

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection when reading untrusted files.
const (
	MaxHeaderSize   = 100 * 1024 * 1024 // 100MB - maximum safetensors header size
	MaxArrayCount   = 100_000           // Maximum number of arrays in an archive
	MaxArrayNameLen = 4096              // Maximum array name length
)

// span locates the raw bytes of one array inside a data section.
type span struct {
	Name   string
	Offset int64
	Size   int64
}

// ValidateName checks array names for path traversal and malformed patterns.
//
// Names end up as zip entry names in .npz archives, so anything that could
// escape the archive or confuse a reader is rejected.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Err: ErrInvalidName, Details: "empty name"}
	}
	if len(name) > MaxArrayNameLen {
		return &ValidationError{
			Err:     ErrNameTooLong,
			Array:   name[:32] + "...",
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxArrayNameLen),
		}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{Err: ErrInvalidName, Array: name, Details: "contains '..'"}
	}
	if strings.ContainsAny(name, `/\`) {
		return &ValidationError{Err: ErrInvalidName, Array: name, Details: "contains path separator (/ or \\)"}
	}
	if strings.Contains(name, "\x00") {
		return &ValidationError{Err: ErrInvalidName, Array: name, Details: "contains null byte"}
	}
	return nil
}

// ValidateArray checks that every dimension is positive and that data holds
// exactly as many elements as the shape describes.
func ValidateArray(name string, a Array) error {
	if len(a.Shape) == 0 {
		return &ValidationError{Err: ErrInvalidShape, Array: name, Details: "scalar arrays are not supported"}
	}
	n := 1
	for _, d := range a.Shape {
		if d <= 0 {
			return &ValidationError{Err: ErrInvalidShape, Array: name, Details: fmt.Sprintf("shape %v", a.Shape)}
		}
		n *= d
	}
	if n != len(a.Data) {
		return &ValidationError{
			Err:     ErrSizeMismatch,
			Array:   name,
			Details: fmt.Sprintf("shape %v needs %d values, got %d", a.Shape, n, len(a.Data)),
		}
	}
	return nil
}

// validateOffsets checks for overlapping spans and out-of-bounds access.
// Malformed files must never make a reader return bytes belonging to another
// array or to nothing at all.
func validateOffsets(spans []span, dataSize int64) error {
	if len(spans) > MaxArrayCount {
		return &ValidationError{
			Err:     ErrTooManyArrays,
			Details: fmt.Sprintf("got %d, max %d", len(spans), MaxArrayCount),
		}
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, s := range sorted {
		if s.Offset < 0 || s.Size < 0 {
			return &ValidationError{
				Err:     ErrNegativeOffset,
				Array:   s.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", s.Offset, s.Size),
			}
		}

		if s.Offset+s.Size > dataSize {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Array:   s.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", s.Offset, s.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if s.Offset+s.Size > next.Offset {
				return &ValidationError{
					Err:     ErrOffsetOverlap,
					Array:   s.Name,
					Array2:  next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						s.Offset, s.Offset+s.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}
