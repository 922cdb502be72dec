package pagecache

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/pagecache/pkg/cache"
)

var (
	// ErrEmptyURL is returned when Fetch is called without a URL.
	ErrEmptyURL = errors.New("url must not be empty")

	// ErrInvalidTTL is returned when Fetch is called with a non-positive TTL.
	ErrInvalidTTL = cache.ErrInvalidTTL
)

// Op names the store operation that failed.
type Op string

const (
	OpGet  Op = "get"
	OpSet  Op = "set"
	OpIncr Op = "incr"
)

// FetchError reports that the origin could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// CacheUnavailableError reports that the store could not serve an operation.
type CacheUnavailableError struct {
	Op  Op
	Key string
	Err error
}

// Error implements the error interface.
func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable (%s %s): %v", e.Op, e.Key, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CacheUnavailableError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsCacheUnavailable reports whether err is or wraps a *CacheUnavailableError.
func IsCacheUnavailable(err error) bool {
	var ce *CacheUnavailableError
	return errors.As(err, &ce)
}
