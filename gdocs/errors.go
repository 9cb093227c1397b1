package gdocs

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// Google Docs API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("gdocs: unauthorised (invalid credentials)")

	// ErrForbidden indicates the document is not shared with the caller.
	ErrForbidden = errors.New("gdocs: forbidden (insufficient permissions)")

	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("gdocs: document not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("gdocs: rate limit exceeded")

	// ErrNoCredentials is returned by New when no way to authenticate is given.
	ErrNoCredentials = errors.New("gdocs: no token, token source or http client configured")

	// ErrEmptyID is returned for an empty document ID.
	ErrEmptyID = errors.New("gdocs: empty document id")
)

// WrapError tags a Google API error with the matching sentinel. The
// original *googleapi.Error stays reachable through errors.As.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return err
	}
}

// Retryable reports whether a failed request may succeed when repeated.
func Retryable(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	switch gerr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter returns the delay requested by a Retry-After header, either in
// seconds or as an HTTP date.
func retryAfter(err error, now time.Time) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	v := strings.TrimSpace(gerr.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
