package metabase

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports that the requested resource does not exist (or is not
// visible to the configured API key). Check with errors.Is.
var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx response from the Metabase API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("metabase returned status %d for %s", e.StatusCode, e.URL)
}

// Is makes a 404 APIError match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
