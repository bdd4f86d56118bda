package iiif

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a HTTP error to be shown to the user.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error formats the HTTPError message.
func (e HTTPError) Error() string {
	return fmt.Sprintf("%d (%s) %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// writeError renders err. Transform errors are rendered as JSON so that
// clients get the error code and the zero dimensions.
func writeError(w http.ResponseWriter, err error) {
	var te *TransformError
	if errors.As(err, &te) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(te)
		return
	}

	var he HTTPError
	if errors.As(err, &he) {
		http.Error(w, he.Error(), he.StatusCode)
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
