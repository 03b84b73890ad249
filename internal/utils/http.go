package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBodySize bounds JSON request bodies read by [ReadJSON].
const MaxRequestBodySize = 1 << 20

var (
	// ErrEmptyBody is returned by [ReadJSON] when the request carries no body.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrBodyTooLarge is returned by [ReadJSON] for bodies over MaxRequestBodySize.
	ErrBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxRequestBodySize)
	// ErrTrailingData is returned by [ReadJSON] when the body holds more than one JSON value.
	ErrTrailingData = errors.New("unexpected data after JSON value")
)

// WriteJSON writes data as an application/json response with statusCode.
// If data cannot be marshaled a 500 JSON error is written instead and the
// marshaling error is returned.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"error writing data to JSON"}`))
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(body)
}

// ReadJSON decodes exactly one JSON value from the request body into dst.
func ReadJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	limited := &io.LimitedReader{R: r.Body, N: MaxRequestBodySize + 1}
	dec := json.NewDecoder(limited)
	if err := dec.Decode(dst); err != nil {
		switch {
		case limited.N <= 0:
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		}
		return fmt.Errorf("error decoding JSON body: %w", err)
	}
	if dec.More() {
		return ErrTrailingData
	}
	if limited.N <= 0 {
		return ErrBodyTooLarge
	}

	return nil
}
