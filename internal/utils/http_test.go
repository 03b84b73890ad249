package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{name: "object", data: map[string]string{"status": "ok"}, status: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "created", data: struct {
			ID string `json:"id"`
		}{ID: "p1"}, status: http.StatusCreated, wantBody: `{"id":"p1"}`},
		{name: "error status", data: map[string]string{"error": "not found"}, status: http.StatusNotFound, wantBody: `{"error":"not found"}`},
		{name: "nil", data: nil, status: http.StatusOK, wantBody: `null`},
		{name: "empty list", data: []string{}, status: http.StatusOK, wantBody: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, len(tt.wantBody), n)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWriteJSON_Unmarshalable(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"error writing data to JSON"}`, w.Body.String())
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		anyErr  bool
	}{
		{name: "object", body: `{"a":1}`},
		{name: "trailing whitespace", body: "{\"a\":1}\n"},
		{name: "empty", body: "", wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"a":`, anyErr: true},
		{name: "trailing data", body: `{"a":1} {"b":2}`, wantErr: ErrTrailingData},
		{name: "too large", body: `{"a":"` + strings.Repeat("x", MaxRequestBodySize) + `"}`, wantErr: ErrBodyTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst map[string]any
			err := ReadJSON(r, &dst)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.False(t, errors.Is(err, ErrEmptyBody))
			default:
				require.NoError(t, err)
				assert.Equal(t, 1.0, dst["a"])
			}
		})
	}
}

func TestReadJSON_NoBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.ErrorIs(t, ReadJSON(r, &struct{}{}), ErrEmptyBody)
}
