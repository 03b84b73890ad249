package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.Status())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	n, err := rw.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	rw.Write([]byte("de"))

	assert.Equal(t, http.StatusOK, rw.status)
	assert.Equal(t, 5, rw.size)
	assert.Equal(t, "abcde", rec.Body.String())
}

func TestResponseWriter_StatusWithoutWrites(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}

	assert.Zero(t, rw.status)
	assert.Equal(t, http.StatusOK, rw.Status())
}

func TestResponseWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	assert.Same(t, rec, rw.Unwrap())
}
