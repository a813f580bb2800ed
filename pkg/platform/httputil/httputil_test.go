package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "usermgmt/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("uncoded error hides its text", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("db password is hunter2"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, internalMessage, body["error"])
	})

	t.Run("not found carries its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "Person with Id x not found."))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Person with Id x not found.", body["error"])
	})

	t.Run("bad request maps to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "bad body"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unknown code maps to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("validation maps to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "name is required"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice","extra":1}`))
		v, err := DecodeJSON[payload](r, 0)
		require.NoError(t, err)
		assert.Equal(t, "Alice", v.Name)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
		_, err := DecodeJSON[payload](r, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		_, err := DecodeJSON[payload](r, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects null body", func(t *testing.T) {
		for _, body := range []string{"null", " null\n"} {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			_, err := DecodeJSON[payload](r, 0)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			assert.Equal(t, "Request body must not be null.", err.Error())
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"0123456789"}`))
		_, err := DecodeJSON[payload](r, 8)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 8 bytes")
	})
}
