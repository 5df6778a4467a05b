package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("payload"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("Should return the body on 200", func(t *testing.T) {
		f := NewHTTPFetcher(time.Second)
		data, err := f.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("Should return a StatusError on 404", func(t *testing.T) {
		f := NewHTTPFetcher(time.Second)
		_, err := f.Fetch(context.Background(), srv.URL+"/missing")
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusNotFound, se.Status)
	})

	t.Run("Should time out", func(t *testing.T) {
		f := NewHTTPFetcher(100 * time.Millisecond)
		_, err := f.Fetch(context.Background(), srv.URL+"/slow")
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("Should reject bodies over the limit", func(t *testing.T) {
		f := NewHTTPFetcher(time.Second, WithMaxBytes(1024))
		_, err := f.Fetch(context.Background(), srv.URL+"/big")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("Should reject non-http urls", func(t *testing.T) {
		f := NewHTTPFetcher(time.Second)
		for _, u := range []string{"ftp://host/a.jpg", "not a url", "file:///etc/passwd"} {
			_, err := f.Fetch(context.Background(), u)
			assert.ErrorIs(t, err, ErrBadURL, u)
		}
	})
}
