package sink

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHttpSinkPostsLine(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	var contentType, method string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		contentType = r.Header.Get("Content-Type")
		method = r.Method
		mu.Unlock()
	}))
	defer srv.Close()

	s := NewHttpSink(srv.URL, "", "", time.Second)
	require.NoError(t, s.Write([]byte("TRADE 50")))
	require.NoError(t, s.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"TRADE 50"}, bodies)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "text/plain; charset=utf-8", contentType)
}

func TestHttpSinkStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHttpSink(srv.URL, http.MethodPut, "application/json", time.Second)
	require.ErrorContains(t, s.Write([]byte("{}")), "503")
}
