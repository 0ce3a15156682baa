package net

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestClient_FetchHTTP(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>" + r.Header.Get("User-Agent") + "</p>"))
	}))
	defer srv.Close()
	c := NewClient(time.Second, "test-agent")
	defer c.CloseIdleConnections()

	body, ct, err := c.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<p>test-agent</p>", string(body))
	assert.Equal(t, "text/html", ct)

	_, _, err = c.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClient_FetchFollowsRedirects(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := NewClient(time.Second, "")
	defer c.CloseIdleConnections()

	body, _, err := c.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "moved", string(body))
}

func TestClient_FetchCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()
	c := NewClient(time.Second, "")
	defer c.CloseIdleConnections()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_FetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	require.NoError(t, os.WriteFile(path, []byte("p { color: red; }"), 0o644))

	body, ct, err := NewClient(0, "").Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "p { color: red; }", string(body))
	assert.Contains(t, ct, "text/css")

	_, _, err = NewClient(0, "").Fetch(context.Background(), "file:///does/not/exist.html")
	assert.Error(t, err)
}

func TestClient_FetchData(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("p{color:red}"))
	body, ct, err := Fetch(context.Background(), "data:text/css;base64,"+encoded)
	require.NoError(t, err)
	assert.Equal(t, "p{color:red}", string(body))
	assert.Contains(t, ct, "text/css")

	body, _, err = Fetch(context.Background(), "data:text/html,hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestClient_UnsupportedScheme(t *testing.T) {
	_, _, err := Fetch(context.Background(), "gopher://example.org/")
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	base := "http://example.org:8080/a/b/page.html"
	tests := map[string]string{
		"style.css":           "http://example.org:8080/a/b/style.css",
		"/root.css":           "http://example.org:8080/root.css",
		"../up.css":           "http://example.org:8080/a/up.css",
		"../../top.css":       "http://example.org:8080/top.css",
		"//cdn.example.com/x": "http://cdn.example.com/x",
		"https://other.org/y": "https://other.org/y",
		"?q=1":                "http://example.org:8080/a/b/page.html?q=1",
	}
	for ref, want := range tests {
		assert.Equal(t, want, ResolveURL(base, ref), "ref %q", ref)
	}
}

func TestIsNetworkURL(t *testing.T) {
	assert.True(t, IsNetworkURL("http://x"))
	assert.True(t, IsNetworkURL("https://x"))
	assert.False(t, IsNetworkURL("file:///x"))
	assert.False(t, IsNetworkURL("data:,x"))
}
