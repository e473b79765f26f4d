package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/DropDNA/pkg/dropdna/analysis"
)

const sampleDoc = `{
  "track": {"duration": 200.0, "tempo": 128.0, "loudness": -6.5},
  "sections": [
    {"start": 0, "duration": 30, "loudness": -14, "tempo": 128, "tempo_confidence": 0.6},
    {"start": 60, "duration": 30, "loudness": -8, "tempo": 128, "tempo_confidence": 0.8}
  ],
  "segments": [
    {"start": 60.0, "loudness_max": -5.0, "timbre": [40, -10]}
  ],
  "bars": [
    {"start": 60.0, "confidence": 0.9}
  ]
}`

func TestHTTPClientGetAnalysis(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/", "secret")
	require.NoError(t, err)

	fs, err := client.GetAnalysis(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/audio-analysis/abc123", gotPath)
	assert.InDelta(t, 200.0, fs.Track.DurationSec, 1e-9)
	require.Len(t, fs.Sections, 2)
	assert.True(t, fs.Sections[1].Valid)
	require.Len(t, fs.Bars, 1)
}

func TestHTTPClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClientAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "expired")
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestHTTPClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not", "an", "object"]`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "abc")
	assert.ErrorIs(t, err, analysis.ErrMalformed)
}

func TestHTTPClientRequiresToken(t *testing.T) {
	client, err := NewHTTPClient("http://127.0.0.1:0", "")
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "abc")
	assert.Error(t, err)
}

func TestHTTPClientTokenSource(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "", WithTokenSource(func(context.Context) (string, error) {
		return "rotated", nil
	}))
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated", gotAuth)

	failing, err := NewHTTPClient(srv.URL, "", WithTokenSource(func(context.Context) (string, error) {
		return "", errors.New("refresh failed")
	}))
	require.NoError(t, err)
	_, err = failing.GetAnalysis(context.Background(), "abc")
	assert.ErrorContains(t, err, "refresh failed")
}

func TestHTTPClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewHTTPClient(srv.URL, "secret", WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.GetAnalysis(context.Background(), "slow")
	assert.Error(t, err)
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.json"), []byte(sampleDoc), 0o644))

	p, err := NewDir(dir)
	require.NoError(t, err)

	fs, err := p.GetAnalysis(context.Background(), "abc")
	require.NoError(t, err)
	assert.Len(t, fs.Segments, 1)

	_, err = p.GetAnalysis(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.GetAnalysis(context.Background(), "../abc")
	assert.Error(t, err)
}

func TestDirProviderRequiresDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewDir(file)
	assert.Error(t, err)

	_, err = NewDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
