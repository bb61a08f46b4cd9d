// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdforensic/internal/httputil"
	"github.com/pdiddy/pdforensic/pkg/types"
)

const testHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestLookupKnownHash(t *testing.T) {
	var gotPath, gotKey, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-apikey")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"verdict":"malicious","positives":41,"total":70}`))
	}))
	defer srv.Close()

	cfg := types.IntelConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		UserAgent: "pdforensic-test",
	}
	rep, err := Lookup(context.Background(), srv.Client(), testHash, cfg)
	require.NoError(t, err)

	assert.Equal(t, "/files/"+testHash, gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "pdforensic-test", gotUA)
	assert.Equal(t, "malicious", rep.Verdict)
	assert.Equal(t, 41, rep.Positives)
	assert.Equal(t, 70, rep.Total)
	assert.Equal(t, testHash, rep.SHA256)
	assert.Contains(t, rep.String(), "verdict malicious (41/70 engines)")
}

func TestLookupUnknownHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rep, err := Lookup(context.Background(), srv.Client(), testHash,
		types.IntelConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "unknown", rep.Verdict)
	assert.Contains(t, rep.String(), "not previously seen")
}

func TestLookupRetriesOnRateLimit(t *testing.T) {
	orig := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = orig }()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"verdict":"clean","positives":0,"total":70}`))
	}))
	defer srv.Close()

	rep, err := Lookup(context.Background(), srv.Client(), testHash,
		types.IntelConfig{BaseURL: srv.URL, MaxRetries: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "clean", rep.Verdict)
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Lookup(context.Background(), srv.Client(), testHash,
		types.IntelConfig{BaseURL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestLookupNoBaseURL(t *testing.T) {
	_, err := Lookup(context.Background(), http.DefaultClient, testHash, types.IntelConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no base URL")
}

func TestLookupEmptyVerdictDefaultsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rep, err := Lookup(context.Background(), srv.Client(), testHash,
		types.IntelConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "unknown", rep.Verdict)
}
