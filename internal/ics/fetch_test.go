package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func feedBody() []byte {
	return calendar([]string{
		"UID:one@example.com",
		"SUMMARY:Team Sync",
		"DTSTART:20250107T090000Z",
		"DTEND:20250107T100000Z",
	})
}

func TestFetchOneCachesWithETag(t *testing.T) {
	var hits atomic.Int32
	body := feedBody()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "feed", URL: srv.URL}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.False(t, first.FromCache)
	require.Equal(t, body, first.Body)

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.True(t, second.FromCache)
	require.Equal(t, body, second.Body)
	require.Equal(t, int32(2), hits.Load())
}

func TestFetchOneFallsBackToCacheOnError(t *testing.T) {
	body := feedBody()
	var failing atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "feed", URL: srv.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	failing.Store(true)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.Equal(t, body, res.Body)
}

func TestFetchOneFailsWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	_, err := f.FetchOne(context.Background(), Source{ID: "feed", URL: srv.URL})
	require.Error(t, err)

	_, err = f.FetchOne(context.Background(), Source{ID: "feed"})
	require.Error(t, err)
}

func TestFetchEventsCollectsPerSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(feedBody())
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	sources := []Source{
		{ID: "good", URL: srv.URL},
		{ID: "bad", URL: "http://127.0.0.1:1/unreachable.ics"},
	}
	window := ExpandConfig{
		Location:   time.UTC,
		RangeStart: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	events, errs := f.FetchEvents(context.Background(), sources, nil, window)
	require.Len(t, events, 1)
	require.Len(t, errs, 1)
	require.Equal(t, "good/one@example.com", events[0].ID)
}

func TestRedactURL(t *testing.T) {
	require.Equal(t,
		"https://calendar.example.com/...(redacted)",
		redactURL("https://calendar.example.com/private/secret-token/basic.ics"))
	require.Equal(t,
		"https://calendar.example.com/...(redacted)",
		redactURL("https://calendar.example.com"))
	require.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
