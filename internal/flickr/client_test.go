package flickr_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flickbridge/internal/flickr"
)

const photoInfoOK = `{
  "photo": {
    "id": "6318576132",
    "owner": {"nsid": "12345678@N00", "username": "poly", "realname": "Polly Penguin", "path_alias": "poly"},
    "title": {"_content": "A penguin"},
    "description": {"_content": ""},
    "license": "4",
    "dates": {"posted": "1320652800", "taken": "2011-11-05 13:04:01", "takengranularity": "0"},
    "urls": {"url": [{"type": "photopage", "_content": "https://www.flickr.com/photos/poly/6318576132/"}]}
  },
  "stat": "ok"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *flickr.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return flickr.NewClient(
		flickr.Config{APIKey: "test-key", BaseURL: server.URL},
		flickr.WithSleeper(func(time.Duration) {}),
	)
}

func TestGetPhotoParsesMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "flickr.photos.getInfo" {
			t.Errorf("unexpected method param %q", got)
		}
		w.Write([]byte(photoInfoOK))
	})

	meta, err := client.GetPhoto(context.Background(), "6318576132")
	if err != nil {
		t.Fatalf("GetPhoto failed: %v", err)
	}
	if meta.ID != "6318576132" {
		t.Fatalf("id = %q", meta.ID)
	}
	if meta.Owner.DisplayName() != "Polly Penguin" {
		t.Fatalf("display name = %q", meta.Owner.DisplayName())
	}
	if meta.PageURL != "https://www.flickr.com/photos/poly/6318576132/" {
		t.Fatalf("page url = %q", meta.PageURL)
	}
	if meta.DateTaken == nil || meta.DateTaken.Granularity != flickr.GranularitySecond {
		t.Fatalf("date taken = %+v", meta.DateTaken)
	}
	if meta.DatePosted.IsZero() {
		t.Fatal("expected posted date")
	}
}

func TestGetPhotoNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat": "fail", "code": 1, "message": "Photo not found"}`))
	})

	_, err := client.GetPhoto(context.Background(), "999")
	if !errors.Is(err, flickr.ErrPhotoNotFound) {
		t.Fatalf("expected ErrPhotoNotFound, got %v", err)
	}
}

func TestGetPhotoPrivate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat": "fail", "code": 2, "message": "Permission denied"}`))
	})

	_, err := client.GetPhoto(context.Background(), "999")
	if !errors.Is(err, flickr.ErrPhotoPrivate) {
		t.Fatalf("expected ErrPhotoPrivate, got %v", err)
	}
}

func TestGetPhotoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(photoInfoOK))
	})

	if _, err := client.GetPhoto(context.Background(), "6318576132"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGetPhotoRetriesAreBounded(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.GetPhoto(context.Background(), "6318576132"); err == nil {
		t.Fatal("expected failure after bounded retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGetPhotoDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"stat": "fail", "code": 1, "message": "Photo not found"}`))
	})

	if _, err := client.GetPhoto(context.Background(), "999"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls.Load())
	}
}
