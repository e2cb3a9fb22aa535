package commons_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flickbridge/internal/commons"
	"flickbridge/internal/sdc"
	"flickbridge/internal/services"
)

const entityResponse = `{
  "entities": {
    "M138598125": {
      "id": "M138598125",
      "title": "File:Example.jpg",
      "statements": {
        "P12120": [
          {
            "type": "statement",
            "mainsnak": {
              "snaktype": "value",
              "property": "P12120",
              "datavalue": {"type": "string", "value": "53240661807"}
            }
          }
        ]
      }
    }
  },
  "success": 1
}`

func newTestClient(t *testing.T, handler http.Handler) *commons.HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return commons.NewHTTPClient(
		commons.Config{APIURL: server.URL, UserAgent: "flickbridge-test"},
		commons.WithSleeper(func(time.Duration) {}),
	)
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Example.jpg", "File:Example.jpg"},
		{"File:Example.jpg", "File:Example.jpg"},
		{"File:Some_photo.jpg", "File:Some photo.jpg"},
		{"  Example.jpg ", "File:Example.jpg"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := commons.NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetStructuredData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "wbgetentities" {
			t.Errorf("action = %q", got)
		}
		w.Write([]byte(entityResponse))
	}))

	data, err := client.GetStructuredData(context.Background(), "Example.jpg")
	if err != nil {
		t.Fatalf("GetStructuredData failed: %v", err)
	}
	if data.PageID != "M138598125" {
		t.Fatalf("page id = %q", data.PageID)
	}
	if len(data.Statements) != 1 || data.Statements[0].Property != sdc.PropFlickrPhotoID {
		t.Fatalf("unexpected statements: %+v", data.Statements)
	}
}

func TestGetStructuredDataEmptyStatementsArray(t *testing.T) {
	// Files with no structured data return statements as [] not {}.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entities": {"M1": {"id": "M1", "title": "File:Empty.jpg", "statements": []}}}`))
	}))

	data, err := client.GetStructuredData(context.Background(), "Empty.jpg")
	if err != nil {
		t.Fatalf("GetStructuredData failed: %v", err)
	}
	if len(data.Statements) != 0 {
		t.Fatalf("expected no statements, got %d", len(data.Statements))
	}
}

func TestGetStructuredDataMissingPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entities": {"-1": {"missing": ""}}}`))
	}))

	_, err := client.GetStructuredData(context.Background(), "Nope.jpg")
	if !errors.Is(err, commons.ErrPageMissing) {
		t.Fatalf("expected ErrPageMissing, got %v", err)
	}
}

func TestAddStatementsPermissionDenied(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"query": {"tokens": {"csrftoken": "abc+\\"}}}`))
			return
		}
		w.Write([]byte(`{"error": {"code": "permissiondenied", "info": "You do not have permission"}}`))
	}))

	err := client.AddStatements(context.Background(), "Example.jpg",
		[]sdc.Statement{sdc.PhotoIDStatement("1")}, "test edit")
	if !errors.Is(err, services.ErrRemoteWrite) {
		t.Fatalf("expected ErrRemoteWrite, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("write rejections must not be retryable")
	}
}

func TestAddStatementsSendsClaims(t *testing.T) {
	var gotData string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"query": {"tokens": {"csrftoken": "tok"}}}`))
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotData = r.PostForm.Get("data")
		w.Write([]byte(`{"success": 1}`))
	}))

	err := client.AddStatements(context.Background(), "Example.jpg",
		[]sdc.Statement{sdc.PhotoIDStatement("53240661807")}, "add missing statements")
	if err != nil {
		t.Fatalf("AddStatements failed: %v", err)
	}
	if gotData == "" {
		t.Fatal("expected claims payload in data field")
	}
}

func TestAddStatementsConcurrentWriters(t *testing.T) {
	// The batch runner shares one client across its workers, so concurrent
	// writes must be safe and the CSRF token fetched once, not per worker.
	var tokenFetches, edits atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			tokenFetches.Add(1)
			w.Write([]byte(`{"query": {"tokens": {"csrftoken": "tok"}}}`))
			return
		}
		edits.Add(1)
		w.Write([]byte(`{"success": 1}`))
	}))

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.AddStatements(context.Background(), "Example.jpg",
				[]sdc.Statement{sdc.PhotoIDStatement("1")}, "add missing statements")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d: %v", i, err)
		}
	}
	if got := tokenFetches.Load(); got != 1 {
		t.Errorf("token fetches = %d, want 1", got)
	}
	if got := edits.Load(); got != workers {
		t.Errorf("edits = %d, want %d", got, workers)
	}
}

func TestAddStatementsNoopOnEmptyDiff(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty statement list")
	}))
	if err := client.AddStatements(context.Background(), "Example.jpg", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetWikitext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"pages": [{"revisions": [{"slots": {"main": {"content": "== Summary ==\nSource: https://www.flickr.com/photos/poly/6318576132/"}}}]}]}}`))
	}))

	text, err := client.GetWikitext(context.Background(), "Example.jpg")
	if err != nil {
		t.Fatalf("GetWikitext failed: %v", err)
	}
	if text == "" {
		t.Fatal("expected wikitext content")
	}
}
