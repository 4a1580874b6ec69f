package googlebooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

const volumesBody = `{
  "kind": "books#volumes",
  "totalItems": 2,
  "items": [
    {"id": "empty", "volumeInfo": {"title": ""}},
    {
      "id": "vol-1",
      "volumeInfo": {
        "title": "아몬드",
        "authors": ["손원평"],
        "description": "감정을 느끼지 못하는 소년의 성장 이야기",
        "categories": ["Fiction"],
        "imageLinks": {"thumbnail": "http://books.google.com/cover.jpg"},
        "industryIdentifiers": [
          {"type": "ISBN_10", "identifier": "8936434268"},
          {"type": "ISBN_13", "identifier": "9788936434267"}
        ]
      }
    }
  ]
}`

type memCache struct {
	m    map[string]string
	sets int
}

func (c *memCache) Get(_ context.Context, key string, out any) (bool, error) {
	raw, ok := c.m[key]
	if !ok {
		return false, nil
	}
	rec := out.(*Record)
	parts := strings.SplitN(raw, "|", 2)
	rec.Title, rec.Author = parts[0], parts[1]
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	rec := v.(*Record)
	c.m[key] = rec.Title + "|" + rec.Author
	c.sets++
	return nil
}

func (c *memCache) Close() error { return nil }

func newServer(t *testing.T, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/volumes") {
			t.Errorf("path=%s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); !strings.HasPrefix(q, "intitle:") {
			t.Errorf("q=%q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, url string, cache *memCache) *Client {
	t.Helper()
	cfg := Config{Endpoint: url + "/", RPS: 100, Burst: 10, CacheTTL: time.Hour}
	var c *Client
	var err error
	if cache != nil {
		c, err = NewClient(context.Background(), logger.Nop(), cfg, cache)
	} else {
		c, err = NewClient(context.Background(), logger.Nop(), cfg, nil)
	}
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSearchByTitle(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, volumesBody, &calls)
	c := newTestClient(t, srv.URL, nil)

	rec, err := c.SearchByTitle(context.Background(), "아몬드")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a record")
	}
	if rec.ID != "vol-1" || rec.Author != "손원평" || rec.ISBN13 != "9788936434267" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.CoverURL != "https://books.google.com/cover.jpg" {
		t.Fatalf("cover=%q", rec.CoverURL)
	}
}

func TestSearchByTitleNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, `{"kind":"books#volumes","totalItems":0}`, &calls)
	c := newTestClient(t, srv.URL, nil)

	rec, err := c.SearchByTitle(context.Background(), "없는 책")
	if err != nil || rec != nil {
		t.Fatalf("rec=%v err=%v want nil,nil", rec, err)
	}
	if rec, err := c.SearchByTitle(context.Background(), "   "); rec != nil || err != nil {
		t.Fatalf("blank title rec=%v err=%v", rec, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls=%d want 1", calls.Load())
	}
}

func TestSearchByTitleUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, volumesBody, &calls)
	cache := &memCache{m: map[string]string{}}
	c := newTestClient(t, srv.URL, cache)

	for i := 0; i < 3; i++ {
		rec, err := c.SearchByTitle(context.Background(), " 아몬드 ")
		if err != nil || rec == nil || rec.Title != "아몬드" {
			t.Fatalf("call %d rec=%v err=%v", i, rec, err)
		}
	}
	if calls.Load() != 1 || cache.sets != 1 {
		t.Fatalf("upstream calls=%d cache sets=%d want 1/1", calls.Load(), cache.sets)
	}
}

func TestSearchByTitleUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL, nil)
	if _, err := c.SearchByTitle(context.Background(), "아몬드"); err == nil {
		t.Fatalf("expected error")
	}
}
