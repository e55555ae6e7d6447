package search

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeES struct {
	mu       sync.Mutex
	requests []recordedRequest
	search   string
	status   int
}

func (f *fakeES) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	if r.URL.Path == "/" {
		_, _ = io.WriteString(w, `{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, f.search)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		lines := 0
		sc := bufio.NewScanner(strings.NewReader(string(body)))
		for sc.Scan() {
			lines++
		}
		items := make([]string, 0, lines/2)
		for i := 0; i < lines/2; i++ {
			items = append(items, `{"index":{"status":201}}`)
		}
		_, _ = io.WriteString(w, `{"errors":false,"items":[`+strings.Join(items, ",")+`]}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func (f *fakeES) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestIndex(t *testing.T) (*BoardIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewBoardIndex(es, "boards", nil), fake
}

func sampleBoard() *entity.Board {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Board{ID: 42, Title: "Release notes", Content: "what changed", Author: "alice", CreatedAt: now, UpdatedAt: now}
}

func TestIndexBoard(t *testing.T) {
	idx, fake := newTestIndex(t)

	require.NoError(t, idx.IndexBoard(context.Background(), sampleBoard()))

	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/boards/_doc/42", req.Path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &doc))
	assert.Equal(t, "Release notes", doc["title"])
	assert.Equal(t, "alice", doc["author"])
}

func TestIndexBoardErrorStatus(t *testing.T) {
	idx, fake := newTestIndex(t)
	fake.status = http.StatusInternalServerError

	assert.Error(t, idx.IndexBoard(context.Background(), sampleBoard()))
}

func TestDeleteBoardIgnoresMissing(t *testing.T) {
	idx, fake := newTestIndex(t)
	fake.status = http.StatusNotFound

	require.NoError(t, idx.DeleteBoard(context.Background(), 42))
	req := fake.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/boards/_doc/42", req.Path)
}

func TestSearch(t *testing.T) {
	idx, fake := newTestIndex(t)
	fake.search = `{"hits":{"hits":[
		{"_score":1.5,"_source":{"id":42,"title":"Release notes","content":"what changed","author":"alice"}},
		{"_score":0.7,"_source":{"id":7,"title":"Other","content":"` + strings.Repeat("x", 200) + `","author":"bob"}}
	]}}`

	hits, err := idx.Search(context.Background(), "release", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, int64(42), hits[0].ID)
	assert.Equal(t, "what changed", hits[0].Snippet)
	assert.InDelta(t, 1.5, hits[0].Score, 0.001)
	assert.True(t, strings.HasSuffix(hits[1].Snippet, "..."))

	req := fake.last()
	assert.Equal(t, "/boards/_search", req.Path)
	assert.Contains(t, req.Body, `"release"`)
	assert.Contains(t, req.Body, `"size":10`)
}

func TestReindex(t *testing.T) {
	idx, fake := newTestIndex(t)
	b2 := sampleBoard()
	b2.ID = 43

	n, err := idx.Reindex(context.Background(), []*entity.Board{sampleBoard(), b2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	req := fake.last()
	assert.Equal(t, "/_bulk", req.Path)
	assert.Contains(t, req.Body, `"_id":"42"`)
	assert.Contains(t, req.Body, `"_id":"43"`)
}

func TestReindexEmpty(t *testing.T) {
	idx, _ := newTestIndex(t)
	n, err := idx.Reindex(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
