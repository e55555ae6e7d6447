package search

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type boardDoc struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDoc(b *entity.Board) boardDoc {
	return boardDoc{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Author:    b.Author,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// BoardIndex keeps boards searchable in Elasticsearch.
type BoardIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger logrus.FieldLogger
}

func NewBoardIndex(es *elasticsearch.Client, index string, logger logrus.FieldLogger) *BoardIndex {
	return &BoardIndex{ES: es, Index: index, Logger: logger}
}

// IndexBoard upserts b.
func (s *BoardIndex) IndexBoard(ctx context.Context, b *entity.Board) error {
	body, err := json.Marshal(toDoc(b))
	if err != nil {
		return oops.Code("SEARCH_ENCODE_FAILED").With("board_id", b.ID).Wrap(err)
	}
	req := esapi.IndexRequest{
		Index:      s.Index,
		DocumentID: strconv.FormatInt(b.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		return oops.Code("SEARCH_INDEX_FAILED").With("board_id", b.ID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return oops.Code("SEARCH_INDEX_FAILED").With("board_id", b.ID).With("status", res.StatusCode).Errorf("es index: %s", res.Status())
	}
	return nil
}

// DeleteBoard removes the document for id. A missing document is not an error.
func (s *BoardIndex) DeleteBoard(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: s.Index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		return oops.Code("SEARCH_DELETE_FAILED").With("board_id", id).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return oops.Code("SEARCH_DELETE_FAILED").With("board_id", id).With("status", res.StatusCode).Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over title and content.
func (s *BoardIndex) Search(ctx context.Context, q string, size int) ([]entity.BoardHit, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content", "author"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, oops.Code("SEARCH_ENCODE_FAILED").Wrap(err)
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, oops.Code("SEARCH_QUERY_FAILED").With("q", q).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, oops.Code("SEARCH_QUERY_FAILED").With("q", q).With("status", res.StatusCode).Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64  `json:"_score"`
				Source boardDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, oops.Code("SEARCH_DECODE_FAILED").Wrap(err)
	}

	out := make([]entity.BoardHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.BoardHit{
			ID:      h.Source.ID,
			Title:   h.Source.Title,
			Author:  h.Source.Author,
			Snippet: snippet(h.Source.Content, 120),
			Score:   h.Score,
		})
	}
	return out, nil
}

// Reindex bulk-loads boards and returns how many were accepted.
func (s *BoardIndex) Reindex(ctx context.Context, boards []*entity.Board) (int, error) {
	if len(boards) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, b := range boards {
		meta := map[string]any{"index": map[string]any{"_index": s.Index, "_id": strconv.FormatInt(b.ID, 10)}}
		if err := enc.Encode(meta); err != nil {
			return 0, oops.Code("SEARCH_ENCODE_FAILED").Wrap(err)
		}
		if err := enc.Encode(toDoc(b)); err != nil {
			return 0, oops.Code("SEARCH_ENCODE_FAILED").With("board_id", b.ID).Wrap(err)
		}
	}

	c, cancel := context.WithTimeout(ctx, 10*requestTimeout)
	defer cancel()
	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(c, s.ES)
	if err != nil {
		return 0, oops.Code("SEARCH_BULK_FAILED").Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return 0, oops.Code("SEARCH_BULK_FAILED").With("status", res.StatusCode).Errorf("es bulk: %s", res.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, oops.Code("SEARCH_DECODE_FAILED").Wrap(err)
	}
	ok := 0
	for _, item := range parsed.Items {
		for _, r := range item {
			if r.Status >= 200 && r.Status < 300 {
				ok++
			}
		}
	}
	if parsed.Errors && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"accepted": ok, "total": len(boards)}).Warn("es bulk reported item errors")
	}
	return ok, nil
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
