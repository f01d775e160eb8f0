// Package elastic implements the user search index on Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
)

const requestTimeout = 3 * time.Second

// UserIndex keeps one document per user, keyed by user id.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

type userDoc struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Name      string   `json:"name"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	IsActive  bool     `json:"is_active"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toDoc(u *entity.User) userDoc {
	roles := make([]string, 0, len(u.Roles()))
	for _, r := range u.Roles() {
		roles = append(roles, string(r))
	}
	return userDoc{
		ID:        u.ID(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Name:      u.FullName(),
		AvatarURL: u.Avatar(),
		IsActive:  u.IsActive(),
		Roles:     roles,
		CreatedAt: u.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt: u.UpdatedAt().Format(time.RFC3339Nano),
	}
}

var mapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "first_name": {"type": "text"},
      "last_name":  {"type": "text"},
      "name":       {"type": "text"},
      "avatar_url": {"type": "keyword", "index": false},
      "is_active":  {"type": "boolean"},
      "roles":      {"type": "keyword"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it already exists.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index exists: %w", err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(mapping)}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(toDoc(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: u.ID(), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// Remove deletes the user's document. A missing document is not an error.
func (x *UserIndex) Remove(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// Search runs a multi_match over email and name fields.
func (x *UserIndex) Search(ctx context.Context, q string, offset, limit int) ([]string, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "first_name", "last_name"},
			},
		},
		"from":             offset,
		"size":             limit,
		"_source":          false,
		"track_total_hits": true,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, responseError("search", res)
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("es search decode: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("es %s: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

var _ service.UserIndex = (*UserIndex)(nil)
