// Package search keeps a full-text copy of tours in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

const (
	requestTimeout = 3 * time.Second

	DefaultSize = 10
	MaxSize     = 50
)

// TourHit is the indexed projection of a tour returned by Search.
type TourHit struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Summary        string  `json:"summary"`
	Description    string  `json:"description,omitempty"`
	Difficulty     string  `json:"difficulty"`
	Price          float64 `json:"price"`
	RatingsAverage float64 `json:"ratingsAverage"`
	ImageCover     string  `json:"imageCover"`
}

func hitOf(t *entity.Tour) TourHit {
	return TourHit{
		ID:             t.ID.Hex(),
		Name:           t.Name,
		Slug:           t.Slug,
		Summary:        t.Summary,
		Description:    t.Description,
		Difficulty:     t.Difficulty,
		Price:          t.Price,
		RatingsAverage: t.RatingsAverage,
		ImageCover:     t.ImageCover,
	}
}

type TourIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewTourIndex(es *elasticsearch.Client, index string) *TourIndex {
	return &TourIndex{es: es, index: index}
}

// Index upserts the tour document.
func (i *TourIndex) Index(ctx context.Context, t *entity.Tour) error {
	b, err := json.Marshal(hitOf(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: t.ID.Hex(), Body: bytes.NewReader(b), Refresh: "false"}
	return i.do(ctx, req, false)
}

// Delete removes the tour document. A missing document is not an error.
func (i *TourIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	return i.do(ctx, req, true)
}

// Search runs a multi_match query over name, summary, description and
// difficulty, best matches first.
func (i *TourIndex) Search(ctx context.Context, q string, size int) ([]TourHit, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "summary^2", "description", "difficulty"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, apperror.Upstream("Search is unavailable", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 {
		return []TourHit{}, nil
	}
	if res.IsError() {
		return nil, apperror.Upstream("Search is unavailable", fmt.Errorf("search: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source TourHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperror.Upstream("Search is unavailable", err)
	}
	out := make([]TourHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

type requester interface {
	Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error)
}

func (i *TourIndex) do(ctx context.Context, req requester, allowNotFound bool) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !(allowNotFound && res.StatusCode == 404) {
		return fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return nil
}
