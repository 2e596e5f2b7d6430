package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type recorded struct {
	method, path, body string
}

func fakeES(t *testing.T, status int, reply string) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{r.Method, r.URL.Path, string(b)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &seen
}

func TestIndexPutsTourDocument(t *testing.T) {
	es, seen := fakeES(t, http.StatusCreated, `{"result":"created"}`)
	idx := NewTourIndex(es, "tours")

	tour := &entity.Tour{ID: primitive.NewObjectID(), Name: "The Forest Hiker", Price: 397, Difficulty: "easy"}
	require.NoError(t, idx.Index(context.Background(), tour))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/tours/_doc/"+tour.ID.Hex(), got.path)

	var doc TourHit
	require.NoError(t, json.Unmarshal([]byte(got.body), &doc))
	assert.Equal(t, "The Forest Hiker", doc.Name)
}

func TestDeleteIgnoresMissingDocument(t *testing.T) {
	es, _ := fakeES(t, http.StatusNotFound, `{"result":"not_found"}`)
	assert.NoError(t, NewTourIndex(es, "tours").Delete(context.Background(), "abc"))
}

func TestSearchDecodesHits(t *testing.T) {
	es, seen := fakeES(t, http.StatusOK, `{"hits":{"hits":[{"_source":{"id":"1","name":"The Sea Explorer","price":497}}]}}`)

	hits, err := NewTourIndex(es, "tours").Search(context.Background(), "sea", 500)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "The Sea Explorer", hits[0].Name)

	assert.True(t, strings.HasSuffix((*seen)[0].path, "/tours/_search"))
	assert.Contains(t, (*seen)[0].body, `"size":50`)
}

func TestSearchFailureIsUpstream(t *testing.T) {
	es, _ := fakeES(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err := NewTourIndex(es, "tours").Search(context.Background(), "sea", 10)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}
