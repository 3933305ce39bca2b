package wikimedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequester() *Requester {
	return NewRequester("DepictsEditor-test/0.0", 5*time.Second)
}

func TestSearchEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wbsearchentities", r.URL.Query().Get("action"))
		assert.Equal(t, "cat", r.URL.Query().Get("search"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))

		fmt.Fprint(w, `{"search":[
			{"id":"Q146","label":"house cat","description":"domesticated species"},
			{"id":"Q3306717","label":"Cat","description":"fictional character"}
		]}`)
	}))
	defer server.Close()

	client := NewWikidataClient(newTestRequester(), server.URL)

	results, err := client.SearchEntities(context.Background(), "cat", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Q146", results[0].ID)
	assert.Equal(t, "house cat", results[0].Label)
	assert.Equal(t, "domesticated species", results[0].Description)
}

func TestSearchEntities_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWikidataClient(newTestRequester(), server.URL)

	_, err := client.SearchEntities(context.Background(), "cat", 10)
	assert.Error(t, err)
}

func TestResolveEntity_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"search":[]}`)
	}))
	defer server.Close()

	client := NewWikidataClient(newTestRequester(), server.URL)

	entity, err := client.ResolveEntity(context.Background(), "zzz nothing")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestGetLabels_ChunksRequests(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query().Get("ids")
		requests = append(requests, ids)
		assert.Equal(t, "labels", r.URL.Query().Get("props"))
		assert.Equal(t, "en", r.URL.Query().Get("languages"))

		// 每个请求的实体都返回一个标签
		var parts []string
		for _, id := range strings.Split(ids, "|") {
			parts = append(parts, fmt.Sprintf(`"%s":{"labels":{"en":{"value":"label %s"}}}`, id, id))
		}
		fmt.Fprintf(w, `{"entities":{%s}}`, strings.Join(parts, ","))
	}))
	defer server.Close()

	client := NewWikidataClient(newTestRequester(), server.URL)

	var qids []string
	for i := 1; i <= 60; i++ {
		qids = append(qids, fmt.Sprintf("Q%d", i))
	}

	labels, err := client.GetLabels(context.Background(), qids)
	require.NoError(t, err)

	// 60 个 ID 分两批，每批不超过 50
	require.Len(t, requests, 2)
	assert.Len(t, strings.Split(requests[0], "|"), 50)
	assert.Len(t, strings.Split(requests[1], "|"), 10)

	assert.Len(t, labels, 60)
	assert.Equal(t, "label Q7", labels["Q7"])
}

func TestGetLabels_MissingLabelAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"entities":{
			"Q1":{"labels":{"en":{"value":"universe"}}},
			"Q2":{"labels":{}}
		}}`)
	}))
	defer server.Close()

	client := NewWikidataClient(newTestRequester(), server.URL)

	labels, err := client.GetLabels(context.Background(), []string{"Q1", "Q2"})
	require.NoError(t, err)
	assert.Equal(t, "universe", labels["Q1"])
	_, ok := labels["Q2"]
	assert.False(t, ok)
}

func TestGetLabels_Empty(t *testing.T) {
	client := NewWikidataClient(newTestRequester(), "http://127.0.0.1:0")

	labels, err := client.GetLabels(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, labels)
}
