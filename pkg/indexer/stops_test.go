package indexer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/itinerary/pkg/elastic_client"
	"github.com/travigo/itinerary/pkg/timetable"
)

type fakeElasticsearch struct {
	mutex    sync.Mutex
	requests []string
	bulk     []string

	deleteStatus int
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)

	f.mutex.Lock()
	defer f.mutex.Unlock()

	switch {
	case r.URL.Path == "/":
		w.Write([]byte(`{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
		return
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		f.bulk = append(f.bulk, string(body))
		w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
		return
	case strings.HasPrefix(r.URL.Path, "/_cat/indices/"):
		w.Write([]byte(`[{"index":"itinerary-stops-test-1"},{"index":"itinerary-stops-test-2"},{"index":"itinerary-stops-test-grand-est-5"},{"index":"itinerary-stops-test-backup"}]`))
	case r.Method == http.MethodDelete && f.deleteStatus != 0:
		w.WriteHeader(f.deleteStatus)
		w.Write([]byte(`{"error":{"type":"security_exception"},"status":403}`))
	default:
		w.Write([]byte(`{"acknowledged":true}`))
	}

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func connect(t *testing.T) *fakeElasticsearch {
	fake := &fakeElasticsearch{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	t.Setenv("TRAVIGO_ELASTICSEARCH_ADDRESS", server.URL)
	require.NoError(t, elastic_client.Connect(true))
	t.Cleanup(func() { elastic_client.Client = nil })

	return fake
}

func TestIndexStops(t *testing.T) {
	fake := connect(t)

	stops, _, err := timetable.ParseStops(strings.NewReader("stop_id,stop_name,stop_lat,stop_lon\nS1,Strasbourg,48.585,7.734\nS2,Saverne,,\n"), nil)
	require.NoError(t, err)

	indexName, err := IndexStops(context.Background(), "Test", stops)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(indexName, "itinerary-stops-test-"))

	elastic_client.WaitUntilQueueEmpty()

	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	assert.Equal(t, []string{"PUT /" + indexName}, fake.requests)
	require.Len(t, fake.bulk, 1)
	assert.Contains(t, fake.bulk[0], `{"Feed":"Test","ID":"S1","Name":"Strasbourg","Location":{"lat":48.585,"lon":7.734}}`)
	assert.Contains(t, fake.bulk[0], `{"Feed":"Test","ID":"S2","Name":"Saverne"}`)
}

func TestDeleteOldIndexes(t *testing.T) {
	fake := connect(t)

	require.NoError(t, DeleteOldIndexes(context.Background(), StopIndexPrefix("test"), "itinerary-stops-test-2"))

	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	// test-grand-est is a different feed sharing the wildcard
	assert.Equal(t, []string{
		"GET /_cat/indices/itinerary-stops-test-*",
		"DELETE /itinerary-stops-test-1",
	}, fake.requests)
}

func TestDeleteOldIndexesFailedDelete(t *testing.T) {
	fake := connect(t)
	fake.deleteStatus = http.StatusForbidden

	err := DeleteOldIndexes(context.Background(), StopIndexPrefix("test"), "itinerary-stops-test-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itinerary-stops-test-1")
}

func TestIsGeneration(t *testing.T) {
	assert.True(t, isGeneration("itinerary-stops-test", "itinerary-stops-test-1760000000"))
	assert.False(t, isGeneration("itinerary-stops-test", "itinerary-stops-test-grand-est-1760000000"))
	assert.False(t, isGeneration("itinerary-stops-test", "itinerary-stops-test-"))
	assert.False(t, isGeneration("itinerary-stops-test", "itinerary-stops-other-1"))
}
