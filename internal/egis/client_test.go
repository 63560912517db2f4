package egis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivic/assessing-api/internal/logger"
)

func testClient(baseURL string, pageSize int) *Client {
	return NewClient(ClientConfig{
		BaseURL:      baseURL,
		PageSize:     pageSize,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}, logger.New("test"))
}

func pageBody(t *testing.T, ids []int, exceeded bool) []byte {
	t.Helper()
	features := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		features = append(features, map[string]interface{}{
			"attributes": map[string]interface{}{"OBJECTID": id},
		})
	}
	body, err := json.Marshal(map[string]interface{}{
		"features":              features,
		"exceededTransferLimit": exceeded,
	})
	require.NoError(t, err)
	return body
}

func TestQueryPaginatesUntilLimitClears(t *testing.T) {
	// Three pages: the first two are truncated, the third is not. The client
	// must issue exactly three requests with advancing offsets and return the
	// concatenation.
	var offsets []string
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		offsets = append(offsets, r.URL.Query().Get("resultOffset"))

		switch calls {
		case 1:
			w.Write(pageBody(t, []int{1, 2}, true))
		case 2:
			w.Write(pageBody(t, []int{3, 4}, true))
		default:
			w.Write(pageBody(t, []int{5}, false))
		}
	}))
	defer server.Close()

	client := testClient(server.URL, 2)
	features, err := client.Query(context.Background(), LayerValueHistory, "PID = '0123456789'", false)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"0", "2", "4"}, offsets)
	assert.Len(t, features, 5)
}

func TestQuerySendsProtocolParameters(t *testing.T) {
	var captured map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		captured = map[string]string{
			"path":              r.URL.Path,
			"where":             q.Get("where"),
			"outFields":         q.Get("outFields"),
			"returnGeometry":    q.Get("returnGeometry"),
			"f":                 q.Get("f"),
			"resultRecordCount": q.Get("resultRecordCount"),
		}
		w.Write(pageBody(t, nil, false))
	}))
	defer server.Close()

	client := testClient(server.URL, 25)
	_, err := client.Query(context.Background(), LayerRealEstate, "PID = '0123456789'", true)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("/%d/query", LayerRealEstate), captured["path"])
	assert.Equal(t, "PID = '0123456789'", captured["where"])
	assert.Equal(t, "*", captured["outFields"])
	assert.Equal(t, "true", captured["returnGeometry"])
	assert.Equal(t, "json", captured["f"])
	assert.Equal(t, "25", captured["resultRecordCount"])
}

func TestQueryRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(pageBody(t, []int{1}, false))
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	features, err := client.Query(context.Background(), LayerTaxes, "PID = '0123456789'", false)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, features, 1)
}

func TestQueryFailsAfterRetryBudget(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	_, err := client.Query(context.Background(), LayerOwners, "PID = '0123456789'", false)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestQueryStopsRetryingOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		PageSize:     10,
		MaxAttempts:  3,
		RetryBackoff: time.Hour, // the cancelled context must short-circuit this
	}, logger.New("test"))

	_, err := client.Query(ctx, LayerSales, "PID = '0123456789'", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryDecodesGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"features": [{
				"attributes": {"PID": "0123456789"},
				"geometry": {"rings": [[[-71.06, 42.36], [-71.05, 42.36], [-71.06, 42.36]]]}
			}],
			"exceededTransferLimit": false
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	features, err := client.Query(context.Background(), LayerRealEstate, "PID = '0123456789'", true)

	require.NoError(t, err)
	require.Len(t, features, 1)
	require.NotNil(t, features[0].Geometry)
	assert.False(t, features[0].Geometry.IsEmpty())
}
