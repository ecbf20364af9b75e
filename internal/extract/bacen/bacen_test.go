package bacen

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/fetch"
)

func testFetch() *fetch.Client {
	return fetch.New(config.HTTPConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 1,
		RetryDelay:  time.Second,
	}, fetch.WithSleep(func(time.Duration) {}))
}

func TestCollectSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/433/dados", r.URL.Path)
		assert.Equal(t, "01/01/2015", r.URL.Query().Get("dataInicial"))
		assert.Equal(t, "31/12/2025", r.URL.Query().Get("dataFinal"))
		fmt.Fprint(w, `[
			{"data":"01/01/2015","valor":"1.24"},
			{"data":"01/02/2015","valor":"n/d"},
			{"data":"bogus","valor":"2.0"}
		]`)
	}))
	defer server.Close()

	client := NewClient(testFetch(), server.URL+"/series/%d/dados", nil)

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	obs := client.CollectSeries(context.Background(), Series{433, "ipca_mensal"}, start, end)

	// The row with an unparseable date is skipped; the unparseable
	// value survives as a null.
	require.Len(t, obs, 2)
	assert.Equal(t, 2015, obs[0].Date.Year())
	require.NotNil(t, obs[0].Value)
	assert.Equal(t, 1.24, *obs[0].Value)
	assert.Nil(t, obs[1].Value)
	assert.Equal(t, "ipca_mensal", obs[0].SeriesName)
	assert.Equal(t, 433, obs[0].SeriesCode)
}

func TestCollectSeriesEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(testFetch(), server.URL+"/series/%d/dados", nil)
	obs := client.CollectSeries(context.Background(), Series{1, "x"}, time.Now(), time.Now())
	assert.Empty(t, obs)
}

func TestCollectSeriesServerFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testFetch(), server.URL+"/series/%d/dados", nil)
	obs := client.CollectSeries(context.Background(), Series{1, "x"}, time.Now(), time.Now())
	assert.Empty(t, obs)
}

func TestCollectAllWalksSeriesSequentially(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[{"data":"01/01/2020","valor":"5"}]`)
	}))
	defer server.Close()

	client := NewClient(testFetch(), server.URL+"/series/%d/dados", nil)
	series := []Series{{1, "a"}, {2, "b"}, {3, "c"}}
	obs := client.CollectAll(context.Background(), series, time.Now(), time.Now())

	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, obs, 3)
}
