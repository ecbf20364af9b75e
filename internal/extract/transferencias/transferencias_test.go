package transferencias

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/extract/siconfi"
	"github.com/ciciatech/projeto-bruno/internal/fetch"
)

func testFetch() *fetch.Client {
	return fetch.New(config.HTTPConfig{
		Timeout:     5 * time.Second,
		MaxAttempts: 1,
		RetryDelay:  time.Second,
	}, fetch.WithSleep(func(time.Duration) {}))
}

func TestIsTransfer(t *testing.T) {
	cases := []struct {
		conta string
		want  bool
	}{
		{"Cota-Parte do FPE", true},
		{"TRANSFERÊNCIAS CORRENTES", true},
		{"Recursos do FUNDEB", true},
		{"Royalties do Petróleo", true},
		{"Compensações Financeiras", true},
		{"Receita Tributária", false},
		{"IPTU", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isTransfer(tc.conta), tc.conta)
	}
}

func TestCollectStateFiltersTransferLines(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "23", r.URL.Query().Get("id_ente"))
		anexo := r.URL.Query().Get("no_anexo")
		assert.Contains(t, []string{"RREO-Anexo 01", "RREO-Anexo 06"}, anexo)

		body := map[string]any{"items": []map[string]any{
			{"conta": "Cota-Parte do FPM", "valor": 100.0, "coluna": "Até o Bimestre"},
			{"conta": "Receita Tributária", "valor": 999.0, "coluna": "Até o Bimestre"},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	defer server.Close()

	client := siconfi.NewClient(testFetch(), server.URL, nil)
	extractor := New(client, nil)
	records := extractor.CollectState(context.Background(), 2023, "23", "CE")

	// 2 annexes × 6 bimesters, one transfer line each.
	assert.Equal(t, int32(12), calls.Load())
	require.Len(t, records, 12)
	for _, r := range records {
		assert.Equal(t, "Cota-Parte do FPM", r.Conta)
		assert.Equal(t, "CE", r.UF)
	}
}

func TestCollectStateDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := siconfi.NewClient(testFetch(), server.URL, nil)
	extractor := New(client, nil)
	assert.Empty(t, extractor.CollectState(context.Background(), 2023, "23", "CE"))
}
