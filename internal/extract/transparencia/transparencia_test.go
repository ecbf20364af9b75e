package transparencia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
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

// paymentsPage fabricates n payment records.
func paymentsPage(n, offset int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":%d,"dataReferencia":"2024-01-01","municipio":{"codigoIBGE":"2304400","nomeIBGE":"Fortaleza"},"valor":600.5,"quantidadeBeneficiados":3}`, offset+i)
	}
	b.WriteString("]")
	return b.String()
}

func TestCollectBolsaFamiliaPagination(t *testing.T) {
	// Pages of 15, 15 and 7 records: 37 records in exactly 3 requests.
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "secret", r.Header.Get("chave-api-dados"))
		assert.Equal(t, "202401", r.URL.Query().Get("mesAno"))
		assert.Equal(t, "23", r.URL.Query().Get("codigoIbge"))

		page, err := strconv.Atoi(r.URL.Query().Get("pagina"))
		require.NoError(t, err)
		switch page {
		case 1, 2:
			fmt.Fprint(w, paymentsPage(15, (page-1)*15))
		case 3:
			fmt.Fprint(w, paymentsPage(7, 30))
		default:
			t.Errorf("unexpected request for page %d", page)
			fmt.Fprint(w, "[]")
		}
	}))
	defer server.Close()

	client := NewClient(testFetch(), config.PortalConfig{APIKey: "secret"}, server.URL, nil)
	payments := client.CollectBolsaFamilia(context.Background(), 2024, 1, "CE")

	assert.Len(t, payments, 37)
	assert.Equal(t, int32(3), calls.Load(), "short page must stop pagination")

	assert.Equal(t, "CE", payments[0].UF)
	assert.Equal(t, 2024, payments[0].Year)
	assert.Equal(t, 1, payments[0].Month)
	assert.Equal(t, 600.5, payments[0].Valor)
	assert.Equal(t, "Fortaleza", payments[0].Municipio.Nome)
}

func TestMissingAPIKeySkipsWithoutRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(testFetch(), config.PortalConfig{}, server.URL, nil)
	assert.False(t, client.HasKey())
	assert.Empty(t, client.CollectBolsaFamilia(context.Background(), 2024, 1, "CE"))
	assert.Empty(t, client.CollectTransfers(context.Background(), 2024, 1, "CE"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestUnknownUFReturnsEmpty(t *testing.T) {
	client := NewClient(testFetch(), config.PortalConfig{APIKey: "secret"}, "http://unused.invalid", nil)
	assert.Empty(t, client.CollectBolsaFamilia(context.Background(), 2024, 1, "SP"))
}

func TestCollectTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "29", r.URL.Query().Get("codigoUF"))
		records := []map[string]any{
			{"ano": 2024, "mes": 2, "valor": 1500.0, "tipoTransferencia": "Constitucionais"},
		}
		require.NoError(t, json.NewEncoder(w).Encode(records))
	}))
	defer server.Close()

	client := NewClient(testFetch(), config.PortalConfig{APIKey: "secret"}, server.URL, nil)
	transfers := client.CollectTransfers(context.Background(), 2024, 2, "BA")

	require.Len(t, transfers, 1)
	assert.Equal(t, "BA", transfers[0].UF)
	assert.Equal(t, 1500.0, transfers[0].Valor)
}
