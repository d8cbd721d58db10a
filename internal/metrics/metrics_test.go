package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMessage("feeding")
	c.RecordMessage("feeding")
	c.RecordExtractionFailure("sleep", "extraction_parse")
	c.RecordBackendRequest("create_feeding", 201)
	c.RecordCacheLookup("context", true)
	c.RecordCacheLookup("context", false)
	c.RecordLLMLatency(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.messages.WithLabelValues("feeding")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.extractionFail.WithLabelValues("sleep", "extraction_parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.backend.WithLabelValues("create_feeding", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("context", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("context", "miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.llmLatency))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordMessage("query")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `carelog_messages_total{intent="query"} 1`))
}
