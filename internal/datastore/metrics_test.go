package datastore

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tsuchida/bunrui-go/internal/observability/metrics"
)

// Deliberately not parallel, wires the package level metrics sink.
func TestOperationsRecordMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)

	SetMetrics(m)
	t.Cleanup(func() { SetMetrics(nil) })

	store := newTestStore(t)

	saved := testResult("柴犬", 90)
	require.NoError(t, store.Save(saved))

	_, err = store.List(1, 10, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))

	// Deleting the same id again fails and is counted as an error
	require.Error(t, store.Delete(saved.ID))

	expected := `
# HELP datastore_analysis_results_rows Number of stored analysis results
# TYPE datastore_analysis_results_rows gauge
datastore_analysis_results_rows 0
# HELP datastore_operations_total Total number of datastore operations
# TYPE datastore_operations_total counter
datastore_operations_total{operation="delete",status="error"} 1
datastore_operations_total{operation="delete",status="success"} 1
datastore_operations_total{operation="list",status="success"} 1
datastore_operations_total{operation="save",status="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"datastore_operations_total", "datastore_analysis_results_rows"))
}
