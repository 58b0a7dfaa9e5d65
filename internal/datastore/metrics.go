package datastore

import (
	"sync"
	"time"

	"github.com/tsuchida/bunrui-go/internal/observability/metrics"
)

var (
	metricsMutex sync.RWMutex
	storeMetrics *metrics.DatastoreMetrics
)

// SetMetrics wires Prometheus metrics into datastore operations. Until it
// is called, or when called with nil, operations are not recorded.
func SetMetrics(m *metrics.DatastoreMetrics) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	storeMetrics = m
}

func getMetrics() *metrics.DatastoreMetrics {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return storeMetrics
}

// recordOp records the outcome and duration of one datastore operation.
// Meant to be deferred with a named error return.
func recordOp(operation string, start time.Time, err error) {
	m := getMetrics()
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(operation, status, time.Since(start).Seconds())
}

// recordRowCount refreshes the stored rows gauge after a mutation.
func (ds *DataStore) recordRowCount() {
	m := getMetrics()
	if m == nil {
		return
	}
	var total int64
	if err := ds.DB.Model(&AnalysisResult{}).Count(&total).Error; err == nil {
		m.SetResultRows(total)
	}
}
