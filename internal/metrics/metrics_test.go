package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreOperation(t *testing.T) {
	success := StoreOperations.WithLabelValues("metrics_test", "success")
	failure := StoreOperations.WithLabelValues("metrics_test", "error")

	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	ObserveStoreOperation("metrics_test", time.Now(), nil)
	ObserveStoreOperation("metrics_test", time.Now(), errors.New("boom"))
	ObserveStoreOperation("metrics_test", time.Now(), errors.New("boom"))

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailure+2, testutil.ToFloat64(failure))
}
