package diagram

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"flowspark/metrics"
)

func mustGather(t *testing.T, reg *metrics.Registry) []*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.GetPrometheusRegistry().Gather()
	require.NoError(t, err)
	return mfs
}
