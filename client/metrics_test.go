package client

import (
	"testing"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/api/distribution"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

func TestNewGaugeDescriptor(t *testing.T) {
	d := NewGaugeDescriptor("custom.googleapis.com/tkcustom-metric-python", "TK demo custom metric from python")

	require.Equal(t, "custom.googleapis.com/tkcustom-metric-python", d.GetType())
	require.Equal(t, metricpb.MetricDescriptor_GAUGE, d.GetMetricKind())
	require.Equal(t, metricpb.MetricDescriptor_DOUBLE, d.GetValueType())
	require.Equal(t, "TK demo custom metric from python", d.GetDescription())
	require.Empty(t, d.GetName())
}

func TestTimestamp_SplitsSecondsAndNanos(t *testing.T) {
	ts := Timestamp(time.Unix(1700000123, 456789000))

	require.Equal(t, int64(1700000123), ts.GetSeconds())
	require.Equal(t, int32(456789000), ts.GetNanos())
}

func TestNewGaugeSeries_SinglePoint(t *testing.T) {
	labels := map[string]string{"instance_id": "i", "zone": "z"}
	series := NewGaugeSeries("custom.googleapis.com/x", NewResource("gce_instance", labels), 7.25, time.Unix(10, 5))

	labels["zone"] = "mutated"

	require.Equal(t, "custom.googleapis.com/x", series.GetMetric().GetType())
	require.Equal(t, "gce_instance", series.GetResource().GetType())
	require.Equal(t, "z", series.GetResource().GetLabels()["zone"])
	require.Len(t, series.GetPoints(), 1)

	point := series.GetPoints()[0]
	require.Equal(t, 7.25, point.GetValue().GetDoubleValue())
	require.Equal(t, int64(10), point.GetInterval().GetEndTime().GetSeconds())
	require.Equal(t, int32(5), point.GetInterval().GetEndTime().GetNanos())
	require.Nil(t, point.GetInterval().GetStartTime())
}

func TestFilters(t *testing.T) {
	require.Equal(t, `metric.type = "custom.googleapis.com/a"`, TypeFilter("custom.googleapis.com/a"))
	require.Equal(t, `metric.type = starts_with("custom.googleapis.com/")`, TypePrefixFilter("custom.googleapis.com/"))
	require.Equal(t, "projects/p", ProjectName("p"))
}

func TestPointValue(t *testing.T) {
	tests := []struct {
		name  string
		value *monitoringpb.TypedValue
		want  interface{}
		ok    bool
	}{
		{"double", &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: 1.5}}, 1.5, true},
		{"int64", &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_Int64Value{Int64Value: 3}}, int64(3), true},
		{"bool", &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_BoolValue{BoolValue: true}}, true, true},
		{"string", &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_StringValue{StringValue: "s"}}, "s", true},
		{"distribution", &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DistributionValue{DistributionValue: &distribution.Distribution{Mean: 4}}}, 4.0, true},
		{"empty", &monitoringpb.TypedValue{}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PointValue(tt.value)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
