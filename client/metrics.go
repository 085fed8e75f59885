package client

import (
	"fmt"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ProjectName returns the resource name of a project.
func ProjectName(project string) string {
	return "projects/" + project
}

// NewGaugeDescriptor builds a GAUGE descriptor carrying DOUBLE values.
func NewGaugeDescriptor(metricType string, description string) *metricpb.MetricDescriptor {
	return &metricpb.MetricDescriptor{
		Type:        metricType,
		MetricKind:  metricpb.MetricDescriptor_GAUGE,
		ValueType:   metricpb.MetricDescriptor_DOUBLE,
		Description: description,
	}
}

// NewResource builds a monitored resource. Labels are copied.
func NewResource(resourceType string, labels map[string]string) *monitoredres.MonitoredResource {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}

	return &monitoredres.MonitoredResource{
		Type:   resourceType,
		Labels: copied,
	}
}

// Timestamp splits t into whole seconds and the nanosecond remainder.
func Timestamp(t time.Time) *timestamppb.Timestamp {
	return &timestamppb.Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()),
	}
}

// NewGaugeSeries builds a series holding exactly one double point ending at now.
func NewGaugeSeries(metricType string, resource *monitoredres.MonitoredResource, value float64, now time.Time) *monitoringpb.TimeSeries {
	return &monitoringpb.TimeSeries{
		Metric: &metricpb.Metric{
			Type: metricType,
		},
		Resource: resource,
		Points: []*monitoringpb.Point{
			{
				Interval: &monitoringpb.TimeInterval{
					EndTime: Timestamp(now),
				},
				Value: &monitoringpb.TypedValue{
					Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: value},
				},
			},
		},
	}
}

// NewInterval builds the [start, end] interval used to read series back.
func NewInterval(start time.Time, end time.Time) *monitoringpb.TimeInterval {
	return &monitoringpb.TimeInterval{
		StartTime: Timestamp(start),
		EndTime:   Timestamp(end),
	}
}

// TypeFilter selects series of exactly one metric type.
func TypeFilter(metricType string) string {
	return fmt.Sprintf("metric.type = %q", metricType)
}

// TypePrefixFilter selects descriptors whose type starts with prefix.
func TypePrefixFilter(prefix string) string {
	return fmt.Sprintf("metric.type = starts_with(%q)", prefix)
}

// PointValue extracts a plain value from a point. Distributions report their
// mean; anything else unknown is skipped.
func PointValue(value *monitoringpb.TypedValue) (interface{}, bool) {
	switch v := value.GetValue().(type) {
	case *monitoringpb.TypedValue_DoubleValue:
		return v.DoubleValue, true
	case *monitoringpb.TypedValue_Int64Value:
		return v.Int64Value, true
	case *monitoringpb.TypedValue_BoolValue:
		return v.BoolValue, true
	case *monitoringpb.TypedValue_StringValue:
		return v.StringValue, true
	case *monitoringpb.TypedValue_DistributionValue:
		return v.DistributionValue.GetMean(), true
	default:
		return nil, false
	}
}
