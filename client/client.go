package client

import (
	"context"
	"fmt"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
)

// Service is the subset of the Cloud Monitoring metric API the commands use.
type Service interface {
	CreateMetricDescriptor(ctx context.Context, project string, descriptor *metricpb.MetricDescriptor) (*metricpb.MetricDescriptor, error)
	DeleteMetricDescriptor(ctx context.Context, name string) error
	ListMetricDescriptors(ctx context.Context, project string, filter string, visit func(*metricpb.MetricDescriptor) error) error
	CreateTimeSeries(ctx context.Context, project string, series ...*monitoringpb.TimeSeries) error
	ListTimeSeries(ctx context.Context, project string, filter string, interval *monitoringpb.TimeInterval, visit func(*monitoringpb.TimeSeries) error) error
	Close() error
}

// Client represents a gRPC connection to the Cloud Monitoring metric service.
type Client struct {
	metrics *monitoring.MetricClient
}

var _ Service = (*Client)(nil)

// CreateClient creates a Client. Credentials are resolved by the underlying
// library unless opts say otherwise.
func CreateClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	metrics, err := monitoring.NewMetricClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric client: %w", err)
	}

	return &Client{metrics: metrics}, nil
}

// CreateMetricDescriptor registers descriptor under the given project and
// returns the descriptor as stored by the service.
func (client *Client) CreateMetricDescriptor(ctx context.Context, project string, descriptor *metricpb.MetricDescriptor) (*metricpb.MetricDescriptor, error) {
	created, err := client.metrics.CreateMetricDescriptor(ctx, &monitoringpb.CreateMetricDescriptorRequest{
		Name:             ProjectName(project),
		MetricDescriptor: descriptor,
	})
	if err != nil {
		return nil, fmt.Errorf("create metric descriptor %v: %w", descriptor.GetType(), err)
	}

	return created, nil
}

// DeleteMetricDescriptor deletes the descriptor with the given resource name.
func (client *Client) DeleteMetricDescriptor(ctx context.Context, name string) error {
	err := client.metrics.DeleteMetricDescriptor(ctx, &monitoringpb.DeleteMetricDescriptorRequest{
		Name: name,
	})
	if err != nil {
		return fmt.Errorf("delete metric descriptor %v: %w", name, err)
	}

	return nil
}

// ListMetricDescriptors pages through the project's descriptors and calls
// visit for each one. Iteration stops at the first error from visit.
func (client *Client) ListMetricDescriptors(ctx context.Context, project string, filter string, visit func(*metricpb.MetricDescriptor) error) error {
	it := client.metrics.ListMetricDescriptors(ctx, &monitoringpb.ListMetricDescriptorsRequest{
		Name:   ProjectName(project),
		Filter: filter,
	})

	for {
		descriptor, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list metric descriptors: %w", err)
		}

		if err := visit(descriptor); err != nil {
			return err
		}
	}
}

// CreateTimeSeries writes the given series to the project.
func (client *Client) CreateTimeSeries(ctx context.Context, project string, series ...*monitoringpb.TimeSeries) error {
	err := client.metrics.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
		Name:       ProjectName(project),
		TimeSeries: series,
	})
	if err != nil {
		return fmt.Errorf("create time series: %w", err)
	}

	return nil
}

// ListTimeSeries pages through the series matching filter within interval.
func (client *Client) ListTimeSeries(ctx context.Context, project string, filter string, interval *monitoringpb.TimeInterval, visit func(*monitoringpb.TimeSeries) error) error {
	it := client.metrics.ListTimeSeries(ctx, &monitoringpb.ListTimeSeriesRequest{
		Name:     ProjectName(project),
		Filter:   filter,
		Interval: interval,
		View:     monitoringpb.ListTimeSeriesRequest_FULL,
	})

	for {
		series, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list time series: %w", err)
		}

		if err := visit(series); err != nil {
			return err
		}
	}
}

// Close releases the underlying connection.
func (client *Client) Close() error {
	return client.metrics.Close()
}
