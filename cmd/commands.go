package main

import (
	"context"
	"fmt"
	"io"
	"time"

	metricpb "google.golang.org/genproto/googleapis/api/metric"

	"github.com/sathishktk/tk-custom-metric/client"
	"github.com/sathishktk/tk-custom-metric/config"
	"github.com/sathishktk/tk-custom-metric/logger"
)

func createMetricDescriptor(ctx context.Context, svc client.Service, project string, metric config.MetricConfig, out io.Writer) error {
	descriptor := client.NewGaugeDescriptor(metric.Type, metric.Description)

	created, err := svc.CreateMetricDescriptor(ctx, project, descriptor)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %v.\n", created.GetName())
	return nil
}

func deleteMetricDescriptor(ctx context.Context, svc client.Service, name string, out io.Writer) error {
	if err := svc.DeleteMetricDescriptor(ctx, name); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted metric descriptor %v.\n", name)
	return nil
}

// writeTimeSeries sends value as the only point of a new series. The
// resource labels are sent as configured, placeholders included.
func writeTimeSeries(ctx context.Context, svc client.Service, project string, cfg *config.Config, value float64, now time.Time) error {
	resource := client.NewResource(cfg.Resource.Type, cfg.Resource.Labels)
	series := client.NewGaugeSeries(cfg.Metric.Type, resource, value, now)

	logger.Log.Debug("writing %v to %v at %v", value, cfg.Metric.Type, now.Format(time.RFC3339Nano))
	return svc.CreateTimeSeries(ctx, project, series)
}

func listMetricDescriptors(ctx context.Context, svc client.Service, project string, out io.Writer) error {
	return svc.ListMetricDescriptors(ctx, project, "", func(descriptor *metricpb.MetricDescriptor) error {
		_, err := fmt.Fprintln(out, descriptor.GetType())
		return err
	})
}
