package main

import (
	"context"
	"math"
	"sync"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/Jeffail/tunny"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"golang.org/x/sync/semaphore"

	"github.com/sathishktk/tk-custom-metric/client"
	"github.com/sathishktk/tk-custom-metric/config"
	"github.com/sathishktk/tk-custom-metric/influx"
	"github.com/sathishktk/tk-custom-metric/logger"
)

type exporter struct {
	config  *config.Config
	service client.Service
	sink    sink
	project string
	now     func() time.Time
}

type exportResult struct {
	types  int
	points int
	failed int
	err    error
}

type typeResult struct {
	points int
	err    error
}

// export copies every matching metric type into the sink. A failing type is
// logged and skipped; only failing to list the types aborts the export.
func (e *exporter) export(ctx context.Context) exportResult {
	var types []string
	err := e.service.ListMetricDescriptors(ctx, e.project, client.TypePrefixFilter(e.config.Export.TypePrefix),
		func(descriptor *metricpb.MetricDescriptor) error {
			types = append(types, descriptor.GetType())
			return nil
		})
	if err != nil {
		return exportResult{err: err}
	}

	writes := semaphore.NewWeighted(int64(e.config.Export.MaxConcurrentWrites))
	pool := tunny.NewFunc(e.config.Export.Workers, func(payload interface{}) interface{} {
		return e.exportType(ctx, payload.(string), writes)
	})
	defer pool.Close()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result = exportResult{types: len(types)}
	)

	for _, metricType := range types {
		wg.Add(1)

		go func(metricType string) {
			defer wg.Done()

			res := pool.Process(metricType).(typeResult)

			mu.Lock()
			defer mu.Unlock()
			if res.err != nil {
				logger.Log.Error("Export of %v failed: %v", metricType, res.err)
				result.failed++
				return
			}
			result.points += res.points
		}(metricType)
	}

	wg.Wait()
	return result
}

func (e *exporter) exportType(ctx context.Context, metricType string, writes *semaphore.Weighted) typeResult {
	tags := map[string]string{"project": e.project}

	lastRecordedTime, err := e.sink.LastRecordedTime(metricType, tags)
	if err != nil {
		logger.Log.Warn("requesting last recorded time for %v: %v. Defaulting to last %v seconds",
			metricType, err, e.config.Export.QueryTime)
		lastRecordedTime = &time.Time{}
	}

	now := e.now()
	window := math.Min(float64(e.config.Export.QueryTime), now.Sub(*lastRecordedTime).Seconds())
	start := now.Add(-time.Duration(window * float64(time.Second)))

	var records []influx.Record
	err = e.service.ListTimeSeries(ctx, e.project, client.TypeFilter(metricType), client.NewInterval(start, now),
		func(series *monitoringpb.TimeSeries) error {
			records = append(records, seriesRecords(e.project, series)...)
			return nil
		})
	if err != nil {
		return typeResult{err: err}
	}

	if len(records) == 0 {
		logger.Log.Info("No points for %v in the last %v seconds", metricType, int(window))
		return typeResult{}
	}

	if err := writes.Acquire(ctx, 1); err != nil {
		return typeResult{err: err}
	}
	defer writes.Release(1)

	if err := e.sink.Send(metricType, records); err != nil {
		return typeResult{err: err}
	}

	logger.Log.Info("Exported last %v seconds (%v points) of %v", int(window), len(records), metricType)
	return typeResult{points: len(records)}
}

// seriesRecords flattens a series into records. Resource labels keep their
// names, metric labels are prefixed with "metric_".
func seriesRecords(project string, series *monitoringpb.TimeSeries) []influx.Record {
	tags := map[string]string{
		"project":       project,
		"resource_type": series.GetResource().GetType(),
	}
	for k, v := range series.GetResource().GetLabels() {
		tags[k] = v
	}
	for k, v := range series.GetMetric().GetLabels() {
		tags["metric_"+k] = v
	}

	records := make([]influx.Record, 0, len(series.GetPoints()))
	for _, point := range series.GetPoints() {
		value, ok := client.PointValue(point.GetValue())
		if !ok {
			continue
		}

		records = append(records, influx.Record{
			Time:   point.GetInterval().GetEndTime().AsTime(),
			Tags:   tags,
			Fields: map[string]interface{}{"value": value},
		})
	}

	return records
}
