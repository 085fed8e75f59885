package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sathishktk/tk-custom-metric/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_EmptyFilenameYieldsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "custom.googleapis.com/tkcustom-metric-python", cfg.Metric.Type)
	require.Equal(t, "TK demo custom metric from python", cfg.Metric.Description)
	require.Equal(t, "gce_instance", cfg.Resource.Type)
	require.Equal(t, map[string]string{
		"instance_id": "use your instanceid",
		"zone":        "your zone",
	}, cfg.Resource.Labels)
	require.Equal(t, 5.5, cfg.Sample.Min)
	require.Equal(t, 50.5, cfg.Sample.Max)
	require.False(t, cfg.Sample.Redraw)
	require.Equal(t, 2, cfg.Export.Workers)
	require.Equal(t, 4, cfg.Export.MaxConcurrentWrites)
	require.Equal(t, 3600, cfg.Export.QueryTime)
	require.Equal(t, "custom.googleapis.com/", cfg.Export.TypePrefix)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[sample]
redraw=true

[influx]
address=http://127.0.0.1:8086
database=metrics
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Sample.Redraw)
	require.Equal(t, 5.5, cfg.Sample.Min)
	require.Equal(t, config.DefaultMetricType, cfg.Metric.Type)
	require.Equal(t, config.DefaultResourceLabels(), cfg.Resource.Labels)
	require.Equal(t, "http://127.0.0.1:8086", cfg.Influx.Address)
	require.NoError(t, cfg.RequireInflux())
}

func TestLoad_ResourceLabelsReplacePlaceholders(t *testing.T) {
	path := writeConfig(t, `
[resource]
type=gce_instance
instance_id=1234567890
zone=us-central1-a
project_id=demo
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"instance_id": "1234567890",
		"zone":        "us-central1-a",
		"project_id":  "demo",
	}, cfg.Resource.Labels)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "sample range inverted",
			content: "[sample]\nmin=10\nmax=1\n",
			want:    "sample min",
		},
		{
			name:    "zero workers",
			content: "[export]\nworkers=0\n",
			want:    "workers must be greater than 0",
		},
		{
			name:    "zero writes",
			content: "[export]\nmax-concurrent-writes=0\n",
			want:    "max-concurrent-writes must be greater than 0",
		},
		{
			name:    "empty metric type",
			content: "[metric]\ntype=\n",
			want:    "metric type must not be empty",
		},
		{
			name:    "empty resource type",
			content: "[resource]\ntype=\nzone=z\n",
			want:    "resource type must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.ini"))
	require.Error(t, err)
}

func TestRequireInflux(t *testing.T) {
	cfg := config.Default()
	require.ErrorContains(t, cfg.RequireInflux(), "Influx address")

	cfg.Influx.Address = "http://localhost:8086"
	require.ErrorContains(t, cfg.RequireInflux(), "Influx database")
}

func TestPrintConfig_RoundTrips(t *testing.T) {
	var out bytes.Buffer
	config.PrintConfig(&out)

	cfg, err := config.Load(writeConfig(t, out.String()))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}
