package config

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-ini/ini"
)

const (
	DefaultMetricType          = "custom.googleapis.com/tkcustom-metric-python"
	DefaultMetricDescription   = "TK demo custom metric from python"
	DefaultResourceType        = "gce_instance"
	DefaultSampleMin           = 5.5
	DefaultSampleMax           = 50.5
	DefaultExportWorkers       = 2
	DefaultMaxConcurrentWrites = 4
	DefaultExportQueryTime     = 3600
	DefaultExportTypePrefix    = "custom.googleapis.com/"
)

// DefaultResourceLabels are placeholders that are expected to be replaced
// with a real instance before writing.
func DefaultResourceLabels() map[string]string {
	return map[string]string{
		"instance_id": "use your instanceid",
		"zone":        "your zone",
	}
}

// MetricConfig represents the metric portion of the config
type MetricConfig struct {
	Type        string `ini:"type"`
	Description string `ini:"description"`
}

// ResourceConfig represents the monitored resource portion of the config.
// Every key other than type is a resource label.
type ResourceConfig struct {
	Type   string            `ini:"type"`
	Labels map[string]string `ini:"-"`
}

// SampleConfig represents the sample portion of the config
type SampleConfig struct {
	Min    float64 `ini:"min"`
	Max    float64 `ini:"max"`
	Redraw bool    `ini:"redraw"`
}

// InfluxConfig represents the influx portion of the config
type InfluxConfig struct {
	Address  string `ini:"address"`
	Username string `ini:"username"`
	Password string `ini:"password"`
	Database string `ini:"database"`
}

// ExportConfig represents the export portion of the config
type ExportConfig struct {
	Workers             int    `ini:"workers"`
	MaxConcurrentWrites int    `ini:"max-concurrent-writes"`
	QueryTime           int    `ini:"max-query-time"`
	TypePrefix          string `ini:"type-prefix"`
}

// Config represents the application's configuration
type Config struct {
	Metric   MetricConfig
	Resource ResourceConfig
	Sample   SampleConfig
	Influx   InfluxConfig
	Export   ExportConfig
}

// Default returns the configuration used when no settings file is given.
func Default() *Config {
	return &Config{
		Metric: MetricConfig{
			Type:        DefaultMetricType,
			Description: DefaultMetricDescription,
		},
		Resource: ResourceConfig{
			Type:   DefaultResourceType,
			Labels: DefaultResourceLabels(),
		},
		Sample: SampleConfig{
			Min: DefaultSampleMin,
			Max: DefaultSampleMax,
		},
		Export: ExportConfig{
			Workers:             DefaultExportWorkers,
			MaxConcurrentWrites: DefaultMaxConcurrentWrites,
			QueryTime:           DefaultExportQueryTime,
			TypePrefix:          DefaultExportTypePrefix,
		},
	}
}

// Load loads a configuration file and returns a configuration object.
// An empty filename yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}

	loadOpts := ini.LoadOptions{AllowBooleanKeys: true}

	ini, err := ini.LoadSources(loadOpts, filename)
	if err != nil {
		return nil, err
	}

	if err := getMetricConfig(ini, &cfg.Metric); err != nil {
		return nil, err
	}

	if err := getResourceConfig(ini, &cfg.Resource); err != nil {
		return nil, err
	}

	if err := getSampleConfig(ini, &cfg.Sample); err != nil {
		return nil, err
	}

	if err := ini.Section("influx").MapTo(&cfg.Influx); err != nil {
		return nil, err
	}

	if err := getExportConfig(ini, &cfg.Export); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getMetricConfig(ini *ini.File, config *MetricConfig) error {
	section := ini.Section("metric")
	if err := section.MapTo(config); err != nil {
		return err
	}

	// MapTo skips keys with empty values, so an explicit "type=" is read back here.
	if section.HasKey("type") {
		config.Type = section.Key("type").String()
	}

	if len(config.Type) == 0 {
		return fmt.Errorf("metric type must not be empty")
	}

	return nil
}

func getResourceConfig(ini *ini.File, config *ResourceConfig) error {
	section := ini.Section("resource")
	if err := section.MapTo(config); err != nil {
		return err
	}

	if section.HasKey("type") {
		config.Type = section.Key("type").String()
	}

	if len(config.Type) == 0 {
		return fmt.Errorf("resource type must not be empty")
	}

	// Labels given in the file replace the placeholders as a whole, otherwise
	// a placeholder could never be removed.
	labels := map[string]string{}
	for _, key := range section.Keys() {
		if key.Name() == "type" {
			continue
		}
		labels[key.Name()] = key.String()
	}
	if len(labels) > 0 {
		config.Labels = labels
	}

	return nil
}

func getSampleConfig(ini *ini.File, config *SampleConfig) error {
	if err := ini.Section("sample").MapTo(config); err != nil {
		return err
	}

	if config.Min > config.Max {
		return fmt.Errorf("sample min (%v) must not be greater than max (%v)", config.Min, config.Max)
	}

	return nil
}

func getExportConfig(ini *ini.File, config *ExportConfig) error {
	if err := ini.Section("export").MapTo(config); err != nil {
		return err
	}

	if config.Workers <= 0 {
		return fmt.Errorf("export workers must be greater than 0")
	}
	if config.MaxConcurrentWrites <= 0 {
		return fmt.Errorf("export max-concurrent-writes must be greater than 0")
	}
	if config.QueryTime <= 0 {
		return fmt.Errorf("export max-query-time must be greater than 0 seconds")
	}

	return nil
}

// RequireInflux reports whether the influx section is complete enough to export.
func (c *Config) RequireInflux() error {
	if len(c.Influx.Address) == 0 {
		return fmt.Errorf("you must have a Influx address set in the configuration file")
	}
	if len(c.Influx.Database) == 0 {
		return fmt.Errorf("you must have a Influx database set in the configuration file")
	}
	return nil
}

// PrintConfig prints a starter configuration file holding every default
func PrintConfig(w io.Writer) {
	cfg := Default()

	fmt.Fprintln(w, "[metric]")
	fmt.Fprintln(w, "# The custom metric type created, written and exported.")
	fmt.Fprintf(w, "type=%v\n", cfg.Metric.Type)
	fmt.Fprintf(w, "description=%v\n", cfg.Metric.Description)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[resource]")
	fmt.Fprintln(w, "# The monitored resource written points are attached to.")
	fmt.Fprintln(w, "# Every key other than type is sent as a resource label.")
	fmt.Fprintf(w, "type=%v\n", cfg.Resource.Type)

	names := make([]string, 0, len(cfg.Resource.Labels))
	for name := range cfg.Resource.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%v=%v\n", name, cfg.Resource.Labels[name])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "[sample]")
	fmt.Fprintln(w, "# The range the written value is drawn from.")
	fmt.Fprintf(w, "min=%v\n", cfg.Sample.Min)
	fmt.Fprintf(w, "max=%v\n", cfg.Sample.Max)
	fmt.Fprintln(w, "# Draw a new value for every write instead of once per process.")
	fmt.Fprintf(w, "redraw=%v\n", cfg.Sample.Redraw)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[influx]")
	fmt.Fprintln(w, "# The address of the Influx instance which is typically a HTTP address.")
	fmt.Fprintln(w, "address=")
	fmt.Fprintln(w, "username=")
	fmt.Fprintln(w, "password=")
	fmt.Fprintln(w, "database=")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[export]")
	fmt.Fprintln(w, "# The number of metric types fetched at a given time.")
	fmt.Fprintf(w, "workers=%v\n", cfg.Export.Workers)
	fmt.Fprintf(w, "max-concurrent-writes=%v\n", cfg.Export.MaxConcurrentWrites)
	fmt.Fprintln(w, "# The maximum time, in seconds, to go back and collect points for.")
	fmt.Fprintf(w, "max-query-time=%v\n", cfg.Export.QueryTime)
	fmt.Fprintln(w, "# Only metric types starting with this prefix are exported.")
	fmt.Fprintf(w, "type-prefix=%v\n", cfg.Export.TypePrefix)
}
