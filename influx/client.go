package influx

import (
	"fmt"
	"sort"
	"strings"
	"time"

	influx "github.com/influxdata/influxdb1-client/v2"
)

// Record is one point to be written to a measurement
type Record struct {
	Time   time.Time
	Tags   map[string]string
	Fields map[string]interface{}
}

// Client represents a connection to an InfluxDB instance
type Client struct {
	httpClient influx.Client
	database   string
}

// CreateClient creates an InfluxDB client
func CreateClient(address string, database string, username string, password string) (*Client, error) {
	config := influx.HTTPConfig{
		Addr:     address,
		Username: username,
		Password: password,
		Timeout:  30 * time.Second,
	}

	httpClient, err := influx.NewHTTPClient(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: httpClient,
		database:   database,
	}

	return client, nil
}

// Send flushes records into the measurement in a single batch
func (client *Client) Send(measurement string, records []Record) error {
	config := influx.BatchPointsConfig{
		Database:  client.database,
		Precision: "ns",
	}

	bp, err := influx.NewBatchPoints(config)
	if err != nil {
		return err
	}

	for _, record := range records {
		pt, err := influx.NewPoint(measurement, record.Tags, record.Fields, record.Time)
		if err != nil {
			return err
		}

		bp.AddPoint(pt)
	}

	return client.httpClient.Write(bp)
}

// LastRecordedTime returns the time of the newest point in the measurement
// carrying all of the given tags.
func (client *Client) LastRecordedTime(measurement string, tags map[string]string) (*time.Time, error) {
	command, parameters := lastRecordQuery(measurement, tags)
	query := influx.NewQueryWithParameters(command, client.database, "", parameters)

	response, err := client.httpClient.Query(query)
	if err != nil {
		return nil, err
	}
	if err := response.Error(); err != nil {
		return nil, err
	}

	if len(response.Results) == 0 || len(response.Results[0].Series) == 0 ||
		len(response.Results[0].Series[0].Values) == 0 {
		return nil, fmt.Errorf("no records found for %v", measurement)
	}

	raw, ok := response.Results[0].Series[0].Values[0][0].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected time value %v", response.Results[0].Series[0].Values[0][0])
	}

	last, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}

	return &last, nil
}

// Close releases idle connections
func (client *Client) Close() error {
	return client.httpClient.Close()
}

// lastRecordQuery builds the newest point query. Tag values are bound as
// parameters, only identifiers are quoted into the command.
func lastRecordQuery(measurement string, tags map[string]string) (string, map[string]interface{}) {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	parameters := make(map[string]interface{}, len(names))
	conditions := make([]string, 0, len(names))
	for i, name := range names {
		param := fmt.Sprintf("tag%d", i)
		parameters[param] = tags[name]
		conditions = append(conditions, fmt.Sprintf("%v = $%v", quoteIdent(name), param))
	}

	query := fmt.Sprintf("SELECT * FROM %v", quoteIdent(measurement))
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	return query + " ORDER BY time DESC LIMIT 1", parameters
}

var identReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteIdent(s string) string {
	return `"` + identReplacer.Replace(s) + `"`
}
