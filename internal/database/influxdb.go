package database

import (
	"context"
	"fmt"
	"time"

	"perf-analyzer/internal/config"
	"perf-analyzer/internal/logging"
	"perf-analyzer/internal/snapshot"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// InfluxDBClient publishes snapshot metrics for longitudinal regression
// tracking across runs.
type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewInfluxDBClient(cfg config.DatabaseConfig) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Password)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, err
	}

	if health.Status != "pass" {
		logger.WithFields(logrus.Fields{
			"host":   cfg.Host,
			"status": health.Status,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health check failed: %s", health.Status)
	}

	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Name)

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"bucket": cfg.Name,
		"org":    cfg.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.Name,
		org:      cfg.Org,
	}, nil
}

// WriteSnapshot publishes the derived metrics and hotspot ranking of one
// snapshot, tagged with the analysis name and host attributes.
func (idb *InfluxDBClient) WriteSnapshot(analysisName string, snap *snapshot.Snapshot) error {
	ctx := context.Background()

	taken, err := time.Parse(time.RFC3339, snap.Timestamp)
	if err != nil {
		taken = time.Now()
	}

	var points []*write.Point

	for domain, domainMetrics := range snap.Metrics {
		if len(domainMetrics) == 0 {
			continue
		}

		fields := make(map[string]interface{}, len(domainMetrics))
		for name, value := range domainMetrics {
			fields[name] = value
		}

		point := influxdb2.NewPoint("performance_metrics",
			map[string]string{
				"analysis":     analysisName,
				"domain":       domain,
				"cpu_model":    snap.System.CPUModel,
				"architecture": snap.System.Architecture,
			},
			fields, taken)

		points = append(points, point)
	}

	for rank, h := range snap.Hotspots {
		percentage, err := h.Value()
		if err != nil {
			continue
		}

		point := influxdb2.NewPoint("performance_hotspots",
			map[string]string{
				"analysis": analysisName,
				"function": h.Function,
			},
			map[string]interface{}{
				"percentage": percentage,
				"rank":       rank + 1,
			},
			taken)

		points = append(points, point)
	}

	if len(points) > 0 {
		if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
			return fmt.Errorf("failed to write snapshot points: %w", err)
		}
	}

	return nil
}

func (idb *InfluxDBClient) Close() {
	idb.client.Close()
}
