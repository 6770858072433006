package metric

import (
	"context"
	"log/slog"
	"time"

	"proflare/src-server/model"
	"proflare/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// registerGauge registers a gauge, reusing the one already registered under the same name.
func registerGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	gauge := prometheus.NewGauge(opts)
	if err := prometheus.Register(gauge); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			slog.Error("can't register metric", "name", opts.Name, "error", err)
			return gauge
		}
		gauge = are.ExistingCollector.(prometheus.Gauge)
	}
	slog.Debug("metric registered", "name", opts.Name)
	gauge.Set(0)
	return gauge
}

func unregister(name string, collector prometheus.Collector) {
	switch prometheus.Unregister(collector) {
	case true:
		slog.Debug("metric unregistered", "name", name)
	case false:
		slog.Warn("metric not registered", "name", name)
	}
}

// sampled polls probe every tickerInterval.
func sampled(as *utils.AppState, opts prometheus.GaugeOpts, tickerInterval time.Duration, probe func() (time.Duration, error)) {
	gauge := registerGauge(opts)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(opts.Name, gauge)
				return
			case <-ticker.C:
				latency, err := probe()
				if err != nil {
					slog.Error("can't sample metric", "name", opts.Name, "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// pushed shows the latest value sent on ch, falling back to 0 when nothing
// arrives for clearTickerInterval.
func pushed(as *utils.AppState, opts prometheus.GaugeOpts, clearTickerInterval time.Duration, ch chan float64) {
	gauge := registerGauge(opts)
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(opts.Name, gauge)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func databaseEmptyRead(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Ticket)(nil)).
		Where("channel_id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	if as.BunDB != nil {
		sampled(as, prometheus.GaugeOpts{
			Name: "proflare_database_empty_read_microsec",
			Help: "The latency of an empty database read in microseconds",
		}, tickerInterval, func() (time.Duration, error) {
			return databaseEmptyRead(as)
		})
	}
	if as.DgSession != nil {
		sampled(as, prometheus.GaugeOpts{
			Name: "proflare_discord_heartbeat_latency_microsec",
			Help: "The latency of a discord heartbeat in microseconds",
		}, tickerInterval, func() (time.Duration, error) {
			return as.DgSession.HeartbeatLatency(), nil
		})
	}

	pushed(as, prometheus.GaugeOpts{
		Name: "proflare_database_read_microsec",
		Help: "The latency of a database read in microseconds",
	}, clearTickerInterval, as.MetricChans.DatabaseRead)
	pushed(as, prometheus.GaugeOpts{
		Name: "proflare_database_write_microsec",
		Help: "The latency of a database write in microseconds",
	}, clearTickerInterval, as.MetricChans.DatabaseWrite)
	pushed(as, prometheus.GaugeOpts{
		Name: "proflare_discord_send_message_microsec",
		Help: "The latency of a discord message send in microseconds",
	}, clearTickerInterval, as.MetricChans.DiscordSendMessage)
}
