package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(catalogTracks, catalogBuildErrorsTotal)
}

var (
	catalogTracks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_tracks",
			Help: "Number of tracks found by the most recent catalog build.",
		},
	)

	catalogBuildErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_build_errors_total",
			Help: "Catalog builds that hit a filesystem error and fell back to an empty catalog.",
		},
	)
)

func SetCatalogTracks(n int) {
	catalogTracks.Set(float64(n))
}

func IncCatalogBuildError() {
	catalogBuildErrorsTotal.Inc()
}
