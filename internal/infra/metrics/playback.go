package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(playbackTotal)
}

var playbackTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "playback_requests_total",
		Help: "Play requests by outcome (played/not_found/empty/delivery_failed).",
	},
	[]string{"outcome"},
)

const (
	PlaybackPlayed         = "played"
	PlaybackNotFound       = "not_found"
	PlaybackEmpty          = "empty"
	PlaybackDeliveryFailed = "delivery_failed"
)

func IncPlayback(outcome string) {
	playbackTotal.WithLabelValues(norm(outcome)).Inc()
}
