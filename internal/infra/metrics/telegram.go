package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramSendErrorsTotal,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming updates by the event they were classified as.",
		},
		[]string{"event"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times chats have been rate-limited.",
		},
	)

	telegramSendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_send_errors_total",
			Help: "Outbound Bot API calls that failed, by method.",
		},
		[]string{"method"},
	)
)

func IncTelegramUpdate(event string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(event)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncSendError(method string) {
	telegramSendErrorsTotal.WithLabelValues(norm(method)).Inc()
}
