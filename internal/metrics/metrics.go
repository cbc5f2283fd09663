package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_sessions",
		Help: "Live websocket sessions in the connection registry",
	})
	PushesDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_pushes_delivered_total",
		Help: "Events enqueued to a live session outbox",
	})
	PushesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_pushes_dropped_total",
		Help: "Events dropped because a session outbox was full",
	})
	NotificationsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Notifications persisted by the dispatch engine",
	}, []string{"kind"})
	ChannelFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "channel_failures_total",
		Help: "Secondary channel deliveries that failed",
	}, []string{"channel"})
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Chat messages persisted by the conversation router",
	})
)

func Init() {
	prometheus.MustRegister(
		ActiveSessions,
		PushesDelivered,
		PushesDropped,
		NotificationsDispatched,
		ChannelFailures,
		MessagesSent,
	)
}

// Handler exposes the Prometheus scrape endpoint as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
