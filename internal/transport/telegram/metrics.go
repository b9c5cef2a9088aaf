package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	messageCommand = "command"
	messageLookup  = "lookup"
	messageInvalid = "invalid"
)

// Metrics counts handled chat messages.
type Metrics struct {
	MessagesTotal   *prometheus.CounterVec
	SendErrorsTotal prometheus.Counter
}

// NewMetrics registers the bot collectors on reg, or the default registerer when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "innbot_telegram_messages_total",
			Help: "Telegram messages handled by kind",
		}, []string{"kind"}),
		SendErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "innbot_telegram_send_errors_total",
			Help: "Telegram messages that could not be delivered",
		}),
	}
}

func (m *Metrics) recordMessage(kind string) {
	if m != nil {
		m.MessagesTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) recordSendError() {
	if m != nil {
		m.SendErrorsTotal.Inc()
	}
}
