// Package metrics exposes mailroom business counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"mailroom/internal/model"
)

// Domain holds the business counters.
type Domain struct {
	mailReceived     *prometheus.CounterVec
	actionsRequested *prometheus.CounterVec
	actionsCompleted *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

// NewDomain creates the counters and registers them with reg.
func NewDomain(reg prometheus.Registerer) (*Domain, error) {
	d := &Domain{
		mailReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailroom_mail_received_total",
				Help: "Mail items logged at intake.",
			},
			[]string{"kind", "oversized"},
		),
		actionsRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailroom_actions_requested_total",
				Help: "Mail action requests submitted by customers.",
			},
			[]string{"action"},
		),
		actionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailroom_actions_completed_total",
				Help: "Mail action requests completed by operators.",
			},
			[]string{"action"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailroom_webhook_events_total",
				Help: "Payment provider callbacks by event type and outcome.",
			},
			[]string{"event", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{d.mailReceived, d.actionsRequested, d.actionsCompleted, d.webhookEvents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Domain) MailReceived(kind model.MailKind, oversized bool) {
	d.mailReceived.WithLabelValues(string(kind), strconv.FormatBool(oversized)).Inc()
}

func (d *Domain) ActionRequested(action model.ActionType) {
	d.actionsRequested.WithLabelValues(string(action)).Inc()
}

func (d *Domain) ActionCompleted(action model.ActionType) {
	d.actionsCompleted.WithLabelValues(string(action)).Inc()
}

func (d *Domain) WebhookEvent(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	d.webhookEvents.WithLabelValues(event, outcome).Inc()
}
