// Package metrics exposes Prometheus counters for the approval workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fisworks/product-engine/pkg/models"
)

// Workflow counts workflow outcomes. It satisfies services.WorkflowMetrics.
type Workflow struct {
	transitions   *prometheus.CounterVec
	approvals     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewWorkflow registers the workflow counters on the given registerer.
// Pass prometheus.DefaultRegisterer outside of tests.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	factory := promauto.With(reg)
	return &Workflow{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "product_engine_status_transitions_total",
			Help: "Product status transitions by edge.",
		}, []string{"from", "to"}),
		approvals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "product_engine_approval_decisions_total",
			Help: "Approval decisions by role and outcome.",
		}, []string{"role", "decision"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "product_engine_notifications_emitted_total",
			Help: "Notifications emitted by type.",
		}, []string{"type"}),
	}
}

// StatusTransition counts one status change.
func (w *Workflow) StatusTransition(from, to models.ProductStatus) {
	w.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ApprovalDecision counts one approve or reject.
func (w *Workflow) ApprovalDecision(role models.Role, approved bool) {
	decision := "approved"
	if !approved {
		decision = "rejected"
	}
	w.approvals.WithLabelValues(string(role), decision).Inc()
}

// NotificationEmitted counts one emitted notification.
func (w *Workflow) NotificationEmitted(typ models.NotificationType) {
	w.notifications.WithLabelValues(string(typ)).Inc()
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
