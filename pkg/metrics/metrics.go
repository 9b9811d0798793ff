// Package metrics holds the Prometheus collectors for workflow activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pathway"

// Metrics owns its registry so tests and multiple servers never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	WorkflowsCreated     *prometheus.CounterVec
	WorkflowTransitions  *prometheus.CounterVec
	TaskStatusChanges    *prometheus.CounterVec
	CommentsAdded        prometheus.Counter
	NotificationsEmitted *prometheus.CounterVec
	RevisionConflicts    prometheus.Counter
	AccountChanges       *prometheus.CounterVec
	ReminderRuns         *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		WorkflowsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_created_total",
			Help:      "Workflows created, by type and source (template or direct).",
		}, []string{"type", "source"}),
		WorkflowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Workflow lifecycle transitions, by type and target status.",
		}, []string{"type", "status"}),
		TaskStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_status_changes_total",
			Help:      "Task status changes, by new status.",
		}, []string{"status"}),
		CommentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_added_total",
			Help:      "Comments and replies added to tasks.",
		}),
		NotificationsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Notification records emitted, by kind.",
		}, []string{"kind"}),
		RevisionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revision_conflicts_total",
			Help:      "Workflow saves rejected because the stored revision moved on.",
		}),
		AccountChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_changes_total",
			Help:      "Employee account changes caused by workflow completion, by action.",
		}, []string{"action"}),
		ReminderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_runs_total",
			Help:      "Overdue reminder scans, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.WorkflowsCreated,
		m.WorkflowTransitions,
		m.TaskStatusChanges,
		m.CommentsAdded,
		m.NotificationsEmitted,
		m.RevisionConflicts,
		m.AccountChanges,
		m.ReminderRuns,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
