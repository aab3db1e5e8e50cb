package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatcherMetrics tracks the health of one or more payload dispatchers.
// Every series carries the chain label so a multi-chain agent can share one
// registry.
type DispatcherMetrics struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	stageLiveness        *prometheus.GaugeVec
	queueLength          *prometheus.GaugeVec
	submissionsTotal     *prometheus.CounterVec
	finalizedTxsTotal    *prometheus.CounterVec
	droppedTxsTotal      *prometheus.CounterVec
	droppedPayloadsTotal *prometheus.CounterVec
	upperNonce           *prometheus.GaugeVec
	finalizedNonce       *prometheus.GaugeVec
}

// NewDispatcherMetrics creates dispatcher metrics registered on a fresh
// registry.
func NewDispatcherMetrics() *DispatcherMetrics {
	registry := prometheus.NewRegistry()

	m := &DispatcherMetrics{
		registry: registry,
		stageLiveness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lander_stage_liveness_timestamp_seconds",
			Help: "Unix time of the last completed loop iteration per stage",
		}, []string{"stage", "chain"}),
		queueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lander_stage_queue_length",
			Help: "Number of payloads or transactions waiting in each stage",
		}, []string{"stage", "chain"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lander_transaction_submissions_total",
			Help: "Number of transaction submission attempts",
		}, []string{"chain"}),
		finalizedTxsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lander_finalized_transactions_total",
			Help: "Number of transactions that reached finality",
		}, []string{"chain"}),
		droppedTxsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lander_dropped_transactions_total",
			Help: "Number of transactions dropped, by reason",
		}, []string{"chain", "reason"}),
		droppedPayloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lander_dropped_payloads_total",
			Help: "Number of payloads terminally dropped, by reason",
		}, []string{"chain", "reason"}),
		upperNonce: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lander_upper_nonce",
			Help: "One past the highest nonce ever assigned per signer",
		}, []string{"chain", "signer"}),
		finalizedNonce: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lander_finalized_nonce",
			Help: "Highest nonce known irreversibly consumed per signer",
		}, []string{"chain", "signer"}),
	}

	registry.MustRegister(
		m.stageLiveness,
		m.queueLength,
		m.submissionsTotal,
		m.finalizedTxsTotal,
		m.droppedTxsTotal,
		m.droppedPayloadsTotal,
		m.upperNonce,
		m.finalizedNonce,
	)

	return m
}

// Registry returns the prometheus registry holding the dispatcher series.
func (m *DispatcherMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordStageLiveness marks the stage loop as alive now.
func (m *DispatcherMetrics) RecordStageLiveness(stage, chain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageLiveness.WithLabelValues(stage, chain).Set(float64(time.Now().Unix()))
}

// RecordQueueLength records the current depth of a stage queue or pool.
func (m *DispatcherMetrics) RecordQueueLength(stage, chain string, length int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLength.WithLabelValues(stage, chain).Set(float64(length))
}

// IncSubmission counts one submission attempt.
func (m *DispatcherMetrics) IncSubmission(chain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissionsTotal.WithLabelValues(chain).Inc()
}

// IncFinalizedTx counts one finalized transaction.
func (m *DispatcherMetrics) IncFinalizedTx(chain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizedTxsTotal.WithLabelValues(chain).Inc()
}

// IncDroppedTx counts one dropped transaction.
func (m *DispatcherMetrics) IncDroppedTx(chain, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.droppedTxsTotal.WithLabelValues(chain, reason).Inc()
}

// IncDroppedPayload counts one terminally dropped payload.
func (m *DispatcherMetrics) IncDroppedPayload(chain, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.droppedPayloadsTotal.WithLabelValues(chain, reason).Inc()
}

// RecordUpperNonce records the signer's upper boundary nonce.
func (m *DispatcherMetrics) RecordUpperNonce(chain, signer string, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upperNonce.WithLabelValues(chain, signer).Set(float64(nonce))
}

// RecordFinalizedNonce records the signer's finalized boundary nonce.
func (m *DispatcherMetrics) RecordFinalizedNonce(chain, signer string, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizedNonce.WithLabelValues(chain, signer).Set(float64(nonce))
}
