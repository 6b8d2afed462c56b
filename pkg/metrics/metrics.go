// Package metrics exposes prometheus counters and gauges for the control
// and carousel subsystems, grounded on aistore's use of
// github.com/prometheus/client_golang for runtime observability. This is
// purely additive instrumentation: nothing here changes BinaryControl or
// CarouselAssembler semantics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector groups every gauge/counter dvbctld registers. server.State and
// carousel.Assembler each depend on the narrower interface they actually
// use (server.Metrics, carousel.Metrics) so tests can supply no-op fakes
// without importing prometheus.
type Collector struct {
	ActiveConnections   prometheus.Gauge
	ConnectionsRejected prometheus.Counter
	RequestsHandled     *prometheus.CounterVec

	SectionsProcessed *prometheus.CounterVec
	SectionsDropped   *prometheus.CounterVec
	ModulesAssembled  prometheus.Counter
	CRCFailures       prometheus.Counter
	SubscriptionQueue prometheus.Gauge
}

// New constructs a Collector and registers every metric with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dvbcontrol",
			Subsystem: "server",
			Name:      "active_connections",
			Help:      "Number of occupied BinaryControl connection slots.",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "server",
			Name:      "connections_rejected_total",
			Help:      "Connections rejected because every slot was occupied.",
		}),
		RequestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "server",
			Name:      "requests_handled_total",
			Help:      "Requests dispatched, labeled by opcode.",
		}, []string{"opcode"}),
		SectionsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "carousel",
			Name:      "sections_processed_total",
			Help:      "PSI sections processed, labeled by table kind.",
		}, []string{"kind"}),
		SectionsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "carousel",
			Name:      "sections_dropped_total",
			Help:      "PSI sections dropped, labeled by reason.",
		}, []string{"reason"}),
		ModulesAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "carousel",
			Name:      "modules_assembled_total",
			Help:      "Modules fully reassembled and handed to the filecache.",
		}),
		CRCFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvbcontrol",
			Subsystem: "carousel",
			Name:      "crc_failures_total",
			Help:      "Sections dropped due to a nonzero CRC32 residue.",
		}),
		SubscriptionQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dvbcontrol",
			Subsystem: "carousel",
			Name:      "subscription_queue_depth",
			Help:      "Pending stream subscription requests awaiting host resolution.",
		}),
	}

	reg.MustRegister(
		c.ActiveConnections,
		c.ConnectionsRejected,
		c.RequestsHandled,
		c.SectionsProcessed,
		c.SectionsDropped,
		c.ModulesAssembled,
		c.CRCFailures,
		c.SubscriptionQueue,
	)
	return c
}

// SetActiveConnections implements server.Metrics.
func (c *Collector) SetActiveConnections(n int) { c.ActiveConnections.Set(float64(n)) }

// IncConnectionsRejected implements server.Metrics.
func (c *Collector) IncConnectionsRejected() { c.ConnectionsRejected.Inc() }

// IncRequestsHandled implements server.Metrics.
func (c *Collector) IncRequestsHandled(opcode string) { c.RequestsHandled.WithLabelValues(opcode).Inc() }

// IncSectionsProcessed implements carousel.Metrics.
func (c *Collector) IncSectionsProcessed(kind string) { c.SectionsProcessed.WithLabelValues(kind).Inc() }

// IncSectionsDropped implements carousel.Metrics.
func (c *Collector) IncSectionsDropped(reason string) { c.SectionsDropped.WithLabelValues(reason).Inc() }

// IncModulesAssembled implements carousel.Metrics.
func (c *Collector) IncModulesAssembled() { c.ModulesAssembled.Inc() }

// IncCRCFailures implements carousel.Metrics.
func (c *Collector) IncCRCFailures() { c.CRCFailures.Inc() }

// SetSubscriptionQueueDepth implements carousel.Metrics.
func (c *Collector) SetSubscriptionQueueDepth(n int) { c.SubscriptionQueue.Set(float64(n)) }
