package carousel

// Metrics is the subset of pkg/metrics.Collector the carousel core
// touches. It is an interface so tests don't need a real prometheus
// registry, mirroring pkg/server.Metrics.
type Metrics interface {
	IncSectionsProcessed(kind string)
	IncSectionsDropped(reason string)
	IncModulesAssembled()
	IncCRCFailures()
	SetSubscriptionQueueDepth(n int)
}

type noopMetrics struct{}

func (noopMetrics) IncSectionsProcessed(string)  {}
func (noopMetrics) IncSectionsDropped(string)    {}
func (noopMetrics) IncModulesAssembled()         {}
func (noopMetrics) IncCRCFailures()              {}
func (noopMetrics) SetSubscriptionQueueDepth(int) {}
