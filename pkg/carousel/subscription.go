package carousel

import "sync"

// StreamRequest is a pending (carousel_id, association_tag) subscription
// request, resolved to a PID by the host.
type StreamRequest struct {
	CarouselID     uint32
	AssociationTag uint16
}

// Subscription maintains the pending stream-subscription queue described
// in §4.7: add(carousel_id, tag) is a no-op on duplicate, otherwise the
// request is queued for the host to poll after each process_section call.
//
// The teacher's design groups global mutable state into an explicit
// struct passed to collaborators rather than relying on package-level
// state (§9 "Global mutable state"); Subscription follows the same
// convention and is safe for concurrent use even though the specified
// design runs CarouselAssembler single-threaded, since dvbctld may choose
// to poll it from a different goroutine than the one feeding sections.
type Subscription struct {
	mu      sync.Mutex
	pending []StreamRequest
	seen    map[StreamRequest]bool
	metrics Metrics
}

// NewSubscription returns an empty subscription queue.
func NewSubscription(metrics Metrics) *Subscription {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Subscription{
		seen:    make(map[StreamRequest]bool),
		metrics: metrics,
	}
}

// Add enqueues (carouselID, tag), silently returning on duplicate.
func (s *Subscription) Add(carouselID uint32, tag uint16) {
	req := StreamRequest{CarouselID: carouselID, AssociationTag: tag}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[req] {
		return
	}
	s.seen[req] = true
	s.pending = append(s.pending, req)
	s.metrics.SetSubscriptionQueueDepth(len(s.pending))
}

// Drain returns and clears every pending request, for the host to resolve
// association_tag -> PID and attach a new section filter per §4.7.
func (s *Subscription) Drain() []StreamRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	s.metrics.SetSubscriptionQueueDepth(0)
	return out
}

// Len reports the number of undrained pending requests.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
