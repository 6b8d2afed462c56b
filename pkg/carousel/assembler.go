// Package carousel implements the MPEG-2 DSM-CC object-carousel receiver:
// SectionDispatcher validates and routes DSI/DII/DDB sections, CarouselRegistry
// tracks per-carousel state, ModuleAssembler reassembles and decompresses
// modules, and StreamSubscription queues association-tag resolution requests
// for the host. BIOP framing itself is treated as an opaque external
// sub-parser (see biop.go).
package carousel

import (
	"context"

	"github.com/dvbstreamer/control/internal/crc"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Section table ids, read from data[0] by ProcessSection to select a
// handler, per §4.4.
const (
	tableIDIndication = 0x3B // carries DSI or DII messages
	tableIDData       = 0x3C // carries a DDB
	tableIDDescriptor = 0x3D // descriptor list, not acted on by this core
)

// Assembler is the CarouselAssembler component (§4.4-§4.7): the wiring
// point between CarouselRegistry, ModuleAssembler, StreamSubscription and
// the host-supplied object-cache sink, mirroring the teacher's pattern of
// a top-level struct holding its collaborators by interface.
type Assembler struct {
	registry     *Registry
	subscription *Subscription
	sink         ObjectCacheSink
	metrics      Metrics
	log          log.FieldLogger
}

// NewAssembler wires a fresh registry and subscription queue around sink.
// A nil metrics or logger defaults to a no-op implementation / the package
// standard logger, matching pkg/server.NewState's convention.
func NewAssembler(sink ObjectCacheSink, metrics Metrics, logger log.FieldLogger) *Assembler {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Assembler{
		registry:     NewRegistry(),
		subscription: NewSubscription(metrics),
		sink:         sink,
		metrics:      metrics,
		log:          logger,
	}
}

// Subscription exposes the pending stream-subscription queue so the host
// can poll it after each ProcessSection call, per §4.7.
func (a *Assembler) Subscription() *Subscription {
	return a.subscription
}

// ResolveSubscriptions drains the pending subscription queue and hands
// each request to resolve concurrently, per §4.7 ("the host resolves
// association_tag to PID and attaches a new section filter"). It waits
// for every resolve call to return before reporting the first error, if
// any, to the caller.
func (a *Assembler) ResolveSubscriptions(ctx context.Context, resolve func(context.Context, StreamRequest) error) error {
	reqs := a.subscription.Drain()
	if len(reqs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range reqs {
		req := req
		g.Go(func() error { return resolve(gctx, req) })
	}
	return g.Wait()
}

// ProcessSection implements §4.4's SectionDispatcher: length and CRC
// validation, then routing by table id. Every failure is logged and the
// section dropped; no error escapes to the caller's control flow beyond a
// bool a caller may use for its own diagnostics, since a single malformed
// carousel section never halts ingestion (§7 "logs and drops").
func (a *Assembler) ProcessSection(data []byte) bool {
	n := sectionLength(data)
	if n <= 0 || n > len(data) {
		a.log.WithField("len", len(data)).Warn("[CAROUSEL][DROP] section shorter than declared length")
		a.metrics.IncSectionsDropped("short")
		return false
	}
	section := data[:n]

	if !crc.Valid(section) {
		a.log.Warn("[CAROUSEL][DROP] CRC32 residue nonzero")
		a.metrics.IncCRCFailures()
		a.metrics.IncSectionsDropped("crc")
		return false
	}

	if _, err := parseSectionHeader(section); err != nil {
		a.log.WithError(err).Warn("[CAROUSEL][DROP] invalid section header")
		a.metrics.IncSectionsDropped("header")
		return false
	}

	var err error
	switch section[0] {
	case tableIDIndication:
		err = a.dispatchIndication(section)
	case tableIDData:
		err = a.processData(section)
	case tableIDDescriptor:
		_, err = parseMessageHeader(section[msgHeaderOffset:])
	default:
		err = ErrUnknownMessageID
	}

	if err != nil {
		a.log.WithError(err).WithField("table_id", section[0]).Warn("[CAROUSEL][DROP] section rejected")
		a.metrics.IncSectionsDropped("handler")
		return false
	}
	return true
}

// dispatchIndication routes a table-id-0x3B section to the DSI or DII
// handler by its DSM-CC message_id, per §4.6.1.
func (a *Assembler) dispatchIndication(section []byte) error {
	mh, err := parseMessageHeader(section[msgHeaderOffset:])
	if err != nil {
		return err
	}

	body := section[bodyOffset:]
	switch mh.messageID {
	case msgIDServerGateway:
		carouselID := mh.transactionID
		return a.processGateway(carouselID, body)
	case msgIDDownloadInfo:
		return a.processInfo(body)
	default:
		return ErrUnknownMessageID
	}
}
