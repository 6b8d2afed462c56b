package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dvbstreamer/control/pkg/carousel"
	"github.com/dvbstreamer/control/pkg/config"
	"github.com/dvbstreamer/control/pkg/memstore"
	"github.com/dvbstreamer/control/pkg/metrics"
	"github.com/dvbstreamer/control/pkg/server"
)

func main() {
	log.SetLevel(log.InfoLevel)

	configPath := flag.String("c", "", "path to dvbctld.ini (defaults built in if unset)")
	cacheDir := flag.String("cache", "./carousel-cache", "directory assembled carousel modules are written to")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("[DAEMON] loading config: %v", err)
		}
	}

	cache, err := memstore.NewFileCache(*cacheDir, log.StandardLogger())
	if err != nil {
		log.Fatalf("[DAEMON] %v", err)
	}

	collaborators := server.Collaborators{
		Outputs:   memstore.NewOutputs(),
		Services:  memstore.NewServices(),
		Multiplex: memstore.NewMultiplex(),
		Commands:  memstore.NewCommands(),
		FrontEnd:  memstore.NewFrontEnd(),
	}

	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)

	state := server.NewState(cfg, collaborators, log.StandardLogger())
	state.SetMetrics(collector)

	assembler := carousel.NewAssembler(cache, collector, log.StandardLogger())

	if err := state.Listen(); err != nil {
		log.Fatalf("[DAEMON] listen: %v", err)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Infof("[DAEMON] metrics listening on %s", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warnf("[DAEMON] metrics server: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("[DAEMON] shutdown signal received")
		cancel()
	}()

	go subscriptionResolverLoop(ctx, assembler)

	go func() {
		<-ctx.Done()
		state.Shutdown()
	}()

	if err := state.Serve(); err != nil {
		log.Errorf("[DAEMON] serve: %v", err)
	}
	if err := state.Wait(); err != nil {
		log.Errorf("[DAEMON] worker drain: %v", err)
	}
	log.Info("[DAEMON] stopped")
}

// subscriptionResolverLoop periodically drains Assembler's pending stream
// subscription queue. A real deployment would resolve each association
// tag to a PID against the tuned multiplex and attach a hardware section
// filter; this logs the request since that hardware interface is external
// to this module (spec §1).
func subscriptionResolverLoop(ctx context.Context, a *carousel.Assembler) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := a.ResolveSubscriptions(ctx, func(_ context.Context, req carousel.StreamRequest) error {
				log.Infof("[CAROUSEL][SUBSCRIBE] carousel=0x%08x assoc_tag=0x%04x", req.CarouselID, req.AssociationTag)
				return nil
			})
			if err != nil {
				log.Warnf("[DAEMON] resolving subscriptions: %v", err)
			}
		}
	}
}
