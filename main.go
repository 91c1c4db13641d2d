package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-sync/internal/config"
	"auction-sync/internal/display"
	"auction-sync/internal/engine"
	"auction-sync/internal/notify"
	"auction-sync/internal/server"
	"auction-sync/internal/server/ws"
	"auction-sync/utils"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "auction-sync.toml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"path": *configPath, "error": err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("unknown log level, keeping info", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	utils.Info("auction-sync stopped", nil)
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := clockwork.NewRealClock()
	hub := ws.NewHub(clock)

	senders := []notify.Sender{hub}
	if cfg.Notify.BridgeURL != "" {
		senders = append(senders, notify.NewBridgeSender(cfg.Notify.BridgeURL))
	}

	opts := engine.OptionsFromConfig(cfg)
	opts.Clock = clock
	opts.Senders = senders
	eng := engine.New(engine.RemoteFromConfig(cfg), opts)
	defer eng.Close()

	eng.OnLots(func(ev engine.LotsEvent) { hub.Publish(ws.EventLots, ev) })
	eng.OnLot(func(v display.LotView) { hub.Publish(ws.EventLot, v) })

	srv := &http.Server{
		Addr:              listenAddr(cfg.Server.Port),
		Handler:           server.SetupRouter(eng, hub, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error {
		utils.Info("starting auction-sync API", map[string]any{"addr": srv.Addr, "viewer_id": eng.Viewer().ID})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// listenAddr returns the server listen address for port
func listenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
