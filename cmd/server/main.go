package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tavernforge/tavern-server-go/internal/config"
	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/match"
	"github.com/tavernforge/tavern-server-go/internal/server"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting tavern server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var recorder *game.ReplayRecorder
	if cfg.Replay.Enabled {
		if err := os.MkdirAll(cfg.Replay.Dir, 0o755); err != nil {
			logger.Fatal("failed to create replay directory", zap.Error(err))
		}
		recorder = game.NewReplayRecorder(logger, cfg.Replay.Dir)
		logger.Info("replay recording enabled", zap.String("dir", cfg.Replay.Dir))
	}

	matchMgr := match.NewManager(logger, recorder)
	logger.Info("match manager initialized")

	go matchMgr.CleanupExpiredMatches(ctx, match.ExpiryPolicy{
		Interval:    cfg.Match.CleanupInterval,
		FinishedTTL: cfg.Match.FinishedTTL,
		IdleTTL:     cfg.Match.IdleTTL,
	})

	hub := server.NewHub(matchMgr, cfg.Server.WebSocket, logger)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WebSocket.Path, hub)
	httpServer := &http.Server{
		Addr:              cfg.Server.WebSocket.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, healthServer := server.NewGRPCServer(cfg.Server.GRPC, logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		logger.Info("starting gRPC health server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	go func() {
		logger.Info("starting WebSocket server",
			zap.String("address", cfg.Server.WebSocket.Address),
			zap.String("path", cfg.Server.WebSocket.Path),
		)
		if wsErr := httpServer.ListenAndServe(); wsErr != nil && !errors.Is(wsErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully...",
		zap.Int("active_matches", matchMgr.GetActiveMatchCount()),
	)

	healthServer.SetServingStatus(server.MatchService, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("websocket shutdown incomplete", zap.Error(err))
	}
	grpcServer.GracefulStop()

	logger.Info("tavern server stopped")
}
