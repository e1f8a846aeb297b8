package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/config"
	"github.com/alfredjeanlab/flock/internal/events"
	"github.com/alfredjeanlab/flock/internal/logging"
	"github.com/alfredjeanlab/flock/internal/server"
	"github.com/alfredjeanlab/flock/internal/store/postgres"
	flocksync "github.com/alfredjeanlab/flock/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the flock HTTP and gRPC servers",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client.
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := logging.New(cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (FLOCK_NATS_URL not set)")
		}

		flockServer := server.NewServer(store, publisher)
		flockServer.DefaultPerPage = cfg.DefaultPerPage
		flockServer.MaxPerPage = cfg.MaxPerPage
		grpcServer := server.NewGRPCServer(flockServer, cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			publisher.Close()
			store.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           flockServer.NewHTTPHandler(cfg.AuthToken, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		var scheduler *flocksync.Scheduler
		if cfg.SyncInterval > 0 {
			var dests []flocksync.Destination
			if cfg.SyncS3Bucket != "" {
				s3Dest, err := flocksync.NewS3Destination(context.Background(),
					cfg.SyncS3Bucket, cfg.SyncS3Key, cfg.SyncS3Region, cfg.SyncS3Endpoint)
				if err != nil {
					logger.Error("failed to create S3 sync destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
				}
			}
			if cfg.SyncFile != "" {
				dests = append(dests, flocksync.NewFileDestination(cfg.SyncFile))
				logger.Info("sync file destination enabled", "path", cfg.SyncFile)
			}
			if len(dests) > 0 {
				scheduler = flocksync.NewScheduler(store, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
			}
		}

		logger.Info("flock server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"auth", cfg.AuthToken != "",
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
