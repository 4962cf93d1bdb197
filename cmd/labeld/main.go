package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/nutrilabel/internal/app"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/mcp"
	"github.com/joseph-ayodele/nutrilabel/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.DB.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	label := server.NewLabelServer(a.Processor, a.Scans, a.Export, logger)
	grpcServer, _ := server.NewGRPCServer(label, logger)

	logger.Info("labeld listening", "addr", cfg.Server.GRPCAddr, "db", a.DB.Dialect())
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	if cfg.Server.MCPAddr != "" {
		tools := mcp.NewToolServer(a.Processor, a.Scans, logger)
		go func() {
			if err := tools.Serve(ctx, cfg.Server.MCPAddr); err != nil {
				logger.Error("mcp endpoint error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	grpcServer.GracefulStop()
}
