package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/product-inventory/internal/adapter/client"
	"github.com/rl1809/product-inventory/internal/adapter/handler"
	"github.com/rl1809/product-inventory/internal/config"
	"github.com/rl1809/product-inventory/internal/core/service"
	"github.com/rl1809/product-inventory/internal/logging"
	"github.com/rl1809/product-inventory/internal/shutdown"
)

const serviceName = "product-inventory"

type App struct {
	logger       *zap.Logger
	grpcServer   *grpc.Server
	grpcListener net.Listener
	httpServer   *http.Server
	shutdownMgr  *shutdown.Manager
	wg           sync.WaitGroup
}

func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{
		ServiceName: serviceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("building service", cfg.Fields()...)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reservations := service.NewReservationService(store, logger)
	authClient := client.NewAuthClient(cfg.AuthAddr, cfg.CollaboratorTimeout, logger)
	assetClient := client.NewAssetClient(cfg.FSAddr, cfg.CollaboratorTimeout, logger)

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(handler.UnaryLoggingInterceptor(logger.Named("grpc"))),
	)
	if cfg.EnableGRPCReflection {
		reflection.Register(grpcServer)
		logger.Info("gRPC reflection enabled")
	}
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	handler.RegisterColorServiceServer(grpcServer, handler.NewGRPCHandler(reservations, authClient, assetClient, logger))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(reservations, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownMgr := shutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("store", store.Close)
	shutdownMgr.Add("grpc_server", shutdown.ShutdownGRPCServer(grpcServer))
	shutdownMgr.Add("http_server", shutdown.ShutdownHTTPServer(httpServer))
	shutdownMgr.Add("health_not_serving", func(context.Context) error {
		healthServer.Shutdown()
		return nil
	})

	return &App{
		logger:       logger,
		grpcServer:   grpcServer,
		grpcListener: grpcListener,
		httpServer:   httpServer,
		shutdownMgr:  shutdownMgr,
	}, nil
}

// Run serves until ctx is cancelled, a termination signal arrives or a server
// fails. The first serve error is returned after shutdown completes.
func (a *App) Run(ctx context.Context) error {
	defer logging.Sync(a.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	serve := func(name string, fn func() error) {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := fn(); err != nil {
				a.logger.Error(name+" server error", zap.Error(err))
				errCh <- fmt.Errorf("%s server: %w", name, err)
				cancel()
			}
		}()
	}

	a.logger.Info("starting gRPC server", zap.String("addr", a.grpcListener.Addr().String()))
	serve("gRPC", func() error {
		return a.grpcServer.Serve(a.grpcListener)
	})

	a.logger.Info("starting HTTP server", zap.String("addr", a.httpServer.Addr))
	serve("HTTP", func() error {
		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	a.shutdownMgr.Wait(ctx)

	a.wg.Wait()
	a.logger.Info("service stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
