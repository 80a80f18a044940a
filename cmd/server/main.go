package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/ury-pos/pos-core/internal/client"
	"github.com/ury-pos/pos-core/internal/config"
	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/handler"
	"github.com/ury-pos/pos-core/internal/i18n"
	"github.com/ury-pos/pos-core/internal/logger"
	"github.com/ury-pos/pos-core/internal/mongo"
	"github.com/ury-pos/pos-core/internal/repository"
	"github.com/ury-pos/pos-core/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("locale", cfg.Locale).
		Str("timezone", cfg.Timezone).
		Str("kitchen_store", cfg.Kitchen.Store).
		Str("events_driver", cfg.Events.Driver).
		Msg("Starting POS core service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	location, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}

	messages, err := i18n.New(cfg.Locale)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build message catalog")
	}

	// Initialize database
	db, err := database.New(ctx, cfg.PoolConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRolePermittedRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	errorLogRepo := repository.NewErrorLogRepository(db)

	var kots service.KOTStore = repository.NewKOTRepository(db)
	if cfg.Kitchen.Store == config.KitchenStoreMongo {
		mongoKOTs := mongo.NewKOTRepository(mongo.Config{
			URL:      cfg.Kitchen.Mongo.URL,
			Database: cfg.Kitchen.Mongo.Database,
		}, log)
		if err := mongoKOTs.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to kitchen store")
		}
		defer mongoKOTs.Stop(context.Background())
		kots = mongoKOTs
	}

	// Initialize event publisher
	publisher, err := newPublisher(cfg.Events, cfg.Service.Name)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("Failed to connect event publisher")
	}
	defer publisher.Close()
	voidEvents := client.NewVoidEventPublisher(publisher, cfg.Events.SubjectPrefix, log.Logger)

	// Initialize services
	audit := service.NewAuditLogger(errorLogRepo, log.Component("audit"))
	voidService := service.NewVoidService(
		userRepo, roleRepo, invoiceRepo, audit, voidEvents, messages, service.RealClock(), log.Component("void"),
	)
	orderService := service.NewOrderStatusService(
		kots, audit, messages, service.RealClock(), location, log.Component("order_status"),
	)

	// Start HTTP server
	httpHandler := handler.NewHTTPHandler(voidService, orderService, errorLogRepo, db.Ping, messages, log)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpHandler.Routes(cfg.Server.RequestTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.HTTPPort).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryServerInterceptor(log.Logger)))
	handler.RegisterPosCoreServer(grpcServer, handler.NewGRPCHandler(voidService, orderService, log.Logger))

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gRPC listener")
	}

	go func() {
		log.Info().Int("port", cfg.Server.GRPCPort).Msg("Starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()

	log.Info().Msg("Server stopped")
}

// newPublisher connects the configured event transport.
func newPublisher(cfg config.EventsConfig, clientName string) (client.Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverNATS:
		return client.NewNATSPublisher(cfg.NATSURL, clientName)
	case config.EventsDriverRabbitMQ:
		return client.NewRabbitMQPublisher(cfg.AMQPURL, cfg.Exchange)
	default:
		return client.NoopPublisher{}, nil
	}
}
