package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/cache"
	analysisclient "github.com/Jhoseto/factcheckerAI-sub002/infrastructure/clients/analysis"
	metadataclient "github.com/Jhoseto/factcheckerAI-sub002/infrastructure/clients/metadata"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/configuration"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/persistence"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/pubsub"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/realtime"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/servicebus"
	httpHandler "github.com/Jhoseto/factcheckerAI-sub002/interfaces/http"
	"github.com/Jhoseto/factcheckerAI-sub002/server"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

// auditEvents fans completed-audit events out to every configured transport.
type auditEvents struct {
	publishers []usecase.IAuditEvents
}

func (e *auditEvents) PublishCompleted(ctx context.Context, userID string, result *model.AuditResult) {
	for _, p := range e.publishers {
		p.PublishCompleted(ctx, userID, result)
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	primaryDb, psqlDb, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - archive disabled")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - archive disabled")
		mongoDb = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without it")
		pubSubClient = nil
	}
	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without it")
		azServiceBusClient = nil
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - metadata lookups will skip the cache")
		redisClient = nil
	}
	metadataCache := cache.NewMetadataCache(redisClient)

	// Repository wiring: MSSQL in production, otherwise PostgreSQL.
	var userRepository repository.IUser
	var ledgerRepository repository.ILedger
	if psqlDb == nil {
		userRepository = persistence.NewUserRepositoryMSSQL(primaryDb)
		ledgerRepository = persistence.NewLedgerRepositoryMSSQL(primaryDb)
	} else {
		if err := persistence.EnsureLedgerSchema(psqlDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring ledger schema")
		}
		userRepository = persistence.NewUserRepository(psqlDb)
		ledgerRepository = persistence.NewLedgerRepository(psqlDb)
	}

	metadataRepository, err := metadataclient.NewClient(ctx, &metadataclient.Config{
		APIKey:       configuration.C.YouTube.APIKey,
		ClientID:     configuration.C.YouTube.ClientID,
		ClientSecret: configuration.C.YouTube.ClientSecret,
		RedirectURL:  configuration.C.YouTube.RedirectURI,
	}, metadataCache)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Metadata client initialization failed")
		os.Exit(1)
	}

	analysisRepository := analysisclient.NewClient(
		configuration.C.Analysis.Host,
		configuration.C.Analysis.APIKey,
		time.Duration(configuration.C.Analysis.Timeout)*time.Second,
	)

	progressHub := realtime.NewProgressHub()

	events := &auditEvents{}
	if pubSubClient != nil {
		events.publishers = append(events.publishers, pubsub.NewAuditEventPublisher(pubSubClient, configuration.C.Pubsub.Topic))
	}
	if azServiceBusClient != nil {
		events.publishers = append(events.publishers, servicebus.NewAuditEventSender(azServiceBusClient, configuration.C.ServiceBus.Queue))
	}

	orchestrator := usecase.NewAuditOrchestrator(metadataRepository, analysisRepository, userRepository, ledgerRepository).
		WithBroadcaster(progressHub.Broadcast).
		WithEvents(events)

	userUsecase := usecase.NewUserUsecase(userRepository)
	ledgerFeed := usecase.NewLedgerFeed(ledgerRepository)

	var archiveHandler httpHandler.IArchiveHandler
	if mongoDb != nil {
		archiveRepository := persistence.NewArchiveRepository(mongoDb, configuration.C.Database.Mongo.Name)
		archiveHandler = httpHandler.NewArchiveHandler(usecase.NewArchiveUsecase(archiveRepository))
	} else {
		archiveHandler = httpHandler.NewArchiveHandler(usecase.NewArchiveUsecase(nil))
	}

	userHandler := httpHandler.NewUserHandler(userUsecase, userRepository)
	auditHandler := httpHandler.NewAuditHandler(orchestrator)
	ledgerHandler := httpHandler.NewLedgerHandler(ledgerFeed)

	router := server.InitiateRouter(userHandler, auditHandler, ledgerHandler, archiveHandler, progressHub, userRepository)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase returns (primaryDB, psqlDB). In production primaryDB is
// MSSQL and psqlDB is nil; locally both point at PostgreSQL.
func InitiateDatabase() (*sql.DB, *sql.DB, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL (DB_VENDOR=mssql)")
			return nil, nil, err
		}
		return mssql, nil, nil
	}
	if env == "production" || env == "prod" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL (production)")
			return nil, nil, err
		}
		return mssql, nil, nil
	}

	postgres, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to the local database")
		return nil, nil, err
	}
	return postgres, postgres, nil
}
