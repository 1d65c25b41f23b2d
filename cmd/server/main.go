// Command server wires the brokerage API: storage, sessions, audit fan-out,
// and the HTTP router. Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"brokerage/internal/audit"
	"brokerage/internal/auth"
	"brokerage/internal/claims"
	"brokerage/internal/clients"
	"brokerage/internal/platform/config"
	"brokerage/internal/platform/httpserver"
	"brokerage/internal/platform/logger"
	"brokerage/internal/platform/metrics"
	platformredis "brokerage/internal/platform/redis"
	"brokerage/internal/policies"
	"brokerage/internal/products"
	"brokerage/internal/reports"
	"brokerage/internal/storage"
	"brokerage/internal/storage/postgres"
	httptransport "brokerage/internal/transport/http"
)

const (
	auditInboxSize  = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence: PostgreSQL when DATABASE_URL is set, in-memory otherwise.
	var (
		clientStore   storage.ClientStore
		productStore  storage.ProductStore
		policyStore   storage.PolicyStore
		claimStore    storage.ClaimStore
		userStore     auth.UserStore
		auditStore    audit.Store
		transactor    storage.Transactor
		reportQueries reports.Queries
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		clientStore = postgres.NewClientStore(db)
		productStore = postgres.NewProductStore(db)
		policyStore = postgres.NewPolicyStore(db)
		claimStore = postgres.NewClaimStore(db)
		userStore = postgres.NewUserStore(db)
		auditStore = postgres.NewAuditStore(db)
		transactor = postgres.NewTransactor(db)
		reportQueries = postgres.NewReportQueries(db)
		log.Info("storage configured", "backend", "postgres")
	} else {
		memClients := storage.NewInMemoryClientStore()
		memProducts := storage.NewInMemoryProductStore()
		memPolicies := storage.NewInMemoryPolicyStore()
		memClaims := storage.NewInMemoryClaimStore()
		clientStore = memClients
		productStore = memProducts
		policyStore = memPolicies
		claimStore = memClaims
		userStore = auth.NewInMemoryUserStore()
		auditStore = audit.NewInMemoryStore()
		transactor = storage.NopTransactor{}
		reportQueries = reports.NewStoreQueries(memClients, memProducts, memPolicies, memClaims)
		log.Info("storage configured", "backend", "memory")
	}

	// Sessions: Redis when REDIS_URL is set, in-memory otherwise.
	var sessionStore auth.SessionStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessionStore = auth.NewRedisSessionStore(redisClient)
		log.Info("sessions configured", "backend", "redis")
	} else {
		sessionStore = auth.NewInMemorySessionStore()
		log.Info("sessions configured", "backend", "memory")
	}

	// Audit: the store append is synchronous; Kafka fan-out, when brokers
	// are configured, runs behind an inbox drained by a worker.
	var (
		sink   audit.Sink
		worker *audit.Worker
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := kafkaSink.Close(closeCtx); err != nil {
				log.Warn("kafka sink close failed", "error", err)
			}
		}()
		inbox := make(chan audit.Event, auditInboxSize)
		sink = audit.NewChannelSink(inbox, log)
		worker = audit.NewWorker(kafkaSink, inbox, log)
		log.Info("audit fan-out configured", "topic", cfg.Kafka.AuditTopic)
	}
	auditor := audit.NewPublisher(auditStore, sink, log)

	tokens := auth.NewJWTService(cfg.JWTSigningKey, "brokerage", "brokerage-api")
	authSvc := auth.NewService(userStore, sessionStore, tokens, auditor, log)
	if err := seedAdmin(ctx, authSvc, log); err != nil {
		return err
	}

	clientSvc := clients.NewService(clientStore, auditor, log)
	productSvc := products.NewService(productStore, auditor, log)
	policySvc := policies.NewService(policyStore, clientStore, productStore, claimStore,
		auditor, policies.NewMetrics(), log)
	claimSvc := claims.NewService(claimStore, policyStore, policySvc, transactor,
		auditor, claims.NewMetrics(), log)
	reportSvc := reports.NewService(reportQueries, auditor, log, cfg.ExportDir)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Metrics:  metrics.NewHTTP(),
		Tokens:   tokens,
		Sessions: sessionStore,
		Auth:     auth.NewHandler(authSvc, log),
		Clients:  clients.NewHandler(clientSvc, log),
		Products: products.NewHandler(productSvc, log),
		Policies: policies.NewHandler(policySvc, log),
		Claims:   claims.NewHandler(claimSvc, log),
		Reports:  reports.NewHandler(reportSvc, log),
	})

	server := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedAdmin bootstraps the first admin account so a fresh deployment can log
// in. It only runs when the user table is empty and the password is provided.
func seedAdmin(ctx context.Context, authSvc *auth.Service, log *slog.Logger) error {
	existing, err := authSvc.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	password := os.Getenv("BROKERAGE_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("no users and BROKERAGE_ADMIN_PASSWORD unset, skipping admin seed")
		return nil
	}
	if _, err := authSvc.CreateUser(ctx, "admin", password, auth.RoleAdmin); err != nil {
		return err
	}
	log.Info("seeded admin user", "username", "admin")
	return nil
}
