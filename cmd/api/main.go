package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/driverpay/docs"
	"github.com/fkhayef/driverpay/internal/collection"
	"github.com/fkhayef/driverpay/internal/config"
	"github.com/fkhayef/driverpay/internal/conversion"
	"github.com/fkhayef/driverpay/internal/database"
	"github.com/fkhayef/driverpay/internal/debt"
	"github.com/fkhayef/driverpay/internal/events"
	"github.com/fkhayef/driverpay/internal/notice"
	"github.com/fkhayef/driverpay/internal/payment"
	mw "github.com/fkhayef/driverpay/pkg/middleware"
)

// @title        driverpay API
// @version      1.0
// @description  Driver COD debt collection: selection, conversion and bulk payment.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	// Database is required for the postgres debt source, optional otherwise
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		if cfg.DebtSource == "postgres" {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Printf("Database unavailable, notices kept in memory: %v", err)
	} else {
		defer db.Close()
		log.Println("Connected to database successfully")
	}

	// Debt listing
	var source debt.Source
	if cfg.DebtSource == "postgres" {
		source = debt.NewRepository(db)
	} else {
		source = debt.NewAPISource(cfg.CatalogAPIURL, cfg.CatalogAPIToken, cfg.HomeCurrency, client)
	}

	// Notice feature
	noticeService := notice.NewService(noticeStore(db))
	noticeHandler := notice.NewHandler(noticeService)

	// Pending transactions must outlive the process for the redirect round trip
	var pending payment.PendingStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		pending = payment.NewRedisPendingStore(rdb)
		log.Println("Connected to redis successfully")
	} else {
		log.Println("REDIS_ADDR not set, pending transactions kept in memory")
		pending = payment.NewMemoryPendingStore()
	}

	// Reconciliation events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBroker)
	}
	defer publisher.Close()

	// Payment gateways (registry by channel)
	instant := payment.NewInstantGateway(cfg.BulkPaymentURL, cfg.CatalogAPIToken, client)
	redirect := payment.NewRedirectGateway(cfg.RedirectGatewayURL, cfg.PublicBaseURL, pending, cfg.PendingTxTTL, client)
	dispatcher := payment.NewDispatcher(instant, redirect)

	// Collection feature
	manager := collection.NewManager(collection.Dependencies{
		Source:            source,
		Converter:         conversion.NewHTTPConverter(cfg.ConversionAPIURL, client),
		Dispatcher:        dispatcher,
		Confirmer:         instant,
		Pending:           pending,
		Notices:           noticeService,
		Publisher:         publisher,
		HomeCurrency:      cfg.HomeCurrency,
		TargetCurrency:    cfg.TargetCurrency,
		ConversionTimeout: cfg.ConversionTimeout,
		PendingTTL:        cfg.PendingTxTTL,
	})

	identify := mw.DriverMiddleware
	if cfg.IsDevelopment() {
		identify = mw.DevDriverMiddleware
	}
	collectionHandler := collection.NewHandler(manager, identify)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/collections", collectionHandler.Routes())
		r.With(identify).Mount("/notices", noticeHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func noticeStore(db *sql.DB) notice.Store {
	if db == nil {
		return notice.NewMemoryStore()
	}
	return notice.NewRepository(db)
}
