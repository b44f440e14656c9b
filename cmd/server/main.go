package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dining-service/config"
	"dining-service/internal/api"
	"dining-service/internal/broker"
	"dining-service/internal/catalog"
	"dining-service/internal/directory"
	"dining-service/internal/ledger"
	"dining-service/internal/models"
	"dining-service/internal/redisclient"
	"dining-service/internal/service"
	"dining-service/internal/store"
	"dining-service/internal/util"
	"dining-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting dining service")

	tp, err := util.InitTracer("dining-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Redis only mirrors ledger state; the service stays up without it.
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, capacity mirror and confirm cache disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cat := catalog.NewCatalog()
	dir := directory.NewDirectory()
	capacityLedger := ledger.NewCapacityLedger()
	accountLedger := ledger.NewAccountLedger()
	ids := store.NewIDAllocator(map[string]int64{
		store.KindReservation: cfg.IDs.ReservationSeed,
		store.KindTransaction: cfg.IDs.TransactionSeed,
	})
	reservations := store.NewReservationStore(ids)
	txlog := store.NewTransactionLog()

	seedData(cat, dir, accountLedger)

	for _, slot := range cat.ListMealSlots() {
		capacityLedger.Register(slot.ID, slot.TotalCapacity)
	}

	if redisClient != nil {
		ctx := context.Background()
		for _, slot := range cat.ListMealSlots() {
			remaining, _ := capacityLedger.Remaining(slot.ID)
			if err := redisClient.SyncCapacity(ctx, slot.ID, remaining, slot.TotalCapacity); err != nil {
				log.Printf("Failed to mirror capacity for slot %d: %v", slot.ID, err)
			}
		}
	}

	pipeline := service.NewCommitPipeline(cat, capacityLedger, accountLedger, reservations, txlog, ids, eventPublisher, redisClient)
	cartService := service.NewCartService(cat, dir, pipeline, redisClient)
	reservationService := service.NewReservationService(reservations, txlog, accountLedger, dir, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	notifyConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notifyWorker := worker.NewNotificationWorker(notifyConsumer)
	go func() {
		if err := notifyWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(cartService, reservationService, cat, dir)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notifyWorker.Stop()

	log.Println("Server exited")
}

// seedData loads the demo catalog and a couple of students with opening
// balances. A real deployment syncs these from the campus directory and
// catalog systems instead.
func seedData(cat *catalog.Catalog, dir *directory.Directory, accounts *ledger.AccountLedger) {
	catalog.SeedDemoData(cat)

	students := []models.Student{
		{ID: 1, StudentNo: "40211001", FirstName: "Sara", LastName: "Moradi", Email: "sara@campus.edu", Active: true},
		{ID: 2, StudentNo: "40211002", FirstName: "Omid", LastName: "Karimi", Email: "omid@campus.edu", Active: true},
	}
	for _, s := range students {
		dir.Register(s)
		accounts.Open(s.ID, decimal.NewFromFloat(20.00))
	}
}
