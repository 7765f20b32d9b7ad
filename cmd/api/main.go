package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/api/handlers"
	"github.com/nbc-assist/backend/internal/cache/redis"
	"github.com/nbc-assist/backend/internal/chat"
	"github.com/nbc-assist/backend/internal/ingestion"
	"github.com/nbc-assist/backend/internal/invoice"
	"github.com/nbc-assist/backend/internal/llm"
	"github.com/nbc-assist/backend/internal/metrics"
	"github.com/nbc-assist/backend/internal/middleware/ratelimit"
	"github.com/nbc-assist/backend/internal/middleware/security"
	"github.com/nbc-assist/backend/internal/middleware/validation"
	"github.com/nbc-assist/backend/internal/orders"
	"github.com/nbc-assist/backend/internal/storage/sqlite"
	"github.com/nbc-assist/backend/internal/vector/milvus"
	"github.com/nbc-assist/backend/pkg/config"
	appLogger "github.com/nbc-assist/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting NBC Assist API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	milvusClient, err := milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.APIKey, cfg.Milvus.VectorDim)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	chatEngine := chat.NewEngine(llmClient, milvusClient, llmClient, redisClient)
	processor := ingestion.NewProcessor(llmClient, milvusClient)
	orderService := orders.NewService(sqliteClient)
	invoiceRenderer := invoice.NewRenderer(cfg.Invoice.CurrencySymbol)

	metrics.Register()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	chatHandler := handlers.NewChatHandler(chatEngine)
	orderHandler := handlers.NewOrderHandler(orderService, invoiceRenderer)
	authHandler := handlers.NewAuthHandler(cfg.Auth.Username, cfg.Auth.Password)
	libraryHandler := handlers.NewLibraryHandler(cfg.Library.PDFDir, milvusClient)
	documentHandler := handlers.NewDocumentHandler(processor)

	app.Post("/chat", chatHandler.HandleChat)

	app.Post("/api/login", authHandler.Login)
	app.Get("/api/list-pdfs", libraryHandler.ListPDFs)
	app.Get("/api/list-collections", libraryHandler.ListCollections)
	app.Get("/pdfs/:filename", libraryHandler.ServePDF)
	app.Post("/api/collections/:id/documents", documentHandler.IngestPassages)

	app.Post("/orders/", orderHandler.CreateOrder)
	app.Get("/orders/", orderHandler.ListOrders)
	app.Get("/orders/search/", orderHandler.SearchOrders)
	app.Get("/orders/filter/", orderHandler.FilterOrders)
	app.Put("/orders/:id/", orderHandler.UpdateOrder)
	app.Delete("/orders/:id/", orderHandler.DeleteOrder)
	app.Get("/orders/:id/invoice_pdf", orderHandler.InvoicePDF)
	app.Get("/orders/:id/invoice_json", orderHandler.InvoiceJSON)
	app.Get("/reports/collection/", orderHandler.CollectionReport)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/api/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Static("/static", cfg.Library.StaticDir)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.Library.StaticDir, "index.html"))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
