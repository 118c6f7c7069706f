package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/config"
	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/cache"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/database"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/repository"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/handler"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/routes"
	"github.com/sangkips/ledgerpos-api/pkg/email"
	"github.com/sangkips/ledgerpos-api/pkg/printer"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

type repositories struct {
	source         domainRepo.SourceRepository
	invitation     domainRepo.InvitationRepository
	category       domainRepo.CategoryRepository
	product        domainRepo.ProductRepository
	bill           domainRepo.BillRepository
	payer          domainRepo.PayerRepository
	credit         domainRepo.CreditSettingRepository
	ledgerCategory domainRepo.LedgerCategoryRepository
	transaction    domainRepo.TransactionRepository
	idempotency    domainRepo.IdempotencyRepository
	tx             domainRepo.Transactor
}

func memoryRepositories() *repositories {
	store := memory.NewStore()
	return &repositories{
		source:         memory.NewSourceRepository(store),
		invitation:     memory.NewInvitationRepository(store),
		category:       memory.NewCategoryRepository(store),
		product:        memory.NewProductRepository(store),
		bill:           memory.NewBillRepository(store),
		payer:          memory.NewPayerRepository(store),
		credit:         memory.NewCreditSettingRepository(store),
		ledgerCategory: memory.NewLedgerCategoryRepository(store),
		transaction:    memory.NewTransactionRepository(store),
		idempotency:    memory.NewIdempotencyRepository(store),
		tx:             store.Transactor(),
	}
}

func postgresRepositories(cfg *config.DatabaseConfig) *repositories {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	return &repositories{
		source:         repository.NewSourceRepository(db),
		invitation:     repository.NewInvitationRepository(db),
		category:       repository.NewCategoryRepository(db),
		product:        repository.NewProductRepository(db),
		bill:           repository.NewBillRepository(db),
		payer:          repository.NewPayerRepository(db),
		credit:         repository.NewCreditSettingRepository(db),
		ledgerCategory: repository.NewLedgerCategoryRepository(db),
		transaction:    repository.NewTransactionRepository(db),
		idempotency:    repository.NewIdempotencyRepository(db),
		tx:             repository.NewTransactor(db),
	}
}

func billCache(cfg *config.RedisConfig) cache.BillCache {
	if !cfg.Enabled {
		return cache.NoopBillCache{}
	}
	client, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, bill cache disabled: %v", err)
		return cache.NoopBillCache{}
	}
	return cache.NewRedisBillCache(client, cfg.BillTTL)
}

func gstPolicy(name string, gst config.GstConfig) checkout.GstPolicy {
	p, err := gst.Policy()
	if err != nil {
		log.Fatalf("Invalid %s GST configuration: %v", name, err)
	}
	return p
}

// purgeIdempotencyKeys drops expired keys once an hour until ctx ends
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := repo.DeleteExpired(ctx, now); err != nil {
				log.Printf("Warning: Failed to purge idempotency keys: %v", err)
			}
		}
	}
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var repos *repositories
	if cfg.Database.IsMemory() {
		log.Printf("Using in-memory storage, data is lost on restart")
		repos = memoryRepositories()
	} else {
		repos = postgresRepositories(&cfg.Database)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeIdempotencyKeys(ctx, repos.idempotency)

	billGST := gstPolicy("bill", cfg.Checkout.BillGST)
	catalogGST := gstPolicy("catalog", cfg.Checkout.CatalogGST)
	ledgerGST := gstPolicy("ledger", cfg.Checkout.LedgerGST)
	calculator := checkout.NewCalculator(cfg.Checkout.AllowNegativeTotals)

	mailer := email.NewSender(email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
	})
	if !mailer.Enabled() {
		log.Printf("SMTP not configured, invitation codes are returned but not emailed")
	}

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter, _ = printer.New(printer.Config{Type: "none"})
	}

	// Initialize services
	sourceService := service.NewSourceService(repos.source, repos.ledgerCategory, repos.tx)
	invitationService := service.NewInvitationService(repos.invitation, repos.source, mailer, repos.tx, cfg.Invitation.TTL)
	categoryService := service.NewCategoryService(repos.category, repos.product)
	productService := service.NewProductService(repos.product, repos.category, repos.tx, catalogGST)
	ledgerService := service.NewLedgerService(repos.ledgerCategory, repos.transaction, ledgerGST)
	payerService := service.NewPayerService(repos.payer, repos.credit, repos.bill, repos.tx, cfg.Checkout.DefaultCreditDays)
	billService := service.NewBillService(service.BillServiceDeps{
		BillRepo:    repos.bill,
		ProductRepo: repos.product,
		PayerRepo:   repos.payer,
		Tx:          repos.tx,
		Cache:       billCache(&cfg.Redis),
		Calculator:  calculator,
		GST:         billGST,
		Products:    productService,
		Ledger:      ledgerService,
		Payers:      payerService,
	})
	checkoutService := service.NewCheckoutService(calculator, billGST)
	printerService := service.NewPrinterService(thermalPrinter, repos.bill, repos.source, cfg.Printer.Type, cfg.Printer.Width)
	dashboardService := service.NewDashboardService(repos.bill, repos.product, repos.transaction, payerService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Source:    handler.NewSourceHandler(sourceService, invitationService),
		Catalog:   handler.NewCatalogHandler(categoryService, productService),
		Bill:      handler.NewBillHandler(billService, checkoutService),
		Payer:     handler.NewPayerHandler(payerService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Printer:   handler.NewPrinterHandler(printerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewSourceRateLimiter(
		middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Verifier:        utils.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		Members:         sourceService,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Printf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
