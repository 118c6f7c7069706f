package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/config"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/handler"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Source    *handler.SourceHandler
	Catalog   *handler.CatalogHandler
	Bill      *handler.BillHandler
	Payer     *handler.PayerHandler
	Ledger    *handler.LedgerHandler
	Printer   *handler.PrinterHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Verifier        *utils.TokenVerifier
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Members         middleware.MembershipLookup
	// RateLimiter is built from Cfg.RateLimit when nil
	RateLimiter *middleware.SourceRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	}
	router.GET("/health", health)
	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewSourceRateLimiter(
			middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration),
		)
	}
	idem := middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Verifier))

		// Routes that act on the caller rather than a source
		account := protected.Group("")
		account.Use(rateLimiter.Middleware())
		registerAccountRoutes(account, h, idem)

		// Everything else needs X-Source-ID and a membership
		scoped := protected.Group("")
		scoped.Use(middleware.SourceMiddleware(deps.Members))
		scoped.Use(rateLimiter.Middleware())
		registerScopedRoutes(scoped, h, idem)
	}

	return router
}

func registerAccountRoutes(account *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	account.GET("/sources", h.Source.ListSources)
	account.POST("/sources", middleware.Idempotency(idem), h.Source.CreateSource)
	account.POST("/invitations/accept", h.Source.AcceptInvitation)
}

func registerScopedRoutes(scoped *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	registerSourceRoutes(scoped, h)
	registerCatalogRoutes(scoped, h)
	registerBillRoutes(scoped, h, idem)
	registerPayerRoutes(scoped, h, idem)
	registerLedgerRoutes(scoped, h, idem)
	registerPrinterRoutes(scoped, h)
}

func can(action policy.Action) gin.HandlerFunc {
	return middleware.RequireAction(action)
}

func registerSourceRoutes(scoped *gin.RouterGroup, h *Handlers) {
	scoped.GET("/sources/current", can(policy.SourceView), h.Source.GetCurrentSource)
	scoped.PUT("/sources/current", can(policy.SourceManage), h.Source.UpdateCurrentSource)

	members := scoped.Group("/members")
	{
		members.GET("", can(policy.MemberView), h.Source.ListMembers)
		members.PUT("/:userId/role", can(policy.MemberManage), h.Source.UpdateMemberRole)
		members.PUT("/:userId/access", can(policy.MemberManage), h.Source.UpdateMemberAccess)
		members.DELETE("/:userId", can(policy.MemberManage), h.Source.RemoveMember)
	}

	invitations := scoped.Group("/invitations")
	{
		invitations.GET("", can(policy.MemberInvite), h.Source.ListInvitations)
		invitations.POST("", can(policy.MemberInvite), h.Source.Invite)
		invitations.DELETE("/:id", can(policy.MemberInvite), h.Source.RevokeInvitation)
	}
}

func registerCatalogRoutes(scoped *gin.RouterGroup, h *Handlers) {
	categories := scoped.Group("/categories")
	{
		categories.GET("", can(policy.CatalogView), h.Catalog.ListCategories)
		categories.POST("", can(policy.CatalogManage), h.Catalog.CreateCategory)
		categories.PUT("/:id", can(policy.CatalogManage), h.Catalog.UpdateCategory)
		categories.PATCH("/:id/toggle", can(policy.CatalogManage), h.Catalog.ToggleCategory)
		categories.DELETE("/:id", can(policy.CatalogManage), h.Catalog.DeleteCategory)
	}

	products := scoped.Group("/products")
	{
		products.GET("", can(policy.CatalogView), h.Catalog.ListProducts)
		products.POST("", can(policy.CatalogManage), h.Catalog.CreateProduct)
		products.GET("/:id", can(policy.CatalogView), h.Catalog.GetProduct)
		products.PUT("/:id", can(policy.CatalogManage), h.Catalog.UpdateProduct)
		products.DELETE("/:id", can(policy.CatalogManage), h.Catalog.DeleteProduct)
		products.PUT("/:id/recipe", can(policy.CatalogManage), h.Catalog.SetRecipe)
		products.GET("/:id/availability", can(policy.CatalogView), h.Catalog.Availability)
		products.POST("/:id/stock", can(policy.CatalogManage), h.Catalog.AdjustStock)
	}
}

func registerBillRoutes(scoped *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	bills := scoped.Group("/bills")
	{
		bills.GET("", can(policy.BillView), h.Bill.List)
		bills.POST("", can(policy.BillWrite), middleware.Idempotency(idem), h.Bill.Open)
		bills.GET("/:id", can(policy.BillView), h.Bill.Get)
		bills.POST("/:id/items", can(policy.BillWrite), middleware.Idempotency(idem), h.Bill.AddItem)
		bills.PUT("/:id/items/:itemId", can(policy.BillWrite), h.Bill.UpdateItem)
		bills.DELETE("/:id/items/:itemId", can(policy.BillWrite), h.Bill.RemoveItem)
		bills.PUT("/:id/discount", can(policy.BillWrite), h.Bill.SetDiscount)
		bills.PUT("/:id/payer", can(policy.BillWrite), h.Bill.SetPayer)
		bills.POST("/:id/hold", can(policy.BillWrite), h.Bill.Hold)
		bills.POST("/:id/resume", can(policy.BillWrite), h.Bill.Resume)
		bills.POST("/:id/cancel", can(policy.BillWrite), h.Bill.Cancel)
		// Money moves here, so retries must carry a key
		bills.POST("/:id/checkout", can(policy.BillWrite), middleware.IdempotencyRequired(idem), h.Bill.Checkout)
		bills.POST("/:id/pay", can(policy.BillWrite), middleware.IdempotencyRequired(idem), h.Bill.PayDue)
	}

	scoped.POST("/checkout/quote", can(policy.BillView), h.Bill.Quote)
}

func registerPayerRoutes(scoped *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	payers := scoped.Group("/payers")
	{
		payers.GET("", can(policy.BillView), h.Payer.List)
		payers.POST("", can(policy.BillWrite), middleware.Idempotency(idem), h.Payer.Create)
		payers.GET("/:id", can(policy.BillView), h.Payer.Get)
		payers.PUT("/:id", can(policy.BillWrite), h.Payer.Update)
		payers.DELETE("/:id", can(policy.BillWrite), h.Payer.Delete)
		payers.GET("/:id/credit", can(policy.BillView), h.Payer.GetCredit)
		payers.PUT("/:id/credit", can(policy.CreditManage), h.Payer.SetCredit)
		payers.DELETE("/:id/credit", can(policy.CreditManage), h.Payer.DeleteCredit)
	}

	scoped.GET("/receivables", can(policy.BillView), h.Payer.Receivables)
}

func registerLedgerRoutes(scoped *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	categories := scoped.Group("/ledger/categories")
	{
		categories.GET("", can(policy.LedgerView), h.Ledger.ListCategories)
		categories.POST("", can(policy.CategoryManage), h.Ledger.CreateCategory)
		categories.PATCH("/:id/toggle", can(policy.CategoryManage), h.Ledger.ToggleCategory)
		categories.DELETE("/:id", can(policy.CategoryManage), h.Ledger.DeleteCategory)
	}

	transactions := scoped.Group("/transactions")
	{
		transactions.GET("", can(policy.LedgerView), h.Ledger.ListTransactions)
		transactions.POST("", can(policy.LedgerWrite), middleware.Idempotency(idem), h.Ledger.CreateTransaction)
		transactions.DELETE("/:id", can(policy.LedgerDelete), h.Ledger.DeleteTransaction)
	}

	scoped.GET("/reports/summary", can(policy.ReportView), h.Ledger.Summary)
	scoped.GET("/reports/dashboard", can(policy.ReportView), h.Dashboard.GetStats)
}

func registerPrinterRoutes(scoped *gin.RouterGroup, h *Handlers) {
	printer := scoped.Group("/printer")
	printer.Use(can(policy.PrinterUse))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/bills/:id", h.Printer.PrintBill)
	}
}
