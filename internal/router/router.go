package router

import (
	"context"
	"time"

	"pharmacare/internal/auth"
	"pharmacare/internal/config"
	"pharmacare/internal/handler"
	"pharmacare/internal/infra"
	"pharmacare/internal/metrics"
	"pharmacare/internal/middleware"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"
	"pharmacare/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	authRPS          = 1
	authBurst        = 10
	limiterPurgeTick = 5 * time.Minute
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// dispatcher receives receipt jobs for committed bills and may be nil.
// smtpCB is reported by /health and may be nil. The rate limiter purge
// goroutines stop when ctx is done.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.ReceiptDispatcher, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authLimiter := middleware.NewIPRateLimiter(authRPS, authBurst)
	go apiLimiter.RunPurge(limiterPurgeTick, ctx.Done())
	go authLimiter.RunPurge(limiterPurgeTick, ctx.Done())

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: config.SplitList(cfg.CORSAllowedOrigins),
		AllowedMethods: config.SplitList(cfg.CORSAllowedMethods),
		AllowedHeaders: config.SplitList(cfg.CORSAllowedHeaders),
	}))
	r.Use(middleware.ErrorHandler())

	// ── Infrastructure ───────────────────────────────────────────────────────
	jwt := auth.NewJWT(cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationHours)*time.Hour,
		time.Duration(cfg.JWTRefreshHours)*time.Hour)
	tokens := auth.NewRedisTokenStore(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	pharmacyRepo := repository.NewPharmacyRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	billRepo := repository.NewBillRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	familyRepo := repository.NewFamilyMemberRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	documentRepo := repository.NewMedicalDocumentRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, pharmacyRepo, tokens, jwt)
	pharmacySvc := service.NewPharmacyService(pharmacyRepo, userRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo, pharmacyRepo, movementRepo, rdb)
	billSvc := service.NewBillService(billRepo, inventoryRepo, movementRepo, pharmacyRepo, userRepo, rdb, dispatcher)
	medicationSvc := service.NewMedicationService(medicationRepo)
	reminderSvc := service.NewReminderService(reminderRepo, medicationRepo)
	familySvc := service.NewFamilyService(familyRepo)
	donationSvc := service.NewDonationService(donationRepo)
	documentSvc := service.NewDocumentService(documentRepo, cfg.MaxDocumentSize, config.SplitList(cfg.AllowedDocumentTypes))
	userSvc := service.NewUserService(userRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	pharmacyH := handler.NewPharmacyHandler(pharmacySvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	billsH := handler.NewBillsHandler(billSvc)
	medicationsH := handler.NewMedicationsHandler(medicationSvc)
	remindersH := handler.NewRemindersHandler(reminderSvc)
	familyH := handler.NewFamilyHandler(familySvc)
	donationsH := handler.NewDonationsHandler(donationSvc)
	documentsH := handler.NewDocumentsHandler(documentSvc, cfg.MaxDocumentSize)
	usersH := handler.NewUsersHandler(userSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var breaker handler.BreakerState
	if smtpCB != nil {
		breaker = smtpCB
	}
	r.GET("/health", handler.Health(db, rdb, breaker))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	jwtMW := middleware.JWTAuth(jwt, tokens)

	authG := r.Group("/auth", authLimiter.Middleware())
	{
		authG.POST("/login", authH.Login)
		authG.POST("/signup", authH.Signup)
		authG.POST("/pharmacy/signup", authH.PharmacySignup)
		authG.POST("/pharmacy/login", authH.PharmacyLogin)
		authG.POST("/refresh", authH.Refresh)
		authG.GET("/validate", jwtMW, authH.Validate)
		authG.POST("/logout", jwtMW, authH.Logout)
	}

	// Protected routes
	protected := r.Group("", apiLimiter.Middleware(), jwtMW)

	api := protected.Group("/api")
	{
		pharmacies := api.Group("/pharmacies")
		{
			pharmacies.GET("/mine", pharmacyH.ListMine)
			pharmacies.GET("/:id", pharmacyH.Get)
			pharmacies.GET("/:id/staff", pharmacyH.ListStaff)
			pharmacies.POST("/:id/staff", pharmacyH.AddStaff)
			pharmacies.PATCH("/:id/staff/:staffId/deactivate", pharmacyH.DeactivateStaff)
		}

		inv := api.Group("/inventories")
		{
			inv.GET("/stats", inventoryH.Stats)
			inv.GET("/overview", inventoryH.Overview)
			inv.GET("/:pharmacyId/items", inventoryH.List)
			inv.POST("/:pharmacyId/items", inventoryH.Create)
			inv.GET("/:pharmacyId/items/:id", inventoryH.Get)
			inv.PUT("/:pharmacyId/items/:id", inventoryH.Update)
			inv.DELETE("/:pharmacyId/items/:id", inventoryH.Delete)
			inv.GET("/:pharmacyId/items/:id/movements", inventoryH.Movements)
		}

		// Billing is for pharmacy staff; membership is checked per pharmacy.
		pharmacyOnly := middleware.RequireRole(model.RolePharmacy, model.RoleAdmin)
		bills := api.Group("/bills", pharmacyOnly)
		{
			bills.POST("", billsH.Create)
			bills.GET("", billsH.List)
			bills.GET("/:id", billsH.Get)
		}
		api.GET("/analytics/sales/summary", pharmacyOnly, billsH.SalesSummary)

		meds := api.Group("/medications")
		{
			meds.GET("", medicationsH.List)
			meds.POST("", medicationsH.Create)
			meds.GET("/:id", medicationsH.Get)
			meds.PUT("/:id", medicationsH.Update)
			meds.DELETE("/:id", medicationsH.Delete)
		}

		family := api.Group("/family")
		{
			family.GET("", familyH.List)
			family.POST("", familyH.Create)
			family.GET("/:id", familyH.Get)
			family.PUT("/:id", familyH.Update)
			family.DELETE("/:id", familyH.Delete)
		}

		docs := api.Group("/medical-documents")
		{
			docs.POST("/upload", documentsH.Upload)
			docs.GET("", documentsH.List)
			docs.GET("/type/:documentType", documentsH.ListByType)
			docs.GET("/:id", documentsH.Download)
			docs.DELETE("/:id", documentsH.Delete)
		}

		api.GET("/users/me", usersH.Me)
		api.PUT("/users/me", usersH.UpdateMe)
	}

	reminders := protected.Group("/reminders")
	{
		reminders.GET("", remindersH.List)
		reminders.GET("/pending", remindersH.Pending)
		reminders.POST("", remindersH.Create)
		reminders.GET("/:id", remindersH.Get)
		reminders.PUT("/:id", remindersH.Update)
		reminders.POST("/:id/complete", remindersH.Complete)
		reminders.DELETE("/:id", remindersH.Delete)
	}

	donations := protected.Group("/donations")
	{
		donations.GET("", donationsH.List)
		donations.GET("/pending", donationsH.Pending)
		donations.POST("", donationsH.Create)
		donations.GET("/:id", donationsH.Get)
		donations.PUT("/:id", donationsH.Update)
		donations.DELETE("/:id", donationsH.Delete)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
