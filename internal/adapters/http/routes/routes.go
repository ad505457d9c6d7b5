package routes

import (
	"time"

	"microloan/internal/adapters/http/handlers"
	"microloan/internal/adapters/http/middleware"
	"microloan/internal/adapters/persistence/repositories"
	"microloan/internal/config"
	"microloan/internal/core/services"
	"microloan/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies are the collaborators built by main
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Checkout services.CheckoutProvider

	// RateStorage backs the auth rate limiter; nil keeps counters in memory.
	RateStorage fiber.Storage
	Metrics     *middleware.Metrics
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Dependencies) {
	db, cfg := deps.DB, deps.Config

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Initialize services
	tokens := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo)
	loanService := services.NewLoanService(loanRepo)
	appService := services.NewApplicationService(appRepo, loanRepo)
	paymentService := services.NewPaymentService(paymentRepo, appRepo, deps.Checkout, cfg.Stripe)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	loanHandler := handlers.NewLoanHandler(loanService)
	appHandler := handlers.NewApplicationHandler(appService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Access gate
	authenticate := middleware.Authenticate(tokens)
	adminOnly := middleware.AdminOnly(userRepo)
	managerOnly := middleware.ManagerOnly(userRepo)
	adminOrManager := middleware.AdminOrManager(userRepo)
	noCache := middleware.NoCacheHeaders()

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Endpoint())
	}

	// Auth routes
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(deps.RateStorage), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(deps.RateStorage), authHandler.Login)
	authRoutes.Get("/me", authenticate, noCache, authHandler.Me)

	// Profile routes (any authenticated identity)
	profile := app.Group("/profile", authenticate, noCache)
	profile.Get("/", userHandler.GetProfile)
	profile.Patch("/", userHandler.UpdateProfile)

	// User routes
	users := app.Group("/users", authenticate, noCache)
	users.Get("/", adminOnly, userHandler.ListUsers)
	users.Get("/:email/role", userHandler.GetRole)
	users.Patch("/:id/role", adminOnly, userHandler.UpdateRole)
	users.Patch("/:id/suspend", adminOnly, userHandler.Suspend)
	users.Delete("/:id", adminOnly, userHandler.DeleteUser)

	// Loan routes (reads are public)
	app.Get("/loans", loanHandler.ListLoans)
	app.Get("/loans/home", middleware.CacheControl(time.Minute), loanHandler.ListHomeLoans)
	app.Get("/loans/:id", loanHandler.GetLoan)
	app.Post("/loans", authenticate, managerOnly, loanHandler.CreateLoan)
	app.Patch("/loans/:id/show-on-home", authenticate, adminOnly, loanHandler.SetShowOnHome)
	app.Patch("/loans/:id", authenticate, adminOrManager, loanHandler.UpdateLoan)
	app.Delete("/loans/:id", authenticate, adminOrManager, loanHandler.DeleteLoan)

	// Application routes
	applications := app.Group("/applications", authenticate, noCache)
	applications.Post("/", appHandler.CreateApplication)
	applications.Get("/me", appHandler.ListMyApplications)
	applications.Get("/", adminOnly, appHandler.ListApplications)
	applications.Delete("/:id", appHandler.CancelApplication)
	applications.Patch("/:id/status", adminOrManager, appHandler.UpdateStatus)

	// Payment routes
	payments := app.Group("/payments", authenticate, noCache)
	payments.Post("/checkout-session", paymentHandler.CreateCheckoutSession)
	payments.Post("/confirm", paymentHandler.ConfirmPayment)
	payments.Get("/me", paymentHandler.ListMyPayments)
	payments.Get("/", adminOnly, paymentHandler.ListPayments)

	// Dashboard routes
	admin := app.Group("/admin", authenticate, adminOnly, noCache)
	admin.Get("/dashboard-stats", dashboardHandler.GetAdminDashboard)

	manager := app.Group("/manager", authenticate, managerOnly, noCache)
	manager.Get("/dashboard-stats", dashboardHandler.GetManagerDashboard)
	manager.Get("/applications", appHandler.ListManagerApplications)
}
