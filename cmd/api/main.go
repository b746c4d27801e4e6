package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/database"
	applog "go-retail-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	log := applog.Get()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Product{},
		&model.Customer{},
		&model.Bill{},
		&model.BillItem{},
		&model.StockMovement{},
		&model.User{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	billRepo := repository.NewBillRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(productRepo, movementRepo, wsHub, log)
	customerService := service.NewCustomerService(customerRepo)
	billingService := service.NewBillingService(billRepo, invService, customerService, wsHub, log)
	syncService := service.NewSyncService(billingService, invService)
	reportService := service.NewReportService(billRepo, productRepo, movementRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)

	invHandler := handler.NewInventoryHandler(invService)
	customerHandler := handler.NewCustomerHandler(customerService)
	billingHandler := handler.NewBillingHandler(billingService)
	syncHandler := handler.NewSyncHandler(syncService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail POS Backend v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Request logging
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Product Routes
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/low-stock", invHandler.GetLowStock)
	protected.Get("/products/expiring", invHandler.GetExpiring)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", invHandler.CreateProduct)
	protected.Put("/products/:id", invHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireRole(model.RoleMasterAdmin), invHandler.DeleteProduct)
	protected.Post("/products/:id/restock", invHandler.RestockProduct)

	// Customer Routes
	protected.Get("/customers", customerHandler.GetCustomers)
	protected.Get("/customers/:id", customerHandler.GetCustomer)
	protected.Post("/customers", customerHandler.CreateCustomer)
	protected.Put("/customers/:id", customerHandler.UpdateCustomer)

	// Bill Routes
	protected.Get("/bills", billingHandler.GetBills)
	protected.Get("/bills/:id", billingHandler.GetBill)
	protected.Post("/bills", billingHandler.CreateBill)

	// Offline Sync Route
	protected.Post("/sync", syncHandler.Sync)

	// Report Routes
	protected.Get("/reports/sales", reportHandler.SalesReport)
	protected.Get("/reports/inventory", reportHandler.InventoryReport)
	protected.Get("/reports/stock-movement", reportHandler.StockMovement)

	// User Management Routes (master admin only)
	protected.Get("/users", middleware.RequireRole(model.RoleMasterAdmin), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequireRole(model.RoleMasterAdmin), userHandler.GetUser)
	protected.Post("/users", middleware.RequireRole(model.RoleMasterAdmin), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequireRole(model.RoleMasterAdmin), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequireRole(model.RoleMasterAdmin), userHandler.DeleteUser)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Info("Server exited")
}

// seedAdmin creates the default master admin user if it doesn't exist
func seedAdmin(db *gorm.DB) {
	log := applog.Get()
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Master Administrator",
		Role:     model.RoleMasterAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Warnf("Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Warnf("Failed to create admin user: %v", err)
	} else {
		log.Info("✅ Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
	}
}
