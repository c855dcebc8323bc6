package main

import (
	"context"
	"log"
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/catalog"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Access Control API
// @version         1.0
// @description     Permission catalog sync, role assignments, user overrides and the authorization gate.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "postgres")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	rpRepo := repository.NewRolePermissionRepository(db)
	upRepo := repository.NewUserPermissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	accessService := service.NewAccessService(permRepo, rpRepo, upRepo, userRepo)
	syncService := service.NewSyncService(catalog.Keys(), permRepo, auditRepo, txManager, wsHub, accessService)
	permissionService := service.NewPermissionService(permRepo)
	roleService := service.NewRoleService(roleRepo, rpRepo, auditRepo, accessService)
	rpService := service.NewRolePermissionService(rpRepo, roleRepo, permRepo, auditRepo, txManager, wsHub, accessService)
	upService := service.NewUserPermissionService(upRepo, userRepo, permRepo, auditRepo, txManager, wsHub, accessService)
	userService := service.NewUserService(userRepo, roleRepo, accessService)
	auditService := service.NewAuditService(auditRepo)

	middleware.InitAccessMiddleware(accessService, userRepo)

	// Seed defaults and sync the catalog before taking traffic
	bootstrap := service.NewBootstrapService(userRepo, roleRepo, permRepo, rpRepo, syncService)
	report, err := bootstrap.Run(context.Background(),
		getEnv("ADMIN_USERNAME", "admin"),
		getEnv("ADMIN_PASSWORD", "admin12345"))
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	log.Printf("Catalog sync: %d inserted, %d reactivated, %d soft-deleted, %d unchanged",
		len(report.Inserted), len(report.Reactivated), len(report.SoftDeleted), len(report.Unchanged))

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, accessService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	roleHandler := handler.NewRoleHandler(roleService)
	rpHandler := handler.NewRolePermissionHandler(rpService)
	upHandler := handler.NewUserPermissionHandler(upService)
	accessHandler := handler.NewAccessHandler(accessService)
	syncHandler := handler.NewSyncHandler(syncService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint (access-change event feed)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	permissionHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	rpHandler.RegisterRoutes(router.Group(""))
	upHandler.RegisterRoutes(router.Group(""))
	accessHandler.RegisterRoutes(router.Group(""))
	syncHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := getEnv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
