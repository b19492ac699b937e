package app

import (
	"database/sql"
	"fmt"
	"log"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/pdf"
	"taskboard/internal/realtime"
	"taskboard/internal/repositories"
	"taskboard/internal/routes"
	"taskboard/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "taskboard/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	roomRepo := repositories.NewRoomRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	logRepo := repositories.NewActionLogRepository(db)

	// === Services ===
	authService := services.NewAuthService()

	var emailService services.EmailService
	if cfg.Email.Enabled {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	userService := services.NewUserService(userRepo, emailService, authService)
	roomService := services.NewRoomService(roomRepo, emailService)

	actionLogger := services.NewActionLogger(logRepo, taskRepo)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, userRepo)
	taskService := services.NewTaskService(taskRepo, roomRepo, logRepo, actionLogger, telegramService)

	reportGen := pdf.NewBoardReportGenerator()

	// Relay hub is an explicit handle passed to whoever publishes,
	// never ambient state.
	hub := realtime.NewBoardHub()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	roomHandler := handlers.NewRoomHandler(roomService, taskService, reportGen)
	taskHandler := handlers.NewTaskHandler(taskService, hub)
	boardHandler := handlers.NewBoardHandler(roomService, hub)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		roomHandler,
		taskHandler,
		boardHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
