package routes

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	roomHandler *handlers.RoomHandler,
	taskHandler *handlers.TaskHandler,
	boardHandler *handlers.BoardHandler,
) *gin.Engine {

	// ---- public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	users := r.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.POST("/telegram", userHandler.LinkTelegram)
	}

	rooms := r.Group("/rooms")
	{
		rooms.POST("/create", roomHandler.Create)
		rooms.POST("/join", roomHandler.Join)
		rooms.GET("/:id", roomHandler.Get)
		rooms.POST("/:id/invite", roomHandler.Invite)
		rooms.GET("/:id/report", roomHandler.ExportReport)
	}

	tasks := r.Group("/tasks")
	{
		tasks.GET("/logs/recent", taskHandler.RecentLogs)
		tasks.GET("/room/:roomId", taskHandler.ListByRoom)
		tasks.POST("", taskHandler.Create)
		tasks.PUT("/smart-assign/:id", taskHandler.SmartAssign)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	r.GET("/ws/board/:roomId", boardHandler.Stream)

	return r
}
