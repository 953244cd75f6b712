package main

import (
	"context"
	"log"

	"github.com/LuqmanKt98/hangout-app/config"
	"github.com/LuqmanKt98/hangout-app/database"
	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/handlers"
	"github.com/LuqmanKt98/hangout-app/middleware"
	"github.com/LuqmanKt98/hangout-app/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.Load()

	// Connect to database
	database.Connect()

	// Connect to Redis (optional, won't crash if unavailable)
	database.ConnectRedis()

	ctx := context.Background()

	// Event bus; with Redis available, bridge events across instances
	bus := events.NewMemoryBus()
	if database.Redis != nil {
		events.NewRedisBridge(database.Redis, bus).Run(ctx)
		log.Println("✅ Redis event bridge running")
	}

	// Services
	userSvc := services.NewUserService(database.DB)
	friendSvc := services.NewFriendService(database.DB)
	groupSvc := services.NewGroupService(database.DB)
	availSvc := services.NewAvailabilityService(database.DB, bus)
	requestSvc := services.NewRequestService(database.DB, bus)
	bookableSvc := services.NewBookableService(database.DB, bus)
	messageSvc := services.NewMessageService(database.DB, bus)

	// Background consumers
	notifier := services.NewNotifier(ctx, database.DB, bus)
	go notifier.Run(ctx)

	ws := handlers.NewWSHandler()
	go ws.Run(ctx, bus)

	// Handlers
	authH := handlers.NewAuthHandler(userSvc)
	userH := handlers.NewUserHandler(userSvc)
	friendH := handlers.NewFriendHandler(friendSvc)
	groupH := handlers.NewGroupHandler(groupSvc)
	availH := handlers.NewAvailabilityHandler(availSvc)
	requestH := handlers.NewRequestHandler(requestSvc)
	bookableH := handlers.NewBookableHandler(bookableSvc)
	messageH := handlers.NewMessageHandler(messageSvc)

	// Setup router
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimiter())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.AppConfig.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
	}

	// ==========================================
	// BOOKABLE LINK ROUTES (token-scoped)
	// ==========================================
	// Resolving a link needs only its token; booking a slot needs an account.
	book := r.Group("/book")
	book.Use(middleware.PublicLinkRateLimiter())
	{
		book.GET("/:token", bookableH.Resolve)
		book.POST("/:token", middleware.AuthRequired(), bookableH.Book)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// User
		api.GET("/users/me", userH.GetProfile)
		api.PUT("/users/me", userH.UpdateProfile)
		api.PUT("/users/me/fcm-token", userH.RegisterFCMToken)
		api.POST("/users/search", friendH.Search)

		// Friends
		api.GET("/friends", friendH.List)
		api.DELETE("/friends/:id", friendH.Remove)
		api.POST("/friends/requests", friendH.SendRequest)
		api.GET("/friends/requests/received", friendH.ListReceived)
		api.GET("/friends/requests/sent", friendH.ListSent)
		api.PUT("/friends/requests/:id/accept", friendH.Accept)
		api.PUT("/friends/requests/:id/decline", friendH.Decline)

		// Groups
		api.POST("/groups", groupH.Create)
		api.GET("/groups", groupH.List)
		api.GET("/groups/:id", groupH.Get)
		api.PUT("/groups/:id", groupH.Update)
		api.DELETE("/groups/:id", groupH.Delete)
		api.POST("/groups/:id/members", groupH.AddMember)
		api.DELETE("/groups/:id/members/:userId", groupH.RemoveMember)
		api.PUT("/groups/:id/members/:userId/role", groupH.UpdateMemberRole)

		// Availability
		api.POST("/availability", availH.Create)
		api.GET("/availability", availH.ListOwn)
		api.GET("/availability/shared", availH.ListShared)
		api.POST("/availability/now", availH.SetAvailableNow)
		api.DELETE("/availability/now", availH.ClearAvailableNow)
		api.PUT("/availability/:id", availH.Update)
		api.DELETE("/availability/:id", availH.Delete)
		api.PUT("/availability/:id/share", availH.Share)
		api.GET("/availability/:id/shares", availH.SharedGrants)

		// Hangout requests
		api.POST("/requests", requestH.Create)
		api.GET("/requests/received", requestH.ListReceived)
		api.GET("/requests/sent", requestH.ListSent)
		api.GET("/plans", requestH.ListPlans)
		api.DELETE("/requests", requestH.ClearHistory)
		api.PUT("/requests/:id/status", requestH.UpdateStatus)
		api.PUT("/requests/:id/seen", requestH.MarkSeen)
		api.DELETE("/requests/:id", requestH.Delete)

		// Messages
		api.POST("/requests/:id/messages", messageH.Send)
		api.GET("/requests/:id/messages", messageH.List)
		api.PUT("/requests/:id/messages/read", messageH.MarkRead)
		api.GET("/requests/:id/messages/unread", messageH.ThreadUnread)
		api.GET("/messages/unread-count", messageH.UnreadCount)

		// Bookable links
		api.POST("/bookable", bookableH.Create)
		api.GET("/bookable", bookableH.ListMine)
		api.PUT("/bookable/:id/active", bookableH.ToggleActive)
		api.DELETE("/bookable/:id", bookableH.Delete)
		api.GET("/bookable/:id/bookings", bookableH.ListBookings)

		// WebSocket
		api.GET("/ws", ws.HandleWS)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 %s server starting on port %s", config.AppConfig.AppName, port)

	addr := "0.0.0.0:" + port
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
