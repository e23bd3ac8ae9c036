package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "kodechat/internal/app"
	"kodechat/internal/bootstrap"
	"kodechat/internal/cache"
	"kodechat/internal/platform/rabbitmq"
	"kodechat/internal/repository"
	"kodechat/internal/transport/http/handler"
	"kodechat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	roomRepo := repository.NewRoomRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	publisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.MessageEventQueue)
	roomCache := cache.NewRoomCache(app.Redis, time.Duration(app.Config.Cache.RoomHistoryTTLSeconds)*time.Second)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.SessionSecret,
		time.Duration(app.Config.Auth.SessionTTLMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(userRepo, roomRepo, messageRepo, publisher, roomCache)

	authHandler := handler.NewAuthHandler(
		authService,
		app.Config.Auth.CallbackSecret,
		app.Config.Auth.CookieName,
		app.Config.App.Env == "dev",
	)
	chatHandler := handler.NewChatHandler(chatService)

	// Page mode: unauthenticated visitors get redirected to /login with a
	// callback, unlike the API routes which answer 401 JSON.
	router.GET("/chat/:roomId",
		middleware.SessionPage(app.Config.Auth.SessionSecret, app.Config.Auth.CookieName),
		func(c *gin.Context) { c.File("web/chat.html") },
	)

	authGroup := router.Group("/auth")
	authGroup.POST("/session", authHandler.EstablishSession)
	authGroup.POST("/signout", authHandler.SignOut)

	// The rate gate runs before session resolution and body parsing; rejected
	// requests never reach the database.
	api := router.Group("/api")
	api.Use(middleware.RateLimit(app.Limiter))

	chatGroup := api.Group("/chat")
	chatGroup.Use(middleware.SessionAPI(app.Config.Auth.SessionSecret, app.Config.Auth.CookieName))
	chatGroup.GET("/:roomId", chatHandler.ListMessages)
	chatGroup.POST("/:roomId", chatHandler.PostMessage)

	return router
}
