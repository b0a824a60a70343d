package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xGingi/SuperKagi-sub001/internal/catalog"
	"github.com/0xGingi/SuperKagi-sub001/internal/service"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	chatService *service.ChatService,
	imageService *service.ImageService,
	catalogClient *catalog.Client,
	cookieSecure bool,
	logger *slog.Logger,
) http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := &API{
		auth:         authService,
		users:        userService,
		chats:        chatService,
		images:       imageService,
		catalog:      catalogClient,
		cookieSecure: cookieSecure,
		logger:       logger,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api")
	api.registerRoutes(v1)

	return r
}
