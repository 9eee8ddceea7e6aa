package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messagely/internal/service"
)

// IdentityResolver maps a bearer token to a username. auth.Guard implements it.
type IdentityResolver interface {
	ResolveIdentity(token string) (string, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	messages service.MessageService
	users    service.UserService
	guard    IdentityResolver
	logger   *logrus.Logger
}

func NewHandler(authSvc service.AuthService, messages service.MessageService, users service.UserService, guard IdentityResolver, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:     authSvc,
		messages: messages,
		users:    users,
		guard:    guard,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	messages := router.Group("/messages", h.requireIdentity())
	{
		messages.POST("", h.sendMessage)
		messages.GET("/:id", h.getMessage)
		messages.POST("/:id/read", h.markRead)
	}

	users := router.Group("/users", h.requireIdentity())
	{
		users.GET("", h.listUsers)
		users.GET("/:username", h.getUser)
		users.GET("/:username/to", h.messagesTo)
		users.GET("/:username/from", h.messagesFrom)
	}
}
