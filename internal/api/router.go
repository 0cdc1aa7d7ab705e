// Package api serves the chat service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumechat/internal/domain"
	"resumechat/internal/logger"
)

// Responder answers chat requests. It is implemented by service.ChatService.
type Responder interface {
	Respond(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
}

// NewRouter builds the gin engine with the chat, health and metrics routes.
// metrics may be nil, in which case /metrics is not registered.
func NewRouter(ctx context.Context, chat Responder, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), withLogger(logger.FromContext(ctx)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	r.Group("/api").POST("/chat", chatHandler(chat))
	return r
}

// withLogger attaches log to each request context and logs the outcome.
func withLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))
		c.Next()
		log.Debug("HTTP request", "method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status())
	}
}

func chatHandler(chat Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		resp, err := chat.Respond(c.Request.Context(), req)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("Chat request failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
