// Package web is the HTTP surface: routing, sessions, and the mapping
// from service errors to response codes.
package web

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/openfolio/brokerd/auth"
	"github.com/openfolio/brokerd/broker"
)

// Server owns the router and the services behind it.
type Server struct {
	R        *gin.Engine
	broker   *broker.Service
	auth     *auth.Service
	sessions *sessions.CookieStore
	log      *zap.Logger
}

// NewServer wires the router, session store, and middleware.
func NewServer(b *broker.Service, a *auth.Service, sessionSecret string, log *zap.Logger) *Server {
	g := gin.New()

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteStrictMode

	s := &Server{
		R:        g,
		broker:   b,
		auth:     a,
		sessions: store,
		log:      log,
	}

	// Request logging with a correlation id.
	g.Use(func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set(ctxKeyRequestID, reqID)
		c.Next()
		log.Info("http_request",
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})
	g.Use(gin.Recovery())

	g.GET("/healthz", s.health)

	g.GET("/register", s.registerForm)
	g.POST("/register", s.register)
	g.GET("/login", s.loginForm)
	g.POST("/login", s.login)
	g.GET("/logout", s.logout)

	authed := g.Group("/", s.requireUser)
	authed.GET("/", s.index)
	authed.GET("/quote", s.quoteForm)
	authed.POST("/quote", s.getQuote)
	authed.GET("/buy", s.buyForm)
	authed.POST("/buy", s.buy)
	authed.GET("/sell", s.sellForm)
	authed.POST("/sell", s.sell)
	authed.GET("/history", s.history)

	return s
}
