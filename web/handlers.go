package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/openfolio/brokerd/broker"
	"github.com/openfolio/brokerd/ledger"
)

type tradeFunc func(ctx context.Context, userID int64, symbol string, shares int64) (ledger.HistoryEntry, error)

type orderRequest struct {
	Symbol string `form:"symbol" json:"symbol"`
	Shares string `form:"shares" json:"shares"`
}

type credentialsRequest struct {
	Username     string `form:"username" json:"username"`
	Password     string `form:"password" json:"password"`
	Confirmation string `form:"confirmation" json:"confirmation"`
}

// parseShares enforces the form contract: a positive base-10 integer,
// nothing else. "1.5", "-2", and "abc" are all validation errors, not
// parse-to-zero surprises.
func parseShares(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("shares is required: %w", broker.ErrValidation)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("shares must be a positive integer: %w", broker.ErrValidation)
	}
	return n, nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formResponse stands in for the original GET form pages; presentation
// is out of scope, so a GET just describes the fields POST expects.
func formResponse(c *gin.Context, action string, fields ...string) {
	c.JSON(http.StatusOK, gin.H{"action": action, "fields": fields})
}

func (s *Server) registerForm(c *gin.Context) {
	formResponse(c, "/register", "username", "password", "confirmation")
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, fmt.Errorf("%s: %w", err, broker.ErrValidation))
		return
	}

	u, err := s.auth.Register(c.Request.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"cash":     u.Cash,
	})
}

func (s *Server) loginForm(c *gin.Context) {
	formResponse(c, "/login", "username", "password")
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, fmt.Errorf("%s: %w", err, broker.ErrValidation))
		return
	}

	u, err := s.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	if err := s.saveSession(c, u.ID, u.Username); err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username})
}

func (s *Server) logout(c *gin.Context) {
	s.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) index(c *gin.Context) {
	p, err := s.broker.Portfolio(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) quoteForm(c *gin.Context) {
	formResponse(c, "/quote", "symbol")
}

func (s *Server) getQuote(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, fmt.Errorf("%s: %w", err, broker.ErrValidation))
		return
	}

	q, err := s.broker.Quote(c.Request.Context(), req.Symbol)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol": q.Symbol,
		"name":   q.Name,
		"price":  q.Price,
	})
}

func (s *Server) buyForm(c *gin.Context) {
	formResponse(c, "/buy", "symbol", "shares")
}

func (s *Server) buy(c *gin.Context) {
	s.trade(c, s.broker.Buy)
}

func (s *Server) sellForm(c *gin.Context) {
	formResponse(c, "/sell", "symbol", "shares")
}

func (s *Server) sell(c *gin.Context) {
	s.trade(c, s.broker.Sell)
}

func (s *Server) trade(c *gin.Context, apply tradeFunc) {
	var req orderRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, fmt.Errorf("%s: %w", err, broker.ErrValidation))
		return
	}

	shares, err := parseShares(req.Shares)
	if err != nil {
		s.renderError(c, err)
		return
	}

	entry, err := apply(c.Request.Context(), currentUser(c), req.Symbol, shares)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) history(c *gin.Context) {
	entries, err := s.broker.History(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if entries == nil {
		entries = []ledger.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"rows": entries})
}
