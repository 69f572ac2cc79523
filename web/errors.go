package web

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openfolio/brokerd/auth"
	"github.com/openfolio/brokerd/broker"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// renderError maps service errors onto responses. Everything the user
// can correct (bad input, business-rule violations, auth failures)
// gets a 403 with a message; anything else is a generic 500 with the
// detail kept in the log.
func (s *Server) renderError(c *gin.Context, err error) {
	for _, m := range []struct {
		sentinel error
		code     string
	}{
		{broker.ErrValidation, "validation_error"},
		{auth.ErrValidation, "validation_error"},
		{broker.ErrSymbolNotFound, "symbol_not_found"},
		{broker.ErrInsufficientFunds, "insufficient_funds"},
		{broker.ErrInsufficientShares, "insufficient_shares"},
		{broker.ErrNoHolding, "no_holding"},
		{auth.ErrDuplicateUser, "duplicate_user"},
		{auth.ErrInvalidCredentials, "invalid_credentials"},
	} {
		if errors.Is(err, m.sentinel) {
			c.JSON(http.StatusForbidden, apiError{Code: m.code, Message: err.Error()})
			return
		}
	}

	s.log.Error("internal_error",
		zap.String("request_id", c.GetString(ctxKeyRequestID)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, apiError{
		Code: "internal_server_error", Message: "internal server error",
	})
}
