package web

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
)

const (
	sessionName     = "brokerd_session"
	sessionUserID   = "user_id"
	sessionUsername = "username"

	ctxKeyUserID    = "auth_user_id"
	ctxKeyRequestID = "request_id"
)

// requireUser resolves the session to a user id and aborts anonymous
// requests. Handlers behind it read the id with currentUser.
func (s *Server) requireUser(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request, sessionName)
	if err != nil {
		// A tampered or stale cookie is treated as anonymous.
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
			Code: "unauthenticated", Message: "log in first",
		})
		return
	}

	id, ok := sess.Values[sessionUserID].(int64)
	if !ok || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
			Code: "unauthenticated", Message: "log in first",
		})
		return
	}

	c.Set(ctxKeyUserID, id)
	c.Next()
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(ctxKeyUserID)
}

func (s *Server) saveSession(c *gin.Context, userID int64, username string) error {
	sess, _ := s.sessions.New(c.Request, sessionName)
	sess.Values[sessionUserID] = userID
	sess.Values[sessionUsername] = username
	return sess.Save(c.Request, c.Writer)
}

func (s *Server) clearSession(c *gin.Context) {
	sess, _ := s.sessions.Get(c.Request, sessionName)
	sess.Options.MaxAge = -1
	_ = sess.Save(c.Request, c.Writer)
}
