package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"habitd/internal/auth"
)

const userIDKey = "userID"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// requireAuth resolves the bearer token to a user id or aborts with 401.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no token, authorization denied"})
		return
	}

	userID, err := s.auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		if auth.IsExpired(err) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token expired"})
			return
		}
		if statusFor(err) == http.StatusUnauthorized {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token is not valid"})
			return
		}
		s.fail(c, err)
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

// currentUser returns the id stored by requireAuth.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// handleRegister creates an account and returns its first token.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.Register(c.Request.Context(), auth.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, session)
}

// handleLogin exchanges credentials for a token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, session)
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(c *gin.Context) {
	user, err := s.auth.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}
