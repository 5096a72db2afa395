package ui

import (
	"net/http"

	"gopitch/internal/errors"
	"gopitch/models"

	"github.com/gin-gonic/gin"
)

// handleRegister creates a new user account
func (s *Server) handleRegister(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ValidationError(err.Error()))
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// handleLogin authenticates a user and issues a bearer token
func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ValidationError(err.Error()))
		return
	}

	user, err := s.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		// Unknown email and wrong password look the same to the caller
		respondError(c, errors.Unauthorized("invalid credentials"))
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}
