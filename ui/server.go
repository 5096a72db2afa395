package ui

import (
	"net/http"

	"gopitch/internal"
	"gopitch/internal/analysis"
	"gopitch/internal/auth"
	"gopitch/internal/errors"
	"gopitch/internal/session"
	"gopitch/internal/storage"
	"gopitch/ports"

	"github.com/gin-gonic/gin"
)

// Server is the REST + WebSocket surface
type Server struct {
	router *gin.Engine

	users    ports.UserRepository
	pitches  ports.PitchRepository
	auth     *auth.Service
	files    *storage.FileStore
	sessions *session.Manager

	transcriber ports.Transcriber
	analyzer    *analysis.Analyzer
	investor    ports.InvestorGenerator

	logger *internal.Logger
}

// Deps bundles the server's collaborators
type Deps struct {
	Users       ports.UserRepository
	Pitches     ports.PitchRepository
	Auth        *auth.Service
	Files       *storage.FileStore
	Sessions    *session.Manager
	Transcriber ports.Transcriber
	Analyzer    *analysis.Analyzer
	Investor    ports.InvestorGenerator
	Logger      *internal.Logger
}

// NewServer creates the gin server and registers all routes
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:      gin.Default(),
		users:       deps.Users,
		pitches:     deps.Pitches,
		auth:        deps.Auth,
		files:       deps.Files,
		sessions:    deps.Sessions,
		transcriber: deps.Transcriber,
		analyzer:    deps.Analyzer,
		investor:    deps.Investor,
		logger:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Pitch Coaching API"})
	})

	s.router.POST("/register", s.handleRegister)
	s.router.POST("/login", s.handleLogin)

	authed := s.router.Group("/")
	authed.Use(s.RequireAuth())
	{
		authed.POST("/pitches", s.handleCreatePitch)
		authed.GET("/pitches", s.handleListPitches)
		authed.GET("/pitches/export", s.handleExportPitches)
		authed.GET("/pitches/:id", s.handleGetPitch)
		authed.GET("/pitches/:id/report", s.handlePitchReport)
		authed.GET("/audio/:id", s.handleGetAudio)
	}

	// WebSocket authenticates via its first frame, not the header
	s.router.GET("/ws/session", s.handleSession)
}

// Router exposes the underlying engine (used by tests)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// respondError maps application error codes onto HTTP statuses
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case errors.CodeValidationError, errors.CodeDuplicateEmail:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeDuplicateSession:
		status = http.StatusConflict
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
