package container

import (
	"context"
	"fmt"

	"gopitch/adapters/emotion"
	"gopitch/adapters/llm"
	"gopitch/adapters/postgres"
	"gopitch/adapters/stt"
	"gopitch/internal"
	"gopitch/internal/analysis"
	"gopitch/internal/auth"
	"gopitch/internal/config"
	"gopitch/internal/session"
	"gopitch/internal/storage"
	"gopitch/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	UserRepo  ports.UserRepository
	PitchRepo ports.PitchRepository

	// Services
	Auth  *auth.Service
	Files *storage.FileStore

	// Inference adapters
	Transcriber ports.Transcriber
	Emotions    ports.EmotionClassifier
	Analyzer    *analysis.Analyzer
	Investor    ports.InvestorGenerator

	// Real-time session registry
	Sessions *session.Manager
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		Logger: internal.NewDefaultLogger(),
	}, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.DB = db

	c.UserRepo = postgres.NewUserRepository(db)
	c.PitchRepo = postgres.NewPitchRepository(db)

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.initInference()

	c.Sessions = session.NewManager(c.Transcriber, c.Analyzer, c.Investor, c.Config.Session, c.Logger)
	c.Logger.Info("container initialized with database connection")
	return nil
}

func (c *Container) initServices() error {
	c.Auth = auth.NewService(c.Config.Auth.JWTSecret, c.Config.Auth.TokenTTL, c.Config.Auth.BcryptCost)

	files, err := storage.NewFileStore(c.Config.Storage.UploadDir)
	if err != nil {
		return err
	}
	c.Files = files
	return nil
}

// initInference wires the model adapters. Missing model endpoints fall
// back to local substitutes so the API stays usable in development.
func (c *Container) initInference() {
	models := c.Config.Models

	if models.WhisperURL != "" {
		c.Transcriber = stt.NewWhisperTranscriber(models.WhisperURL, models.LLMTimeout, models.MaxTranscriptions)
	} else {
		c.Logger.Warn("WHISPER_URL not set: transcription disabled, uploads degrade to placeholder analysis")
		c.Transcriber = &stt.MockTranscriber{Skip: "transcription not configured"}
	}

	if models.EmotionURL != "" {
		c.Emotions = emotion.NewHTTPClassifier(models.EmotionURL, models.LLMTimeout)
	} else {
		c.Logger.Info("EMOTION_URL not set: using lexicon classifier")
		c.Emotions = emotion.NewHeuristicClassifier()
	}

	c.Analyzer = analysis.NewAnalyzer(c.Emotions, c.Logger)

	var llmClient ports.LLMClient
	if models.OpenAIKey != "" {
		client, err := llm.NewOpenAIClient(models.OpenAIKey, "", models.LLMTimeout)
		if err != nil {
			c.Logger.Warn("LLM client init failed, falling back to templates: %v", err)
		} else {
			llmClient = client
		}
	} else {
		c.Logger.Info("OPENAI_API_KEY not set: investor feedback uses persona templates")
	}
	c.Investor = llm.NewInvestorAdapter(llmClient, models.OpenAIModel, c.Logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
