// Package sandbox is a local development server that mirrors the
// AgentFlow platform API: JWT auth, CRUD for skills, workflows and
// knowledge bases, and SSE streaming endpoints framed exactly like the
// real backend. It serves scripted fixtures by default and can relay a
// real model when an OpenAI key is configured.
//
// It exists so the CLI and integration tests have a live HTTP endpoint;
// it is not the platform backend.
package sandbox

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
)

// Config tunes the sandbox server.
type Config struct {
	// JWTSecret signs issued tokens. A fixed default keeps dev tokens
	// stable across restarts.
	JWTSecret string

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	// OpenAIKey, when set, switches streaming endpoints from scripted
	// fixtures to a live model relay.
	OpenAIKey string

	// OpenAIModel selects the relay model.
	OpenAIModel string
}

func (c Config) withDefaults() Config {
	if c.JWTSecret == "" {
		c.JWTSecret = "agentflow-sandbox-secret"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = "gpt-4o-mini"
	}
	return c
}

// Server is a running sandbox instance.
type Server struct {
	cfg   Config
	app   *fiber.App
	state *state
	relay tokenStreamer
	log   *logx.Logger
}

// New builds the sandbox app with all routes registered.
func New(cfg Config) *Server {
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:   cfg,
		state: newState(),
		log:   logx.WithField("component", "sandbox"),
	}
	if cfg.OpenAIKey != "" {
		s.relay = newOpenAIStreamer(cfg.OpenAIKey, cfg.OpenAIModel)
		s.log.WithField("model", cfg.OpenAIModel).Info("live model relay enabled")
	} else {
		s.relay = scriptedStreamer{}
	}

	app := fiber.New(fiber.Config{
		AppName:               "AgentFlow Sandbox",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "agentflow-sandbox"})
	})

	api := app.Group("/api/v1")

	api.Post("/auth/login", s.handleLogin)

	authed := api.Group("", s.requireAuth)
	authed.Get("/auth/me", s.handleMe)
	authed.Post("/auth/logout", s.handleLogout)

	authed.Post("/chat/completions", s.handleChatStream)
	authed.Delete("/chat/sessions/:id", s.handleDeleteSession)

	authed.Get("/skills", s.handleListSkills)
	authed.Get("/skills/:name", s.handleGetSkill)
	authed.Post("/skills", s.handleCreateSkill)
	authed.Put("/skills/:name", s.handleUpdateSkill)
	authed.Delete("/skills/:name", s.handleDeleteSkill)
	authed.Post("/skills/:name/run", s.handleSkillRun)

	authed.Get("/workflows", s.handleListWorkflows)
	authed.Get("/workflows/:id", s.handleGetWorkflow)
	authed.Post("/workflows", s.handleCreateWorkflow)
	authed.Put("/workflows/:id", s.handleUpdateWorkflow)
	authed.Delete("/workflows/:id", s.handleDeleteWorkflow)
	authed.Post("/workflows/:id/execute", s.handleWorkflowExecute)

	authed.Get("/knowledge", s.handleListKBs)
	authed.Post("/knowledge", s.handleCreateKB)
	authed.Delete("/knowledge/:id", s.handleDeleteKB)
	authed.Get("/knowledge/:id/documents", s.handleListDocuments)
	authed.Delete("/knowledge/:id/documents/:docId", s.handleDeleteDocument)
	authed.Post("/knowledge/:id/upload", s.handleUpload)
	authed.Get("/knowledge/:id/search", s.handleSearch)

	admin := authed.Group("/admin", s.requireAdmin)
	admin.Get("/users", s.handleListUsers)
	admin.Post("/users/:id/disable", s.handleDisableUser)
	admin.Post("/users/:id/enable", s.handleEnableUser)
	admin.Delete("/users/:id", s.handleDeleteUser)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown or a listener error.
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("sandbox listening")
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders errx errors with their registered status and shape,
// and everything else as a FastAPI-style detail payload so the client's
// detail extraction works against the sandbox too.
func errorHandler(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if errors.As(err, &e) {
		return c.Status(e.HTTPStatus).JSON(fiber.Map{"detail": e.Message, "code": e.Code})
	}
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
}
