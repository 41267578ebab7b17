package main

import (
	"log"
	"log/slog"

	"fridgetetris.app/internal/advisor"
	claudeadvisor "fridgetetris.app/internal/advisor/claude"
	ollamaadvisor "fridgetetris.app/internal/advisor/ollama"
	"fridgetetris.app/internal/config"
	"fridgetetris.app/internal/db"
	"fridgetetris.app/internal/logging"
	"fridgetetris.app/internal/photostore/local"
	"fridgetetris.app/internal/service"
	"fridgetetris.app/internal/store"
	"fridgetetris.app/internal/web"
	"fridgetetris.app/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if cfg.Share {
		logger.Warn("SHARE=true is not supported; serving on the bind address only")
	}

	prompt, err := advisor.NewPrompt(cfg.PromptFile)
	if err != nil {
		logger.Error("failed to load prompt", "error", err)
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	adv, err := newAdvisor(cfg, prompt, logger)
	if err != nil {
		logger.Error("failed to initialize backend", "error", err)
		return
	}

	organizer := service.NewOrganizer(adv, store.NewHistoryStore(database), photoStg, logger)
	server := web.NewServer(organizer, templates.FS, photoStg, logger)

	if err := server.ListenAndServe(cfg.ListenAddr()); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newAdvisor picks the configured transport. A claude selection without an
// API key falls back to ollama so the app still comes up.
func newAdvisor(cfg *config.Config, prompt *advisor.Prompt, logger *slog.Logger) (advisor.Advisor, error) {
	if cfg.Backend == "claude" {
		if cfg.ClaudeAPIKey != "" {
			logger.Info("using claude backend", "model", cfg.ClaudeModel)
			return claudeadvisor.NewClaudeAdvisor(cfg.ClaudeAPIKey, cfg.ClaudeModel, prompt), nil
		}
		logger.Warn("CLAUDE_API_KEY is empty; falling back to the ollama backend")
	}

	logger.Info("using ollama backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
	return ollamaadvisor.NewOllamaAdvisor(cfg.OllamaHost, cfg.OllamaModel, prompt)
}
