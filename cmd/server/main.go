package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/DeepikaKgithub/PharmaGEN/internal/config"
	"github.com/DeepikaKgithub/PharmaGEN/internal/core"
	"github.com/DeepikaKgithub/PharmaGEN/internal/db"
	httpserver "github.com/DeepikaKgithub/PharmaGEN/internal/http"
	"github.com/DeepikaKgithub/PharmaGEN/internal/llm"
	"github.com/DeepikaKgithub/PharmaGEN/internal/observability"
	"github.com/DeepikaKgithub/PharmaGEN/internal/session"
	"github.com/DeepikaKgithub/PharmaGEN/internal/translate"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	client := buildCompletionClient(ctx, cfg, logger)
	translator := translate.New(client)
	sequencer := core.NewSequencer(client, translator)

	store, err := buildSessionStore(cfg)
	if err != nil {
		logger.Error("session store init failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	var archive core.Archive
	var repo *db.Repository
	var events *db.Listener
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("open archive database", "err", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = dbConn.PingContext(pingCtx)
		cancel()
		if err != nil {
			logger.Error("ping archive database", "err", err)
			os.Exit(1)
		}
		repo = db.NewRepository(dbConn)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("apply archive schema", "err", err)
			os.Exit(1)
		}
		repo.Notifier = db.NewNotifier(dbConn, cfg.NotifyChannel)
		archive = repo

		events, err = db.NewListener(cfg.DatabaseURL, cfg.NotifyChannel)
		if err != nil {
			// The archive still works without live events.
			logger.Warn("archive event listener unavailable", "err", err)
			events = nil
		} else {
			defer events.Close()
		}
		logger.Info("archive enabled", "channel", cfg.NotifyChannel)
	}

	svc := core.NewService(store, sequencer, archive)
	srv := httpserver.NewServer(svc, repo, events, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// No write deadline: a turn blocks on several sequential model
		// calls, and /api/archive/events streams indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	logger.Info("server listening",
		"addr", server.Addr,
		"provider", cfg.LLMProvider,
		"session_store", cfg.SessionStore,
	)
	waitForShutdown(server, logger)
}

// buildCompletionClient selects the model provider. A missing credential
// or failed init never aborts startup: the unavailable client is installed
// instead and every consumer degrades to descriptive error replies.
func buildCompletionClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) llm.Client {
	switch cfg.LLMProvider {
	case config.ProviderMock:
		logger.Info("using mock completion client")
		return llm.NewMockClient()

	case config.ProviderOpenAI:
		key := resolveAPIKey(cfg.OpenAIAPIKey, "OPENAI_API_KEY", "OpenAI")
		if key == "" {
			logger.Warn("no OpenAI API key; completions will degrade to error replies")
			return llm.Unavailable{Reason: errors.New("OPENAI_API_KEY is not set")}
		}
		return llm.NewOpenAIClient(key, cfg.OpenAIModel)

	case config.ProviderGemini:
		key := resolveAPIKey(cfg.GeminiAPIKey, "GEMINI_API_KEY", "Gemini")
		if key == "" {
			logger.Warn("no Gemini API key; completions will degrade to error replies")
			return llm.Unavailable{Reason: errors.New("GEMINI_API_KEY is not set")}
		}
		client, err := llm.NewGeminiClient(ctx, key, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini init failed; completions will degrade to error replies", "err", err)
			return llm.Unavailable{Reason: err}
		}
		return client

	default:
		logger.Warn("unknown LLM_PROVIDER; completions disabled", "provider", cfg.LLMProvider)
		return llm.Unavailable{Reason: fmt.Errorf("unknown provider %q", cfg.LLMProvider)}
	}
}

// resolveAPIKey falls back to an interactive prompt when the environment
// does not carry the credential. A non-interactive stdin yields "".
func resolveAPIKey(fromEnv, envName, providerName string) string {
	if fromEnv != "" {
		return fromEnv
	}
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("No %s API key found in environment variables.\n", providerName)
	fmt.Printf("You can set it permanently with: export %s='your-key-here'\n", envName)
	fmt.Printf("Please enter your %s API key: ", providerName)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	fmt.Println(strings.Repeat("=", 50))
	return strings.TrimSpace(line)
}

func buildSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.SessionStore {
	case "", "memory":
		return session.NewStore(session.StoreTypeMemory, session.WithTTL(cfg.SessionTTL))
	case "redis":
		return session.NewStore(session.StoreTypeRedis,
			session.WithRedisAddr(cfg.RedisAddr),
			session.WithTTL(cfg.SessionTTL),
		)
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

func waitForShutdown(server *http.Server, logger *slog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
