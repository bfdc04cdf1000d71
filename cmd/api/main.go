package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/kannada-chat/backend/internal/config"
	"github.com/zhouzirui/kannada-chat/backend/internal/handler"
	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
	"github.com/zhouzirui/kannada-chat/backend/internal/metrics"
	"github.com/zhouzirui/kannada-chat/backend/internal/service/ai"
	"github.com/zhouzirui/kannada-chat/backend/internal/service/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Log.Warnf("failed to load .env file: %v; continuing with system environment variables only", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)

	store, closeStore, err := session.Open(ctx, cfg.Session)
	if err != nil {
		logger.Log.Errorf("failed to open session store: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Log.Warnf("failed to close session store: %v", err)
		}
	}()
	logger.InfoWithFields("session store ready", logger.Fields{"backend": cfg.Session.Backend, "ttl": cfg.Session.TTL.String()})

	cookies := session.NewCookies(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.TTL)
	if cookies.Generated {
		logger.Log.Warn("SESSION_SECRET is not set; using a random key, sessions will not survive a restart")
	}

	chatService := chat.NewService(store)

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Log.Warnf("failed to initialize AI service: %v; /chat will answer 503", err)
			aiService = nil
		} else {
			logger.InfoWithFields("AI service initialized", logger.Fields{"provider": cfg.AI.Provider, "model": cfg.AI.Model})
		}
	} else {
		logger.Log.Warnf("%s credentials are not set; the chatbot will not answer until they are configured", cfg.AI.Provider)
	}

	router, err := handler.NewRouter(chatService, aiService, cookies, metrics.New())
	if err != nil {
		logger.Log.Errorf("failed to build router: %v", err)
		os.Exit(1)
	}

	if err := startServer(ctx, cfg.Server, router); err != nil {
		logger.Log.Errorf("server error: %v", err)
		os.Exit(1)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Log.Infof("chatbot backend listening on %s", serverCfg.Addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
