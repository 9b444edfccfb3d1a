package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"donationagent/internal/adapter/repo"
	"donationagent/internal/agent"
	"donationagent/internal/cause"
	"donationagent/internal/http/handlers"
	"donationagent/internal/http/httpapi"
	"donationagent/internal/infra"
	"donationagent/internal/infra/geoip"
	"donationagent/internal/pipeline"
	"donationagent/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	registry := cause.Default()
	donations := repo.NewDonationRepository(dbpool)

	resolver := agent.NewResolver(agent.Options{
		APIKey:   cfg.DeepSeekAPIKey,
		Model:    cfg.DeepSeekModel,
		BaseURL:  cfg.DeepSeekBaseURL,
		Timeout:  cfg.AgentTimeout,
		Registry: registry,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("agent fell back to deterministic parse")
		},
	})
	if cfg.DeepSeekAPIKey == "" {
		logger.Warn().Msg("DEEPSEEK_API_KEY not set, agent runs deterministic-only")
	}

	var (
		balances pipeline.BalanceSource
		executor pipeline.TransferExecutor
	)
	if cfg.WalletServiceURL != "" {
		walletClient, err := wallet.NewClient(wallet.Options{
			BaseURL:   cfg.WalletServiceURL,
			AuthToken: cfg.WalletServiceToken,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build wallet client")
		}
		balances = walletClient
		executor = walletClient
	}

	pipe := pipeline.New(pipeline.Options{
		Registry:   registry,
		Resolver:   resolver,
		Balances:   balances,
		Executor:   executor,
		Store:      donations,
		Logger:     logger,
		DevMode:    pipeline.DevDonationMode(cfg.DevDonationMode),
		DevPercent: decimal.NewFromFloat(cfg.DevDonationPercent),
	})

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	app := &handlers.App{
		Pipeline:      pipe,
		Resolver:      resolver,
		Donations:     donations,
		Registry:      registry,
		GeoIP:         geo,
		Logger:        logger,
		SubmitEnabled: executor != nil,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
