package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/app/service"
	dexclient "solana_liquidity/internal/client"
	"solana_liquidity/internal/config"
	chainclient "solana_liquidity/internal/infrastructure/network/client"
	networkdefinition "solana_liquidity/internal/infrastructure/network/definition"
	"solana_liquidity/internal/infrastructure/restapi"
	"solana_liquidity/internal/infrastructure/toolserver"
	"solana_liquidity/internal/pkg/logger"
	"solana_liquidity/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "solana_liquidity",
		Short:        "Solana DEX pairs and liquidity tools over MCP stdio",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.PersistentFlags().String("config", defaultConfigPath, "config file path (optional unless set explicitly)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded into the environment")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().String("rpc-url", "", "Solana RPC URL, overrides "+config.EnvSolanaRPCURL)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the liquidity tools over stdio (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "Print the tool declarations as JSON",
		RunE:  runTools,
	})

	return root
}

// loadConfig resolves dotenv, the YAML file and flag overrides, in that order of precedence
// (flags win).
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")
	levelOverride, _ := flags.GetString("log-level")
	rpcOverride, _ := flags.GetString("rpc-url")

	if levelOverride != "" {
		config.SetLoaderLevel(levelOverride)
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path, !flags.Changed("config"))
	if err != nil {
		return nil, err
	}
	if levelOverride != "" {
		cfg.Logging.Level = levelOverride
	}
	if rpcOverride != "" {
		cfg.Solana.RPCURL = rpcOverride
	}
	return cfg, nil
}

func runTools(cmd *cobra.Command, _ []string) error {
	return writeTools(cmd.OutOrStdout(), toolserver.NewRegistry())
}

func writeTools(w io.Writer, registry *toolserver.Registry) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(
		map[string]any{"tools": registry.Tools()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tools: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	// Инициализация zap логгера по уровню из конфига. Пишет в stderr, stdout занят протоколом.
	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	// slog поверх zap через samber/slog-zap адаптер
	appLogger := logger.NewSlogAdapter(logger.NewSlog(zapLogger))
	appLogger.Info("Solana liquidity tool server starting", "rpc", cfg.Solana.RPCURL, "commitment", cfg.Solana.Commitment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Отдельный реестр метрик, без глобального DefaultRegisterer
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Клиенты: REST провайдеры DEX и Solana RPC
	defs := networkdefinition.NewDEXDefinitionProvider(appLogger, cfg.DEX)
	dexClient := dexclient.NewDEXClient(defs, zapLogger, dexclient.DEXClientOptions{
		Timeout:           cfg.HTTPClient.RequestTimeout(),
		UserAgent:         cfg.HTTPClient.UserAgent,
		CacheTTL:          time.Duration(cfg.ProviderCache.TTLSeconds) * time.Second,
		CacheCleanupEvery: time.Duration(cfg.ProviderCache.CleanupIntervalSeconds) * time.Second,
		Metrics:           m,
	})
	accounts := chainclient.NewSolanaClient(cfg.Solana.RPCURL, cfg.Solana.Commitment, zapLogger, m)
	liquidityService := service.NewLiquidityService(dexClient, accounts, appLogger)

	dispatcher := toolserver.NewDispatcher(toolserver.NewRegistry(), liquidityService, zapLogger, m)
	stdioServer, err := toolserver.NewServer(dispatcher, zapLogger)
	if err != nil {
		return err
	}

	// HTTP диагностика (healthz, metrics, tools) только если включена в конфиге
	if cfg.Diagnostics.Enabled {
		srv := startDiagnostics(cfg.Diagnostics.Listen, dispatcher, defs, registry, zapLogger, appLogger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("Diagnostics server shutdown failed", "error", err)
			}
		}()
	}

	appLogger.Info("Solana Pairs & Liquidity MCP server running on stdio")
	err = stdioServer.ServeStdio(ctx, os.Stdin, os.Stdout)
	// Отмена по сигналу считается штатной остановкой
	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Stdio server stopped with error", "error", err)
		return err
	}
	appLogger.Info("Solana liquidity tool server stopped")
	return nil
}

func startDiagnostics(
	addr string,
	dispatcher *toolserver.Dispatcher,
	defs port.DEXDefinitionProvider,
	gatherer prometheus.Gatherer,
	zapLogger *zap.Logger,
	appLogger port.Logger,
) *http.Server {
	// gin must never write to stdout.
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = os.Stderr
	gin.DefaultErrorWriter = os.Stderr

	router := restapi.SetupRouter(restapi.NewToolHandler(dispatcher, defs), gatherer, zapLogger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting diagnostics HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Diagnostics HTTP server failed", "error", err)
		}
	}()
	return srv
}
