package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/storage"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/telemetry"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/application/usecase"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/diillson/campaign-metrics-dashboard-go/pkg/console"
	"github.com/diillson/campaign-metrics-dashboard-go/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), buildDashboard)

	// Executa o aplicativo
	if err := app.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", console.BoldRed("Error:"), err)
		stop()
		os.Exit(1)
	}
}

// buildDashboard inicializa os repositórios e os casos de uso.
func buildDashboard(ctx context.Context, cfg *types.Config) (*usecase.DashboardUseCase, func(), error) {
	consoleImpl := console.NewConsole()

	shutdown := telemetry.Setup(ctx, "metrics-dashboard", cfg.Telemetry, consoleImpl)

	tokenRepo, err := storage.NewTokenRepository(cfg.TokenStore)
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}

	apiRepo := api.NewAPIRepository(cfg.APIURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	exportRepo := export.NewExportRepository()

	sessionUseCase := usecase.NewSessionUseCase(apiRepo, tokenRepo, consoleImpl)
	metricsUseCase := usecase.NewMetricsUseCase(apiRepo, sessionUseCase, consoleImpl, cfg.PageSize)
	dashboardUseCase := usecase.NewDashboardUseCase(
		sessionUseCase,
		metricsUseCase,
		exportRepo,
		consoleImpl,
		usecase.NewFormatter(cfg.Locale, cfg.Currency),
	)

	cleanup := func() {
		if c, ok := tokenRepo.(io.Closer); ok {
			if err := c.Close(); err != nil {
				consoleImpl.LogDebug("closing token store: %s", err)
			}
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			consoleImpl.LogDebug("telemetry shutdown: %s", err)
		}
	}
	return dashboardUseCase, cleanup, nil
}
