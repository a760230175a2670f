package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/application/usecase"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/diillson/campaign-metrics-dashboard-go/pkg/console"
	"github.com/diillson/campaign-metrics-dashboard-go/pkg/version"
	"github.com/spf13/cobra"
)

// DashboardFactory monta o caso de uso a partir da configuração resolvida.
// The returned cleanup releases the token store and flushes telemetry.
type DashboardFactory func(ctx context.Context, cfg *types.Config) (*usecase.DashboardUseCase, func(), error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	build      DashboardFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, build DashboardFactory) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		build:      build,
		version:    versionStr,
	}

	rootCmd := &cobra.Command{
		Use:           "metrics-dashboard",
		Short:         "Campaign metrics dashboard CLI",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				console.EnableDebug()
			}
		},
		RunE: app.runDashboard,
	}

	rootCmd.SetVersionTemplate(`{{printf "Campaign Metrics Dashboard version: %s\n" .Version}}`)

	// Flags globais
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the metrics API (default: http://localhost:8080)")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug messages")

	// Flags de consulta
	rootCmd.PersistentFlags().StringP("start-date", "s", "", "First day to include (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringP("end-date", "e", "", "Last day to include (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringP("search", "q", "", "Filter campaigns by name")
	rootCmd.PersistentFlags().StringP("sort-by", "b", "", "Sort column: date, campaign, impressions, clicks, conversions, conversion_rate, cost")
	rootCmd.PersistentFlags().StringP("sort-order", "o", "", "Sort direction: asc or desc (default: asc when --sort-by is set)")
	rootCmd.PersistentFlags().IntP("page", "P", 1, "Page to display")
	rootCmd.PersistentFlags().IntP("page-size", "l", 0, "Rows per page (default: 50)")

	// Flags de exportação
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	rootCmd.AddCommand(
		app.newLoginCommand(),
		app.newLogoutCommand(),
		app.newWhoAmICommand(),
		app.newInteractiveCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

func (app *CLIApp) newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE:  app.runLogin,
	}
	cmd.Flags().StringP("email", "u", "", "Account email (prompted when omitted)")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	return cmd
}

func (app *CLIApp) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withDashboard(cmd, func(ctx context.Context, dash *usecase.DashboardUseCase, _ *types.CLIArgs) error {
				dash.RunLogout()
				return nil
			})
		},
	}
}

func (app *CLIApp) newWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withDashboard(cmd, func(ctx context.Context, dash *usecase.DashboardUseCase, _ *types.CLIArgs) error {
				return dash.RunWhoAmI(ctx)
			})
		},
	}
}

func (app *CLIApp) newInteractiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Browse metrics with filter, sort and page commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayWelcomeBanner(cmd.OutOrStdout())
			return app.withDashboard(cmd, func(ctx context.Context, dash *usecase.DashboardUseCase, args *types.CLIArgs) error {
				return dash.RunInteractive(ctx, cmd.InOrStdin(), args)
			})
		},
	}
}

// runDashboard é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runDashboard(cmd *cobra.Command, _ []string) error {
	displayWelcomeBanner(cmd.OutOrStdout())

	updates := checkForUpdates(cmd.Context(), app.version)

	err := app.withDashboard(cmd, func(ctx context.Context, dash *usecase.DashboardUseCase, args *types.CLIArgs) error {
		return dash.RunDashboard(ctx, args)
	})

	select {
	case latest := <-updates:
		fmt.Fprintln(cmd.OutOrStdout(), console.Faint("A newer version is available: ")+console.BrightGreen(latest)+console.Faint(fmt.Sprintf(" (current %s)", app.version)))
	default:
	}
	return err
}

func (app *CLIApp) runLogin(cmd *cobra.Command, _ []string) error {
	return app.withDashboard(cmd, func(ctx context.Context, dash *usecase.DashboardUseCase, _ *types.CLIArgs) error {
		email, password, err := readCredentials(cmd)
		if err != nil {
			return err
		}
		return dash.RunLogin(ctx, email, password)
	})
}

// withDashboard resolve a configuração, monta o caso de uso e executa fn.
func (app *CLIApp) withDashboard(cmd *cobra.Command, fn func(context.Context, *usecase.DashboardUseCase, *types.CLIArgs) error) error {
	cfg, args, err := app.resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dash, cleanup, err := app.build(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	err = fn(ctx, dash, args)
	if errors.Is(err, types.ErrNotLoggedIn) || errors.Is(err, types.ErrSessionExpired) {
		return fmt.Errorf("%w: run '%s login' to sign in", err, cmd.Root().Name())
	}
	return err
}

// resolveConfig layers defaults, .env, the config file, the environment and
// command-line flags, in increasing order of precedence.
func (app *CLIApp) resolveConfig(cmd *cobra.Command) (*types.Config, *types.CLIArgs, error) {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return nil, nil, err
	}

	config.LoadDotEnv()

	cfg := config.Default()
	if args.ConfigFile != "" {
		if cfg, err = app.configRepo.LoadConfigFile(args.ConfigFile); err != nil {
			return nil, nil, err
		}
	}
	config.ApplyEnv(cfg)

	if args.APIURL != "" {
		cfg.APIURL = args.APIURL
	}
	if args.PageSize > 0 {
		cfg.PageSize = args.PageSize
	}
	if cmd.Flags().Changed("report-type") || len(cfg.ReportType) == 0 {
		cfg.ReportType = args.ReportType
	}
	args.ReportType = cfg.ReportType

	dir := args.Dir
	if dir == "" {
		dir = cfg.Dir
	}
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, nil, err
		}
	} else if dir, err = filepath.Abs(dir); err != nil {
		return nil, nil, err
	}
	args.Dir = dir

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, args, nil
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	apiURL, _ := flags.GetString("api-url")
	debug, _ := flags.GetBool("debug")
	startDate, _ := flags.GetString("start-date")
	endDate, _ := flags.GetString("end-date")
	search, _ := flags.GetString("search")
	sortBy, _ := flags.GetString("sort-by")
	sortOrder, _ := flags.GetString("sort-order")
	page, _ := flags.GetInt("page")
	pageSize, _ := flags.GetInt("page-size")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")

	if page < 1 {
		return nil, fmt.Errorf("%w: --page must be at least 1", types.ErrInvalidPage)
	}
	if pageSize < 0 {
		return nil, fmt.Errorf("%w: --page-size must be positive", types.ErrInvalidPage)
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		APIURL:     apiURL,
		Debug:      debug,
		StartDate:  startDate,
		EndDate:    endDate,
		Search:     search,
		SortBy:     sortBy,
		SortOrder:  sortOrder,
		Page:       page,
		PageSize:   pageSize,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
	}, nil
}

// checkForUpdates consulta a última release em segundo plano.
// The channel receives a version only when it is newer than current.
func checkForUpdates(ctx context.Context, current string) <-chan string {
	out := make(chan string, 1)
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if latest, ok := version.LatestRelease(ctx, current); ok {
			out <- latest
		}
	}()
	return out
}
