package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumebuilder/internal/client"
	"resumebuilder/internal/common"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/session"

	"github.com/spf13/cobra"
)

// app wires one session against the configured service
type app struct {
	cfg     *config.Config
	logger  *errors.Logger
	om      *observability.ObservabilityManager
	client  *client.Client
	session *session.Session
	exports *export.Controller
}

func newApp(cmd *cobra.Command, templateID int) (*app, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	c := client.New(cfg, logger,
		client.WithHTTPClient(&http.Client{Transport: om.Transport(http.DefaultTransport)}),
		client.WithMetrics(om.GetMetrics()),
	)
	s := session.New(c, logger,
		session.WithMetrics(om.GetMetrics()),
		session.WithTemplate(cfg.App.DefaultTemplate),
	)
	if templateID != 0 {
		if err := s.SelectTemplate(templateID); err != nil {
			_ = om.Shutdown(context.Background())
			return nil, err
		}
	}
	exports := export.NewController(c, export.NewFileSink(cfg.Export.OutputDir),
		cfg.Export.DocxFilename, om.GetMetrics(), logger)

	return &app{cfg: cfg, logger: logger, om: om, client: c, session: s, exports: exports}, nil
}

// Close flushes telemetry
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.om.Shutdown(ctx); err != nil {
		a.logger.LogError(err, "Failed to shutdown observability")
	}
}

func (a *app) runner(cmd *cobra.Command) common.Runner {
	return common.Runner{
		Logger:      a.logger,
		Out:         cmd.OutOrStdout(),
		MaxFileSize: a.cfg.App.MaxFileSize,
	}
}

// addOutputFlags registers --output and the named output format flag on cmd
func addOutputFlags(cmd *cobra.Command, cfg *common.CommandConfig, formatFlag string) {
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cfg.OutputFormat, formatFlag, "", "Output format: json, text, markdown or html")

	// Add completion for format flag
	_ = cmd.RegisterFlagCompletionFunc(formatFlag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputFormat is a PreRunE applying the default format and validating it
func resolveOutputFormat(cmdConfig *common.CommandConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		format, err := common.ResolveOutputFormat(cmdConfig.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		cmdConfig.OutputFormat = format
		return nil
	}
}
