package cli

import (
	"context"
	"fmt"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// boundFlags maps viper keys onto the flags overriding them
var boundFlags = map[string]*pflag.Flag{}

var rootCmd = &cobra.Command{
	Use:   "resumebuilder",
	Short: "Turn a resume document or a typed-in entry into a rendered, exportable resume",
	Long: `Resumebuilder sends a resume document (or manually entered details) to the
enhancement service, renders the structured result through one of three templates,
and exports it as PDF or DOCX through the document service.`,
	SilenceUsage:      true,
	PersistentPreRunE: applyFlagOverrides,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// bindFlag binds a flag to a viper config key
func bindFlag(key string, flag *pflag.Flag) {
	if err := config.Viper().BindPFlag(key, flag); err != nil {
		panic(err)
	}
	boundFlags[key] = flag
}

// applyFlagOverrides rebuilds the configuration when a flag bound to it was set
func applyFlagOverrides(cmd *cobra.Command, args []string) error {
	changed := false
	for _, flag := range boundFlags {
		if flag.Changed {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	cfg, err := config.Reload()
	if err != nil {
		return fmt.Errorf("failed to apply flag overrides: %w", err)
	}
	cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "", "Enhancement service base URL (overrides config)")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory receiving exported documents (overrides config)")
	bindFlag("service.baseURL", rootCmd.PersistentFlags().Lookup("base-url"))
	bindFlag("export.outputDir", rootCmd.PersistentFlags().Lookup("output-dir"))

	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(manualCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
