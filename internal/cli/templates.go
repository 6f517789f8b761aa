package cli

import (
	"resumebuilder/internal/common"
	"resumebuilder/internal/templates"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Short:   "List the available templates",
	Args:    cobra.NoArgs,
	PreRunE: resolveOutputFormat(&templatesConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLoggerFromContext(cmd.Context())
		return common.NewOutputHandler(logger, cmd.OutOrStdout()).HandleOutput(templates.All(), templatesConfig)
	},
}

var templatesConfig common.CommandConfig

func init() {
	addOutputFlags(templatesCmd, &templatesConfig, "format")
}
