package cli

import (
	"context"

	"resumebuilder/internal/common"
	"resumebuilder/internal/formatters"
	"resumebuilder/internal/types"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [record-file]",
	Short: "Render a record through a template without contacting the service",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if renderConfig.OutputFormat == "" {
			renderConfig.OutputFormat = "html"
		}
		return resolveOutputFormat(&renderConfig)(cmd, args)
	},
	RunE: runRender,
}

var (
	renderConfig   common.CommandConfig
	renderTemplate int
)

func init() {
	addOutputFlags(renderCmd, &renderConfig, "format")
	renderCmd.Flags().IntVarP(&renderTemplate, "template", "t", 0, "Template id (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, renderTemplate)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.SetMode(types.ModeManual)

	render := func(ctx context.Context, record types.ResumeRecord) (formatters.Preview, error) {
		a.session.Form().LoadDraft(record)
		return previewOf(a.session), nil
	}

	return common.RunFileCommand(cmd.Context(), a.runner(cmd), renderConfig, args[0],
		(*common.FileProcessor).LoadRecord, render, nil)
}
