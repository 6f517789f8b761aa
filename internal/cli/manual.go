package cli

import (
	"context"

	"resumebuilder/internal/common"
	"resumebuilder/internal/formatters"
	"resumebuilder/internal/types"

	"github.com/spf13/cobra"
)

var manualCmd = &cobra.Command{
	Use:   "manual [draft-file]",
	Short: "Submit a manually entered resume for enhancement",
	Long: `Load a draft record from a YAML or JSON file, submit it to the manual-entry
endpoint, and print the preview. The preview keeps showing the draft, as the form does;
the text panes and ATS score reflect the service's reply.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveOutputFormat(&manualConfig),
	RunE:    runManual,
}

var (
	manualConfig   common.CommandConfig
	manualTemplate int
)

func init() {
	addOutputFlags(manualCmd, &manualConfig, "format")
	manualCmd.Flags().IntVarP(&manualTemplate, "template", "t", 0, "Template id (default from config)")
}

func runManual(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, manualTemplate)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.SetMode(types.ModeManual)

	logDetails := func(draft types.ResumeRecord, cfg common.CommandConfig) {
		a.logger.Info("Starting manual submission",
			"skills", len(draft.Skills),
			"experience", len(draft.Experience),
			"output_format", cfg.OutputFormat)
	}

	submit := func(ctx context.Context, draft types.ResumeRecord) (formatters.Preview, error) {
		a.session.Form().LoadDraft(draft)
		if _, err := a.session.SubmitManual(ctx); err != nil {
			return formatters.Preview{}, err
		}
		return previewOf(a.session), nil
	}

	if err := common.RunFileCommand(cmd.Context(), a.runner(cmd), manualConfig, args[0],
		(*common.FileProcessor).LoadRecord, submit, logDetails); err != nil {
		return err
	}
	a.logger.Info("Manual submission completed successfully")
	return nil
}
