package cli

import (
	"context"

	"resumebuilder/internal/common"
	"resumebuilder/internal/formatters"
	"resumebuilder/internal/session"
	"resumebuilder/internal/upload"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume-file]",
	Short: "Upload a resume document for enhancement and preview the result",
	Long: `Send a resume document to the enhancement service, ingest the enhanced text,
structured record and ATS score it returns, and print the preview rendered with
the selected template. Use --compare to show the original and enhanced text side by side.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveOutputFormat(&enhanceConfig),
	RunE:    runEnhance,
}

var (
	enhanceConfig   common.CommandConfig
	enhanceTemplate int
	enhanceCompare  bool
)

func init() {
	addOutputFlags(enhanceCmd, &enhanceConfig, "format")
	enhanceCmd.Flags().IntVarP(&enhanceTemplate, "template", "t", 0, "Template id (default from config)")
	enhanceCmd.Flags().BoolVar(&enhanceCompare, "compare", false, "Show original and enhanced text side by side")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, enhanceTemplate)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.SetComparison(enhanceCompare)

	logDetails := func(file upload.File, cfg common.CommandConfig) {
		a.logger.Info("Starting resume enhancement",
			"file", file.Name,
			"size", len(file.Content),
			"template", a.session.TemplateID(),
			"output_format", cfg.OutputFormat)
	}

	enhance := func(ctx context.Context, file upload.File) (formatters.Preview, error) {
		if err := a.session.Upload().SelectFile(file); err != nil {
			return formatters.Preview{}, err
		}
		if _, err := a.session.Enhance(ctx); err != nil {
			return formatters.Preview{}, err
		}
		return previewOf(a.session), nil
	}

	if err := common.RunFileCommand(cmd.Context(), a.runner(cmd), enhanceConfig, args[0],
		(*common.FileProcessor).ReadUpload, enhance, logDetails); err != nil {
		return err
	}
	a.logger.Info("Resume enhancement completed successfully")
	return nil
}

func previewOf(s *session.Session) formatters.Preview {
	return formatters.Preview{View: s.Snapshot(), Tree: s.Preview()}
}
