package cli

import (
	"context"
	"fmt"

	"resumebuilder/internal/common"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/types"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [record-file]",
	Short: "Export a record as PDF, DOCX or both",
	Long: `Send a record to the document service and save the generated files into the
output directory. PDF exports are fetched through /download/{file}; DOCX exports are
saved under the configured file name. With --format all both run concurrently and
one failure does not stop the other.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveOutputFormat(&exportConfig),
	RunE:    runExport,
}

var (
	exportConfig  common.CommandConfig
	exportFormats string
)

func init() {
	addOutputFlags(exportCmd, &exportConfig, "output-format")
	exportCmd.Flags().StringVarP(&exportFormats, "format", "f", "all", "Document format: pdf, docx or all")

	_ = exportCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"pdf", "docx", "all"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	formats, err := export.ParseFormats(exportFormats)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	logDetails := func(record types.ResumeRecord, cfg common.CommandConfig) {
		a.logger.Info("Starting export",
			"formats", formats,
			"output_dir", a.cfg.Export.OutputDir)
	}

	var results []export.Result
	run := func(ctx context.Context, record types.ResumeRecord) ([]export.Result, error) {
		results = a.exports.Export(ctx, &record, formats)
		return results, nil
	}

	if err := common.RunFileCommand(cmd.Context(), a.runner(cmd), exportConfig, args[0],
		(*common.FileProcessor).LoadRecord, run, logDetails); err != nil {
		return err
	}
	return exportError(results)
}

// exportError fails the command when any format failed
func exportError(results []export.Result) error {
	failed := 0
	var last error
	for _, r := range results {
		if r.Err != nil {
			failed++
			last = r.Err
		}
	}
	switch {
	case failed == 0:
		return nil
	case failed == 1:
		return last
	default:
		return errors.NewServiceError(errors.ErrCodeServiceError,
			fmt.Sprintf("%d of %d exports failed", failed, len(results)), last)
	}
}
