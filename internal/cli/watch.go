package cli

import (
	"context"
	"time"

	"resumebuilder/internal/common"
	"resumebuilder/internal/types"
	"resumebuilder/internal/watch"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [record-file]",
	Short: "Re-render the preview every time a record file is saved",
	Long: `Watch a YAML or JSON record and render it through the selected template after
each save, the way the manual entry form refreshes the preview on every keystroke.
Use -o to keep a file (for example preview.html) up to date for a browser tab.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if watchConfig.OutputFormat == "" {
			watchConfig.OutputFormat = "html"
		}
		return resolveOutputFormat(&watchConfig)(cmd, args)
	},
	RunE: runWatch,
}

var (
	watchConfig   common.CommandConfig
	watchTemplate int
	watchDebounce time.Duration
)

func init() {
	addOutputFlags(watchCmd, &watchConfig, "format")
	watchCmd.Flags().IntVarP(&watchTemplate, "template", "t", 0, "Template id (default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Delay coalescing rapid saves")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, watchTemplate)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.SetMode(types.ModeManual)
	fp := common.NewFileProcessor(a.logger, a.cfg.App.MaxFileSize)
	output := common.NewOutputHandler(a.logger, cmd.OutOrStdout())

	rendered := false
	rerender := func(ctx context.Context) error {
		record, err := fp.LoadRecord(args[0])
		if err != nil {
			return err
		}
		if !a.session.Form().LoadDraft(record) && rendered {
			a.logger.Debug("Record unchanged, skipping render", "file", args[0])
			return nil
		}
		rendered = true
		return output.HandleOutput(previewOf(a.session), watchConfig)
	}

	return watch.NewFileWatcher(args[0], watchDebounce, rerender, a.logger).Run(cmd.Context())
}
