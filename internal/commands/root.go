package commands

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtmerge/internal/buildinfo"
	"github.com/cleared-dev/stmtmerge/internal/config"
	"github.com/cleared-dev/stmtmerge/internal/logger"
	"github.com/cleared-dev/stmtmerge/internal/pipeline"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Run without arguments, it merges the statements in the current directory.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stmtmerge",
		Short:   "Merge bank statement exports into one categorized table",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		Args:    cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(".")
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runMerge(absDir, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

func runMerge(dir string, in io.Reader, out io.Writer) error {
	cfg, err := config.Resolve(dir)
	if err != nil {
		return err
	}

	log, _ := logger.WithRun(logger.New(cfg.LogLevel))
	if _, err := pipeline.Run(dir, cfg, time.Time{}, log); err != nil {
		return err
	}

	fmt.Fprintln(out, "Done!")

	if cfg.PauseOnExit {
		fmt.Fprint(out, "Press Enter to continue...")
		// EOF on stdin ends the wait as well.
		_, _ = bufio.NewReader(in).ReadString('\n')
	}
	return nil
}
