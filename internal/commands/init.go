package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtmerge/internal/config"
	"github.com/cleared-dev/stmtmerge/internal/rules"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create the input/output folders, config and an empty replacement table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir)
		},
	}
	return cmd
}

func runInit(dir string) error {
	cfg := config.Default()

	// Create directory structure.
	for _, d := range []string{cfg.InputDir, cfg.OutputDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Existing files are left alone.
	cfgPath := filepath.Join(dir, config.FileName)
	if !exists(cfgPath) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	rulesPath := filepath.Join(dir, cfg.Replacements)
	if !exists(rulesPath) {
		if err := rules.WriteTemplate(rulesPath); err != nil {
			return fmt.Errorf("writing replacement table: %w", err)
		}
	}

	fmt.Printf("Initialized workspace at %s\n", dir)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
