package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flatten/pkg/exclusions"
	"flatten/pkg/flatten"
	"flatten/pkg/templates"
)

// rootFlags holds every run input of the root command.
type rootFlags struct {
	folders          []string
	skipFolders      []string
	skipExtensions   []string
	output           string
	showSkipped      bool
	workers          int
	maxFileSize      int64
	autoDetect       bool
	includeHidden    bool
	maxDepth         int
	showStats        bool
	dryRun           bool
	listTemplates    bool
	enableTemplates  []string
	disableTemplates []string
	forceUpdate      bool
	showEnabled      bool
	cacheDir         string
}

var defaultSkipFolders = []string{".git", "node_modules", "target", "dist", "build"}

var defaultSkipExtensions = []string{
	"exe", "dll", "so", "dylib", "bin", "jar", "apk", "ipa", "msi", "class", "pyc",
}

// Execute builds the root command and runs it.
func Execute(logger *zap.Logger) error {
	return newRootCmd(logger).Execute()
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "flatten",
		Short: "Flatten codebases into a single structured text file",
		Long: `Flatten recursively walks directory trees and concatenates their text files
into one structured output file, applying exclusion templates cached from the
gitignore template API.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags, logger)
		},
	}

	rootCmd.Flags().StringSliceVarP(&flags.folders, "folders", "f", nil, "Base folders to process")
	rootCmd.Flags().StringSliceVarP(&flags.skipFolders, "skip-folders", "s", defaultSkipFolders, "Folder names to skip")
	rootCmd.Flags().StringSliceVarP(&flags.skipExtensions, "skip-extensions", "x", defaultSkipExtensions, "File extensions to skip")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "codebase.md", "Output file")
	rootCmd.Flags().BoolVarP(&flags.showSkipped, "show-skipped", "k", false, "Show skipped entries in the structure tree")
	rootCmd.Flags().IntVarP(&flags.workers, "workers", "t", 0, "Worker count for parallel file reads (0 = all CPUs)")
	rootCmd.Flags().Int64VarP(&flags.maxFileSize, "max-file-size", "m", 104857600, "Maximum file size in bytes (0 = no limit)")
	rootCmd.Flags().BoolVarP(&flags.autoDetect, "auto-detect", "a", false, "Auto-detect project type and enable matching templates")
	rootCmd.Flags().BoolVar(&flags.includeHidden, "include-hidden", false, "Include hidden files and folders")
	rootCmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "Maximum traversal depth (0 = unbounded)")
	rootCmd.Flags().BoolVarP(&flags.showStats, "stats", "S", false, "Print detailed statistics after processing")
	rootCmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "d", false, "Show what would be processed without writing the output file")
	rootCmd.Flags().BoolVarP(&flags.listTemplates, "list-templates", "l", false, "List all available exclusion templates")
	rootCmd.Flags().StringSliceVarP(&flags.enableTemplates, "enable-template", "e", nil, "Enable an exclusion template")
	rootCmd.Flags().StringSliceVarP(&flags.disableTemplates, "disable-template", "D", nil, "Disable an exclusion template")
	rootCmd.Flags().BoolVarP(&flags.forceUpdate, "force-update", "u", false, "Force a template refresh from the API")
	rootCmd.Flags().BoolVar(&flags.showEnabled, "show-enabled", false, "Show currently enabled templates")
	rootCmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "Template cache directory (default ~/.flatten)")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func runRoot(cmd *cobra.Command, flags *rootFlags, logger *zap.Logger) error {
	templateManagement := flags.listTemplates || flags.showEnabled || flags.forceUpdate ||
		len(flags.enableTemplates) > 0 || len(flags.disableTemplates) > 0
	if len(flags.folders) == 0 && !templateManagement {
		return errors.New("--folders is required; use --help for more information")
	}

	cacheDir := flags.cacheDir
	if cacheDir == "" {
		var err error
		cacheDir, err = templates.DefaultDir()
		if err != nil {
			return err
		}
	}

	manager := templates.NewManager(cacheDir, templates.NewClient(nil, ""), logger)
	if err := manager.Load(); err != nil {
		return err
	}
	if err := manager.UpdateIfNeeded(cmd.Context(), flags.forceUpdate); err != nil {
		return err
	}

	engine := exclusions.NewEngine(manager, logger)
	for _, key := range flags.enableTemplates {
		engine.Enable(key)
	}
	for _, key := range flags.disableTemplates {
		engine.Disable(key)
	}

	if flags.listTemplates {
		renderTemplateList(cmd.OutOrStdout(), manager)
		return nil
	}
	if flags.showEnabled {
		renderEnabled(cmd.OutOrStdout(), engine)
		return nil
	}
	if len(flags.folders) == 0 {
		// Template management only; nothing to flatten.
		return nil
	}

	if flags.autoDetect {
		for _, folder := range flags.folders {
			if _, err := os.Stat(folder); err != nil {
				continue
			}
			if err := engine.DetectProject(folder); err != nil {
				logger.Warn("Project auto-detection failed", zap.String("folder", folder), zap.Error(err))
			}
		}
	}
	engine.AddFolders(flags.skipFolders)
	engine.AddExtensions(flags.skipExtensions)
	set := engine.Set()

	stats, err := flatten.Run(flatten.Arguments{
		Folders:       flags.folders,
		Output:        flags.output,
		ShowSkipped:   flags.showSkipped,
		Workers:       flags.workers,
		MaxFileSize:   flags.maxFileSize,
		IncludeHidden: flags.includeHidden,
		MaxDepth:      flags.maxDepth,
		DryRun:        flags.dryRun,
	}, set, logger)
	if err != nil {
		return err
	}

	if flags.showStats {
		fmt.Fprint(cmd.OutOrStdout(), stats.Summary())
	}
	if !flags.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Output written to: %s\n", flags.output)
	}
	return nil
}
