package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/klmaterial-hub/internal/bootstrap"
	"github.com/noah-isme/klmaterial-hub/pkg/config"
	"github.com/noah-isme/klmaterial-hub/pkg/logger"
)

var (
	container *bootstrap.Container

	flagNoColor bool
	flagRepo    string
	flagBranch  string

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "klmaterial",
	Short: "Browse and export the KL course materials catalog",
	Long: `klmaterial lists the course materials published in the materials repository,
grouped by subject and narrowed by year, semester, subject and a search query.

It uses the same listing chain, cache and stores as the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}
		if cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagRepo != "" {
			cfg.Remote.Repo = flagRepo
		}
		if flagBranch != "" {
			cfg.Remote.Branch = flagBranch
		}

		logr, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		container, err = bootstrap.NewContainer(cfg, logr)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		_ = container.Logger.Sync()
		return container.Close()
	},
}

// SetVersion records the build version shown by the version command.
func SetVersion(v string) { version = v }

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "Materials repository as owner/name (overrides GITHUB_REPO)")
	rootCmd.PersistentFlags().StringVar(&flagBranch, "branch", "", "Materials branch (overrides GITHUB_BRANCH)")

	rootCmd.AddCommand(
		newListCmd(),
		newSubjectsCmd(),
		newRefreshCmd(),
		newExportCmd(),
		newVersionCmd(),
	)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("klmaterial", version)
		},
	}
}
