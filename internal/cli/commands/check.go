package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/astroforge/astro/internal/cli/config"
	"github.com/astroforge/astro/internal/compiler"
)

var okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var allowWarnings bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Compile programs without running them",
		Long: `Parse and check each source file, printing any diagnostics. Nothing
is executed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			allow := allowWarnings || cfg.AllowWarnings

			var failed bool
			for _, path := range args {
				warnings, err := checkFile(path, allow)
				if err != nil {
					failed = true
					fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("ok")+" "+path)
				if warnings != "" {
					fmt.Fprint(cmd.ErrOrStderr(), warnings)
				}
			}
			if failed {
				return fmt.Errorf("one or more files failed checks")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowWarnings, "allow-warnings", false, "Do not treat warnings as fatal")

	return cmd
}

// checkFile compiles path without running it. Non-fatal warning text is
// returned so the caller can sequence it with its own output.
func checkFile(path string, allowWarnings bool) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	db, err := compiler.NewDatabaseBuilder().
		DetectCorelib().
		SkipAutoWithdrawGas().
		Build()
	if err != nil {
		return "", err
	}
	if _, err := db.SetupProjectWithInputString(path, string(source)); err != nil {
		return "", err
	}

	reporter := compiler.NewReporter()
	if allowWarnings {
		reporter = reporter.AllowWarnings()
	}
	if reporter.Check(db) {
		return "", fmt.Errorf("%s", db.DiagnosticsText())
	}

	return db.DiagnosticsText(), nil
}
