// Package cli wires configuration, clients and the orchestrator into the
// weread2notion commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mrlokans/weread2notion/internal/config"
	"github.com/mrlokans/weread2notion/internal/logging"
)

// positionalArgs is the number of optional positional arguments:
// cookie, notion token, database id, ref and repository.
const positionalArgs = 5

// Execute runs the root command until it returns or the process receives
// SIGINT or SIGTERM.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. The root command itself performs
// a one-shot sync.
func NewRootCommand(version string) *cobra.Command {
	sync := NewSyncCommand()

	root := &cobra.Command{
		Use:   "weread2notion [cookie notion_token database_id ref repository]",
		Short: "Sync WeRead highlights and notes into a Notion database",
		Long: `weread2notion copies the books, highlights, notes and reading progress of a
WeRead account into a Notion database, one page per book.

Only books whose annotations changed since the last run are rewritten.
Credentials may be given as the five positional arguments or through the
WEREAD_COOKIE, NOTION_TOKEN, DATABASE_ID, REF and REPOSITORY variables.`,
		Version:       version,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          sync.RunE,
	}
	sync.BindFlags(root)

	root.AddCommand(sync.Command())
	root.AddCommand(NewScheduleCommand().Command())
	return root
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != positionalArgs {
		return fmt.Errorf("expected 0 or %d arguments, got %d", positionalArgs, len(args))
	}
	return nil
}

// allowListFlags holds the --styles and --colors flags shared by the
// commands.
type allowListFlags struct {
	styles []int
	colors []int
}

func (f *allowListFlags) bind(fs *pflag.FlagSet) {
	fs.IntSliceVar(&f.styles, "styles", nil, "highlight styles to include, e.g. 0,1,2 (default all)")
	fs.IntSliceVar(&f.colors, "colors", nil, "highlight colors to include, e.g. 1,4 (default all)")
}

func (f *allowListFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("styles") {
		cfg.Sync.Styles = f.styles
	}
	if fs.Changed("colors") {
		cfg.Sync.Colors = f.colors
	}
}

// loadConfig reads the environment, then applies positional arguments and
// explicitly set flags on top.
func loadConfig(cmd *cobra.Command, args []string, flags *allowListFlags) (*config.Config, error) {
	cfg := config.NewConfig(viper.New())
	if len(args) == positionalArgs {
		cfg.WeRead.Cookie = args[0]
		cfg.Notion.Token = args[1]
		cfg.Notion.DatabaseID = args[2]
		cfg.Covers.Ref = args[3]
		cfg.Covers.Repository = args[4]
	}
	flags.apply(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
}
