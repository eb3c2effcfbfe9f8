package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrlokans/weread2notion/internal/blocks"
	"github.com/mrlokans/weread2notion/internal/config"
	"github.com/mrlokans/weread2notion/internal/covers"
	"github.com/mrlokans/weread2notion/internal/notion"
	"github.com/mrlokans/weread2notion/internal/syncer"
	"github.com/mrlokans/weread2notion/internal/weread"
)

// SyncCommand performs a single sync run.
type SyncCommand struct {
	flags allowListFlags
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// Command returns the "sync" subcommand.
func (c *SyncCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [cookie notion_token database_id ref repository]",
		Short: "Run one sync and exit",
		Example: `  weread2notion sync "$WEREAD_COOKIE" "$NOTION_TOKEN" "$DATABASE_ID" refs/heads/main me/weread2notion
  weread2notion sync --styles 0,1 --colors 1,4`,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.RunE,
	}
	c.BindFlags(cmd)
	return cmd
}

// BindFlags registers the sync flags on cmd.
func (c *SyncCommand) BindFlags(cmd *cobra.Command) {
	c.flags.bind(cmd.Flags())
}

// RunE executes the sync command
func (c *SyncCommand) RunE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, &c.flags)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	s, err := buildSyncer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	result, err := s.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("sync finished with %d failed books", result.Failed)
	}
	return nil
}

// buildSyncer constructs the clients once and hands them to the
// orchestrator. The WeRead session is bootstrapped before returning.
func buildSyncer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*syncer.Syncer, error) {
	source, err := weread.NewClient(cfg.WeRead.Cookie, weread.Options{
		BaseURL: cfg.WeRead.BaseURL,
		APIURL:  cfg.WeRead.APIURL,
		Timeout: cfg.HTTP.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weread client: %w", err)
	}
	if err := source.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to open weread session: %w", err)
	}

	workspace := notion.NewClient(cfg.Notion.Token, notion.Options{
		BaseURL: cfg.Notion.APIURL,
		Version: cfg.Notion.Version,
		Timeout: cfg.HTTP.Timeout,
		Pacer:   notion.NewPacer(cfg.Notion.PaceInterval),
		Logger:  logger,
	}).Database(cfg.Notion.DatabaseID)

	cache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		return nil, err
	}
	resolver := covers.NewResolver(cache, cfg.Covers.Repository, covers.BranchFromRef(cfg.Covers.Ref), logger)

	builder := blocks.NewBuilder(blocks.Filter{
		Styles: cfg.Sync.Styles,
		Colors: cfg.Sync.Colors,
	})

	return syncer.New(source, workspace, resolver, builder, syncer.Options{
		WebBaseURL: source.BaseURL(),
		Logger:     logger,
	}), nil
}
