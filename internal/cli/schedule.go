package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weread2notion/internal/scheduler"
)

// ScheduleCommand runs syncs periodically until interrupted.
type ScheduleCommand struct {
	flags    allowListFlags
	schedule string
	runNow   bool
}

// NewScheduleCommand creates a new ScheduleCommand
func NewScheduleCommand() *ScheduleCommand {
	return &ScheduleCommand{}
}

// Command returns the "schedule" subcommand.
func (c *ScheduleCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [cookie notion_token database_id ref repository]",
		Short: "Run syncs on a cron schedule",
		Long: `Run syncs on a cron schedule until interrupted. A tick that fires while the
previous sync is still running is skipped.`,
		Example:       `  weread2notion schedule --schedule "*/30 * * * *" --run-now`,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.RunE,
	}
	c.flags.bind(cmd.Flags())
	cmd.Flags().StringVar(&c.schedule, "schedule", "", "cron schedule, five fields (default $SYNC_SCHEDULE or \"0 */6 * * *\")")
	cmd.Flags().BoolVar(&c.runNow, "run-now", false, "run one sync immediately after starting")
	return cmd
}

// RunE executes the schedule command
func (c *ScheduleCommand) RunE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args, &c.flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Sync.Schedule = c.schedule
	}
	if err := scheduler.ValidateSchedule(cfg.Sync.Schedule); err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	s, err := buildSyncer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	sched := scheduler.NewSyncScheduler(s, cfg.Sync.Schedule, logger)
	if err := sched.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if c.runNow {
		sched.RunNow()
	}

	<-cmd.Context().Done()
	sched.Stop()
	return nil
}
