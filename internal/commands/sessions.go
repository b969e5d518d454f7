package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studylog/studylog/internal/core"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and delete imported sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List imported sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service) error {
			sessions, err := svc.ListSessions(ctx)
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions. Use 'studyctl import <dir>' to import CSV exports.")
				return nil
			}

			fmt.Printf("%-4s %-14s %-12s %-12s %-6s %-10s %s\n",
				"ID", "LABEL", "START", "END", "ACTIVE", "CATEGORIES", "DAYS")
			fmt.Println(strings.Repeat("-", 72))
			for _, s := range sessions {
				active := ""
				if s.IsActive {
					active = "*"
				}
				fmt.Printf("%-4d %-14s %-12s %-12s %-6s %-10d %d\n",
					s.ID, s.Label, s.StartDate, s.EndDate, active,
					s.CategoryCount, s.RecordCount)
			}
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a session and all of its records",
	Long: `Delete a session. Its categories, daily records, observations, and
text entries go with it; families are kept for future imports. This is
the required first step before re-importing the same term.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		return withService(cmd.Context(), func(ctx context.Context, svc *core.Service) error {
			session, err := svc.GetSession(ctx, id)
			if err != nil {
				return err
			}
			if err := svc.DeleteSession(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted %s (%d categories, %d days)\n",
				session.Label, session.CategoryCount, session.RecordCount)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
