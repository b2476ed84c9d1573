package main

import (
	"fmt"

	"leadengine_backend/internal/leads/scoring"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recalculate lead scores.",
	Long: `Scores every active lead, or only the leads given with --lead.
Terminal leads are skipped. Nothing is written when scoring is disabled.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := cmd.Flags().GetStringSlice("lead")
		if err != nil {
			return err
		}
		leadIDs, err := parseLeadIDs(raw)
		if err != nil {
			return err
		}

		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		summary, err := e.module.ScoringService().Run(cmd.Context(), scoring.RunOptions{
			LeadIDs: leadIDs,
			Enabled: e.module.Settings().ScoringEnabled(cmd.Context()),
		})
		if err != nil {
			return err
		}

		if viper.GetString("output") == outputJSON {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		return renderScoreSummary(cmd.OutOrStdout(), summary)
	},
}

func init() {
	scoreCmd.Flags().StringSlice("lead", nil, "lead id to score (repeatable)")
}

func parseLeadIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid lead id %q", value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
