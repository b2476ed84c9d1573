package main

import (
	"leadengine_backend/internal/leads/forecast"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predict close outcomes and snapshot the pipeline.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		summary, err := e.module.ForecastService().Run(cmd.Context(), forecast.RunOptions{
			Enabled: e.module.Settings().ScoringEnabled(cmd.Context()),
		})
		if err != nil {
			return err
		}

		if viper.GetString("output") == outputJSON {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		return renderForecastSummary(cmd.OutOrStdout(), summary)
	},
}
