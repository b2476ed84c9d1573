package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/scoring"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const dateLayout = "2006-01-02"

var (
	hotColor  = color.New(color.FgRed, color.Bold)
	warmColor = color.New(color.FgYellow)
	coldColor = color.New(color.FgCyan)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func bucketLabel(b domain.Bucket) string {
	switch b {
	case domain.BucketHot:
		return hotColor.Sprint(string(b))
	case domain.BucketWarm:
		return warmColor.Sprint(string(b))
	default:
		return coldColor.Sprint(string(b))
	}
}

func renderScoreSummary(w io.Writer, s scoring.ScoreRunSummary) error {
	if s.Skipped {
		_, err := fmt.Fprintln(w, color.YellowString("scoring disabled; nothing written"))
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Lead", "Engagement", "Urgency", "Fit", "Overall", "Hot"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		hot := ""
		if r.Hot {
			hot = hotColor.Sprint("yes")
		}
		data = append(data, []string{
			r.LeadID.String(),
			strconv.Itoa(r.Engagement),
			strconv.Itoa(r.Urgency),
			strconv.Itoa(r.Fit),
			strconv.Itoa(r.Overall),
			hot,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Processed %d, persisted %d, failed %d, hot %d (version %s)\n",
		s.Processed, s.Persisted, s.Failed, s.HotLeads, s.ScoreVersion)
	return err
}

func renderForecastSummary(w io.Writer, s forecast.ForecastRunSummary) error {
	if s.Skipped {
		_, err := fmt.Fprintln(w, color.YellowString("scoring disabled; nothing written"))
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Lead", "Industry", "Probability", "Bucket", "Close date", "Deal value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(s.Predictions))
	for _, p := range s.Predictions {
		data = append(data, []string{
			p.LeadID.String(),
			p.Factors.Industry,
			fmt.Sprintf("%.4f", p.Probability),
			bucketLabel(p.Bucket),
			p.CloseDate.Format(dateLayout),
			fmt.Sprintf("%.2f", p.DealValue),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Processed %d, persisted %d, failed %d, unscored %d\n",
		s.Processed, s.Persisted, s.Failed, s.Unscored); err != nil {
		return err
	}
	if s.Forecast == nil {
		return nil
	}

	f := s.Forecast
	_, err := fmt.Fprintf(w, "Pipeline %s: revenue %.2f [%.2f, %.2f], closes %d, close rate %.4f, snapshot saved %t\n",
		f.ForecastDate.Format(dateLayout), f.PredictedRevenue, f.ConfidenceLow, f.ConfidenceHigh,
		f.PredictedCloses, f.PredictedCloseRate, s.SnapshotSaved)
	return err
}
