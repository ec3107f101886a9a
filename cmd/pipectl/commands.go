package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dkaplan/opportunity-pipeline/internal/engine"
	"github.com/dkaplan/opportunity-pipeline/internal/models"
	"github.com/dkaplan/opportunity-pipeline/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List opportunities across both collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("type")
		sortBy, _ := cmd.Flags().GetString("sort")

		sess, err := newSession(cmd)
		if err != nil {
			return err
		}

		records := sess.View(filter, pipeline.SortKey(sortBy))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Type", "Title", "Organization", "Status", "Priority", "Score", "Deadline"})
		for _, rec := range records {
			deadline := "-"
			if rec.Deadline != nil {
				deadline = rec.Deadline.Format("2006-01-02")
			}
			t.AppendRow(table.Row{rec.ID, rec.Type, rec.Title, rec.Organization, rec.Status, rec.PriorityLevel, fmt.Sprintf("%.1f", rec.AIMatchScore), deadline})
		}
		t.Render()
		return nil
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board with per-column counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("type")

		sess, err := newSession(cmd)
		if err != nil {
			return err
		}

		board := sess.Board(filter, pipeline.SortByScore)
		counts := board.Counts()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Column", "Count", "Top entries"})
		t.AppendRow(table.Row{"Prospect", counts.Prospect, columnPreview(board.Prospect)})
		t.AppendRow(table.Row{"Applied", counts.Applied, columnPreview(board.Applied)})
		t.AppendRow(table.Row{"Interview Stage", counts.InterviewStage, columnPreview(board.InterviewStage)})
		t.AppendRow(table.Row{"Under Consideration", counts.UnderConsideration, columnPreview(board.UnderConsideration)})
		t.AppendRow(table.Row{"Offer Received", counts.OfferReceived, columnPreview(board.OfferReceived)})
		t.AppendRow(table.Row{"Closed", counts.Closed, columnPreview(board.Closed)})
		t.AppendFooter(table.Row{"Total", board.Total(), ""})
		t.Render()
		return nil
	},
}

func columnPreview(col []models.Opportunity) string {
	const max = 3
	out := ""
	for i, rec := range col {
		if i == max {
			out += fmt.Sprintf(" (+%d more)", len(col)-max)
			break
		}
		if i > 0 {
			out += ", "
		}
		out += rec.Title
	}
	return out
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show pipeline funnel and health metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd)
		if err != nil {
			return err
		}

		a := sess.Analytics()

		fmt.Printf("Total records:      %d\n", a.TotalRecords)
		fmt.Printf("Overall conversion: %.1f%%\n", a.OverallConversion*100)
		fmt.Printf("Health score:       %d/100\n\n", a.HealthScore)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"From", "To", "Reached", "Rate"})
		for _, stage := range a.StageConversion {
			t.AppendRow(table.Row{stage.From, stage.To, stage.Reached, fmt.Sprintf("%.1f%%", stage.Rate*100)})
		}
		t.Render()

		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Status", "Count"})
		for _, status := range []models.Status{
			models.StatusProspect, models.StatusApplied, models.StatusInterviewStage,
			models.StatusUnderConsideration, models.StatusOfferReceived,
			models.StatusAccepted, models.StatusRejected,
		} {
			if n := a.ByStatus[status]; n > 0 {
				t.AppendRow(table.Row{status, n})
			}
		}
		t.Render()
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <type> <id> <column>",
	Short: "Move an opportunity to a board column",
	Long: `Move an opportunity to a board column.

Examples:
  pipectl move board_director 12 applied
  pipectl move speaking 7 closed`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, ok := models.ParseType(args[0])
		if !ok {
			return fmt.Errorf("unknown type %q", args[0])
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		sess, err := newSession(cmd)
		if err != nil {
			return err
		}
		if err := sess.Transition(cmd.Context(), typ, id, args[2]); err != nil {
			return err
		}

		fmt.Printf("moved %s %d to %s\n", typ, id, args[2])
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an opportunity in either collection",
	Long: `Create an opportunity in either collection.

Examples:
  pipectl add --type executive_position --title "VP Engineering" --org Acme
  pipectl add --type speaking --title "Keynote" --org GopherCon --score 92`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeStr, _ := cmd.Flags().GetString("type")
		title, _ := cmd.Flags().GetString("title")
		org, _ := cmd.Flags().GetString("org")
		location, _ := cmd.Flags().GetString("location")
		compensation, _ := cmd.Flags().GetString("compensation")
		priority, _ := cmd.Flags().GetString("priority")
		requirements, _ := cmd.Flags().GetString("requirements")
		notes, _ := cmd.Flags().GetString("notes")
		deadlineStr, _ := cmd.Flags().GetString("deadline")

		if title == "" {
			return fmt.Errorf("--title is required")
		}

		typ, ok := models.ParseType(typeStr)
		if !ok {
			return fmt.Errorf("unknown type %q", typeStr)
		}

		input := engine.CreateInput{
			Type:          typ,
			Title:         title,
			Organization:  org,
			Location:      location,
			Compensation:  compensation,
			PriorityLevel: priority,
			Requirements:  requirements,
			Notes:         notes,
			Source:        "pipectl",
		}
		if deadlineStr != "" {
			deadline, err := time.Parse("2006-01-02", deadlineStr)
			if err != nil {
				return fmt.Errorf("invalid --deadline, want YYYY-MM-DD: %w", err)
			}
			input.Deadline = &deadline
		}
		if cmd.Flags().Changed("score") {
			score, _ := cmd.Flags().GetFloat64("score")
			input.Score = &score
		}

		sess, err := newSession(cmd)
		if err != nil {
			return err
		}
		created, err := sess.Create(cmd.Context(), input)
		if err != nil {
			return err
		}

		fmt.Printf("created %s %d (%s, score %.1f)\n", created.Type, created.ID, created.Status, created.AIMatchScore)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <type> <id>",
	Short: "Delete an opportunity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, ok := models.ParseType(args[0])
		if !ok {
			return fmt.Errorf("unknown type %q", args[0])
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		sess, err := newSession(cmd)
		if err != nil {
			return err
		}
		if err := sess.Delete(cmd.Context(), typ, id); err != nil {
			return err
		}

		fmt.Printf("deleted %s %d\n", typ, id)
		return nil
	},
}

func init() {
	listCmd.Flags().String("type", pipeline.FilterAll, "filter by opportunity type")
	listCmd.Flags().String("sort", string(pipeline.SortByScore), "sort key: ai_match_score, created_at, deadline, priority_level")

	boardCmd.Flags().String("type", pipeline.FilterAll, "filter by opportunity type")

	addCmd.Flags().String("type", string(models.TypeExecutive), "opportunity type")
	addCmd.Flags().String("title", "", "title (required)")
	addCmd.Flags().String("org", "", "company or organizer")
	addCmd.Flags().String("location", "", "location")
	addCmd.Flags().String("compensation", "", "compensation range or speaking fee")
	addCmd.Flags().String("priority", "medium", "priority level")
	addCmd.Flags().String("requirements", "", "comma-separated requirements")
	addCmd.Flags().String("notes", "", "free-form notes")
	addCmd.Flags().String("deadline", "", "deadline as YYYY-MM-DD")
	addCmd.Flags().Float64("score", 0, "pre-computed match score (speaking only)")
}
