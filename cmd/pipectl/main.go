package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dkaplan/opportunity-pipeline/internal/engine"
	"github.com/dkaplan/opportunity-pipeline/internal/scoring"
)

var (
	apiURL     string
	apiToken   string
	scoringURL string
)

var rootCmd = &cobra.Command{
	Use:   "pipectl",
	Short: "Inspect and drive the opportunity pipeline from the terminal",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("PIPELINE_API", "http://localhost:8081"), "pipeline API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("PIPELINE_TOKEN"), "bearer token for the API")
	rootCmd.PersistentFlags().StringVar(&scoringURL, "scoring", os.Getenv("SCORING_URL"), "match scoring service URL (optional)")

	rootCmd.AddCommand(listCmd, boardCmd, analyticsCmd, moveCmd, addCmd, rmCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newSession builds a session against the configured API and loads both
// collections. A partial load still yields a usable session.
func newSession(cmd *cobra.Command) (*engine.Session, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	var scorer scoring.Scorer
	if scoringURL != "" {
		scorer = scoring.NewClient(scoringURL, log)
	}

	sess := engine.NewSession(engine.NewClient(apiURL, apiToken), scorer, log)
	if err := sess.Load(cmd.Context()); err != nil {
		var loadErr *engine.LoadError
		if errors.As(err, &loadErr) && loadErr.Partial() {
			fmt.Fprintf(os.Stderr, "warning: partial data: %v\n", loadErr)
			return sess, nil
		}
		return nil, err
	}
	return sess, nil
}
