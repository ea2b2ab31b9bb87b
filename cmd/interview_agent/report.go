package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/interview-simulator/internal/db"
	"github.com/jonathan/interview-simulator/internal/report"
	"github.com/spf13/cobra"
)

var reportOutDir string

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Render the markdown report for a stored session",
	Long:  `Load a finished session from the database and render its interview report. With --out the report is written to a timestamped file; otherwise it prints to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutDir, "out", "", "Directory to write the report file into")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, args []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	s, err := database.GetSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return fmt.Errorf("session %s not found", args[0])
	}

	profile, err := database.GetProfile(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if reportOutDir != "" {
		path, err := report.Save(reportOutDir, s, profile)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	}

	fmt.Print(report.Markdown(s, profile))
	return nil
}
