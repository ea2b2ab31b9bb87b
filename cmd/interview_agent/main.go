// Package main provides the entry point for the Interview Simulator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "Interview Simulator HTTP API Server",
	Long:  "Interview Simulator runs multi-stage mock job interviews with role-played interviewers, follow-up probing, and a hiring-committee verdict, via REST API or an interactive terminal session.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
