// Package main provides the entry point for the Job Trends API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job-trends-api",
	Short: "Job Trends REST API",
	Long:  "Job Trends serves job postings, companies and skills over REST, along with salary and skill analytics.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
