// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-course-nav",
	Short: "GoCourseNav is a self-hosted course portal",
	Long: `GoCourseNav is a lightweight self-hosted course portal. Courses are
divided into ordered sections, and every course page carries a section links
navigation block with configurable display options.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
