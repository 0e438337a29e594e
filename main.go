package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"civiclens-be/logger"
	"civiclens-be/models"
)

var rootCmd = &cobra.Command{
	Use:   "civiclens",
	Short: "CivicLens civic issue reporting server",
	Long: `CivicLens lets residents report local issues with a photo and location
and gives city staff a dashboard to triage them.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long: `Hashes the given password, or one line read from stdin when no
argument is given, and prints the value to put in ADMIN_PASSWORD_HASH.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		hash, err := models.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
