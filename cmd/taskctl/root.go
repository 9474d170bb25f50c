package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"task-search-backend/internal/client"
	"task-search-backend/internal/logger"
)

var (
	baseURL     string
	anonKey     string
	accessToken string
	jsonOutput  bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Search tasks and suggest subtasks from the command line",
	Long: `taskctl calls the smart-search and generate-subtasks functions as a signed-in user.

Connection settings come from SUPABASE_URL, SUPABASE_ANON_KEY and
SUPABASE_ACCESS_TOKEN (a .env file in the working directory is read too).
Flags take precedence over the environment.`,
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", os.Getenv("SUPABASE_URL"), "Project URL")
	rootCmd.PersistentFlags().StringVar(&anonKey, "anon-key", os.Getenv("SUPABASE_ANON_KEY"), "Public anon key")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", os.Getenv("SUPABASE_ACCESS_TOKEN"), "User access token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

var errNoToken = errors.New("an access token is required (--token or SUPABASE_ACCESS_TOKEN)")

func newClient() (*client.Client, error) {
	if accessToken == "" {
		return nil, errNoToken
	}

	level := zapcore.WarnLevel
	if debugFlag {
		level = zapcore.DebugLevel
	}
	lg, err := logger.New(logger.Options{Service: "taskctl", Level: level, Format: logger.FormatConsole})
	if err != nil {
		lg = zap.NewNop()
	}

	return client.New(baseURL, anonKey, client.WithLogger(lg))
}
