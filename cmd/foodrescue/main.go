package main

import (
	"fmt"
	"os"
	"time"

	"github.com/franckalain/foodrescue/internal/client"
	"github.com/franckalain/foodrescue/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	apiURL  string
	verbose bool
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "foodrescue",
	Short: "Command line client for the FoodRescue API",
	Long: `foodrescue talks to a running FoodRescue server.

It records surplus food, lists recent submissions and partner NGOs,
asks the AI model for a demand forecast and follows live updates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	defaultURL := os.Getenv("FOODRESCUE_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "url", defaultURL, "base URL of the FoodRescue server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(
		newSubmitCmd(),
		recentCmd,
		ngosCmd,
		newPredictCmd(),
		statusCmd,
		watchCmd,
	)
}

func newClient() *client.Client {
	if logger != nil {
		logger.Debug("Using API", zap.String("url", apiURL))
	}
	return client.New(apiURL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
