package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	apiURL         string
	orgID          string
	dispatchSecret string
	outputJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Outreach CLI - Manage automated customer follow-up workflows",
	Long: `The Outreach CLI allows you to create, validate, and deploy follow-up
workflows, start and stop runs, and trigger sweeps from the command line.

Examples:
  outreach init my-followup --template standard
  outreach validate workflow.json
  outreach deploy workflow.json
  outreach list
  outreach runs --status running
  outreach event <customer-id> reply
  outreach sweep`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize configuration
		initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.outreach-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "Outreach API URL")
	rootCmd.PersistentFlags().StringVar(&orgID, "org", "", "Organization ID sent with every request")
	rootCmd.PersistentFlags().StringVar(&dispatchSecret, "dispatch-secret", "", "Shared secret for sweep trigger endpoints")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results in JSON format")

	// Bind flags to viper
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("api.org", rootCmd.PersistentFlags().Lookup("org"))
	viper.BindPFlag("api.dispatch_secret", rootCmd.PersistentFlags().Lookup("dispatch-secret"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".outreach-cli" (without extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".outreach-cli")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("OUTREACH")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if !outputJSON {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	// Override with flags if provided
	if apiURL != "" && apiURL != "http://localhost:8080" {
		viper.Set("api.url", apiURL)
	}
	if orgID != "" {
		viper.Set("api.org", orgID)
	}
	if dispatchSecret != "" {
		viper.Set("api.dispatch_secret", dispatchSecret)
	}
}

// apiClient builds the HTTP client from the resolved configuration
func apiClient() *cli.Client {
	return cli.NewClient(
		viper.GetString("api.url"),
		viper.GetString("api.org"),
		viper.GetString("api.dispatch_secret"),
	)
}

func uuidFromArg(arg, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %s", name, arg)
	}
	return id, nil
}
