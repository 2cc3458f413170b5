package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/cli"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [workflow-file]",
	Short: "Deploy a workflow to the server",
	Long: `Deploy a follow-up workflow definition to the outreach server.

The deploy command will:
  1. Validate the workflow definition
  2. Check if the API server is reachable
  3. Create the workflow on the server

Examples:
  outreach deploy workflow.json
  outreach deploy followup.json --api-url http://prod.example.com:8080`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		// Check if file exists
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			fmt.Printf("Error: File '%s' not found\n", filename)
			os.Exit(1)
		}

		// Validate first
		fmt.Println("Validating workflow...")
		validationResult, err := cli.ValidateWorkflowFile(filename)
		if err != nil {
			fmt.Printf("Error validating workflow: %v\n", err)
			os.Exit(1)
		}

		if !validationResult.Valid {
			fmt.Println("Workflow validation failed:")
			for _, err := range validationResult.Errors {
				fmt.Printf("  - %s\n", err)
			}
			os.Exit(1)
		}
		fmt.Println("Validation passed")

		// Load workflow
		req, err := cli.LoadWorkflowFromFile(filename)
		if err != nil {
			fmt.Printf("Error loading workflow: %v\n", err)
			os.Exit(1)
		}

		client := apiClient()

		// Check API health
		fmt.Printf("Connecting to API: %s\n", viper.GetString("api.url"))
		if err := client.HealthCheck(); err != nil {
			fmt.Printf("API health check failed: %v\n", err)
			fmt.Println("Tip: Make sure the API server is running")
			os.Exit(1)
		}

		fmt.Printf("Deploying workflow '%s'...\n", req.Name)
		created, err := client.CreateWorkflow(req)
		if err != nil {
			fmt.Printf("Failed to deploy workflow: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Workflow deployed successfully!")
		printWorkflowInfo(created)

		fmt.Println("\nNext steps:")
		fmt.Printf("  List workflows:  outreach list\n")
		fmt.Printf("  Start a run:     outreach runs start <customer-id> %s\n", created.ID)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func printWorkflowInfo(workflow *models.Workflow) {
	if outputJSON {
		data, _ := json.MarshalIndent(workflow, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("\nWorkflow Details:\n")
		fmt.Printf("  ID:       %s\n", workflow.ID)
		fmt.Printf("  Name:     %s\n", workflow.Name)
		fmt.Printf("  Steps:    %d\n", len(workflow.Steps))
		fmt.Printf("  Active:   %v\n", workflow.IsActive)
		fmt.Printf("  Created:  %s\n", workflow.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}
