package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/spf13/cobra"
)

var (
	activeOnly   bool
	inactiveOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workflows",
	Long: `List all follow-up workflow definitions from the outreach server.

Examples:
  outreach list
  outreach list --active-only
  outreach list --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		// Check API health
		if err := client.HealthCheck(); err != nil {
			fmt.Printf("API health check failed: %v\n", err)
			fmt.Println("Tip: Make sure the API server is running")
			os.Exit(1)
		}

		// Get workflows
		response, err := client.GetWorkflows()
		if err != nil {
			fmt.Printf("Failed to get workflows: %v\n", err)
			os.Exit(1)
		}
		workflows := response.Workflows

		// Filter if needed
		if activeOnly {
			filtered := workflows[:0]
			for _, w := range workflows {
				if w.IsActive {
					filtered = append(filtered, w)
				}
			}
			workflows = filtered
		} else if inactiveOnly {
			filtered := workflows[:0]
			for _, w := range workflows {
				if !w.IsActive {
					filtered = append(filtered, w)
				}
			}
			workflows = filtered
		}

		// Output results
		if outputJSON {
			data, err := json.MarshalIndent(workflows, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		} else {
			printWorkflowList(workflows)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&activeOnly, "active-only", false, "Show only active workflows")
	listCmd.Flags().BoolVar(&inactiveOnly, "inactive-only", false, "Show only inactive workflows")
}

func printWorkflowList(workflows []models.Workflow) {
	if len(workflows) == 0 {
		fmt.Println("No workflows found")
		fmt.Println("\nCreate a new workflow:")
		fmt.Println("  outreach init my-followup --template standard")
		return
	}

	fmt.Printf("\nFound %d workflow(s):\n\n", len(workflows))
	fmt.Printf("%-36s  %-30s  %-8s  %-7s\n", "ID", "Name", "Status", "Default")

	for _, w := range workflows {
		status := "active"
		if !w.IsActive {
			status = "inactive"
		}
		fmt.Printf("%-36s  %-30s  %-8s  %-7v\n", w.ID, truncate(w.Name, 30), status, w.IsDefault)
	}

	fmt.Println("\nStart a run:")
	fmt.Println("  outreach runs start <customer-id> <workflow-id>")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
