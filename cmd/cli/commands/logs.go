package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/cli"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/spf13/cobra"
)

var (
	customerFilter string
	statusFilter   string
	runLimit       int
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "View workflow runs",
	Long: `View workflow runs. Shows a specific run with its step audit trail, or
lists recent runs.

Examples:
  outreach runs                                 # List recent runs
  outreach runs abc123                          # Show a run with its step trail
  outreach runs --customer <customer-id>        # Filter by customer
  outreach runs --status running                # Filter by status
  outreach runs --limit 50                      # Show up to 50 runs`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		// Check API health
		if err := client.HealthCheck(); err != nil {
			fmt.Printf("API health check failed: %v\n", err)
			fmt.Println("Tip: Make sure the API server is running")
			os.Exit(1)
		}

		// If run ID provided, show the trace
		if len(args) == 1 {
			showRunTrace(client, args[0])
			return
		}

		listRuns(client)
	},
}

var runsStartCmd = &cobra.Command{
	Use:   "start [customer-id] [workflow-id]",
	Short: "Start a workflow run for a customer",
	Long: `Start a workflow run for a customer. Any run already going for the
customer is stopped and replaced. If the first step is immediate its
message is sent before the command returns.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		workflowID, err := uuidFromArg(args[1], "workflow-id")
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}

		run, err := client.StartRun(args[0], &models.StartRunRequest{WorkflowID: workflowID})
		if err != nil {
			fmt.Printf("Failed to start run: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(run, "", "  ")
			fmt.Println(string(data))
			return
		}

		fmt.Printf("Run started: %s (status: %s, step: %d)\n", run.ID, run.Status, run.CurrentStepIndex)
		if run.NextRunAt != nil {
			fmt.Printf("Next step due: %s\n", run.NextRunAt.Format("2006-01-02 15:04:05 MST"))
		}
	},
}

var runsStopCmd = &cobra.Command{
	Use:   "stop [run-id]",
	Short: "Manually stop a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		if err := client.StopRun(args[0]); err != nil {
			fmt.Printf("Failed to stop run: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Run %s stopped\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsStartCmd)
	runsCmd.AddCommand(runsStopCmd)
	runsCmd.Flags().StringVar(&customerFilter, "customer", "", "Filter by customer ID")
	runsCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (running, completed, stopped, ...)")
	runsCmd.Flags().IntVar(&runLimit, "limit", 20, "Number of runs to show")
}

func showRunTrace(client *cli.Client, runID string) {
	trace, err := client.GetRunTrace(runID)
	if err != nil {
		fmt.Printf("Failed to get run: %v\n", err)
		os.Exit(1)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(trace, "", "  ")
		fmt.Println(string(data))
		return
	}

	run := trace.Run
	fmt.Println("Run Details")
	fmt.Println("===========")
	fmt.Printf("ID:           %s\n", run.ID)
	fmt.Printf("Customer:     %s\n", run.CustomerID)
	fmt.Printf("Workflow:     %s\n", run.WorkflowID)
	if trace.Workflow != nil {
		fmt.Printf("Name:         %s\n", trace.Workflow.Name)
	}
	fmt.Printf("Status:       %s\n", run.Status)
	fmt.Printf("Started:      %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current step: %d\n", run.CurrentStepIndex)
	if run.NextRunAt != nil {
		fmt.Printf("Next due:     %s\n", run.NextRunAt.Format("2006-01-02 15:04:05 MST"))
	}
	if run.StoppedAt != nil {
		fmt.Printf("Stopped:      %s\n", run.StoppedAt.Format("2006-01-02 15:04:05"))
	}
	if run.StopReason != nil {
		fmt.Printf("Stop reason:  %s\n", *run.StopReason)
	}

	fmt.Println("\nStep Trail")
	fmt.Println("----------")
	if len(trace.StepRuns) == 0 {
		fmt.Println("No step records yet")
		return
	}
	for _, sr := range trace.StepRuns {
		line := fmt.Sprintf("  #%d  %-5s  %-9s  scheduled %s", sr.StepIndex, sr.Channel, sr.Status, sr.ScheduledFor.Format("2006-01-02 15:04"))
		if sr.ExecutedAt != nil {
			line += "  executed " + sr.ExecutedAt.Format("2006-01-02 15:04")
		}
		if sr.ErrorMessage != nil {
			line += "  error: " + *sr.ErrorMessage
		}
		fmt.Println(line)
	}
}

func listRuns(client *cli.Client) {
	response, err := client.GetRuns(customerFilter, statusFilter)
	if err != nil {
		fmt.Printf("Failed to get runs: %v\n", err)
		os.Exit(1)
	}

	runs := response.Runs
	if len(runs) > runLimit {
		runs = runs[:runLimit]
	}

	if outputJSON {
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return
	}

	fmt.Printf("Found %d run(s) (total %d):\n\n", len(runs), response.Total)
	fmt.Printf("%-36s  %-36s  %-20s  %-4s  %-19s\n", "Run ID", "Customer", "Status", "Step", "Started At")
	for _, r := range runs {
		fmt.Printf("%-36s  %-36s  %-20s  %-4d  %-19s\n",
			r.ID, r.CustomerID, r.Status, r.CurrentStepIndex, r.StartedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Println("\nView details:")
	fmt.Println("  outreach runs <run-id>")
}
