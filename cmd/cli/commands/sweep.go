package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var idleSweep bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Trigger a dispatcher sweep",
	Long: `Trigger one dispatcher sweep on the outreach server. Every run whose
next step is due is advanced by one step. Requires the dispatch secret.

Examples:
  outreach sweep --dispatch-secret <secret>
  outreach sweep --idle                         # idle-customer sweep instead`,
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		if idleSweep {
			flagged, err := client.TriggerIdleSweep()
			if err != nil {
				fmt.Printf("Idle sweep failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Idle sweep complete; %d customer(s) flagged\n", flagged)
			return
		}

		result, err := client.TriggerDispatch()
		if err != nil {
			fmt.Printf("Dispatch sweep failed: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return
		}

		fmt.Printf("Sweep complete: %d due, %d processed\n", result.Due, result.Processed)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().BoolVar(&idleSweep, "idle", false, "Run the idle-customer sweep instead")
}
