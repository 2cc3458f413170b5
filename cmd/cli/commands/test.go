package commands

import (
	"fmt"
	"os"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event [customer-id] [type]",
	Short: "Post a customer event",
	Long: `Post a customer event to the outreach server. A reply, LINE friend
add, visit, or call stops any workflow run going for the customer.

Valid types: reply, line_add, visit, call, manual

Examples:
  outreach event 6f1b... reply
  outreach event 6f1b... visit`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		customerID, err := uuidFromArg(args[0], "customer-id")
		if err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}

		client := apiClient()

		stopped, err := client.TriggerEvent(&models.TriggerEventRequest{
			CustomerID: customerID,
			Type:       models.StopTrigger(args[1]),
		})
		if err != nil {
			fmt.Printf("Failed to post event: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Event recorded; %d run(s) stopped\n", stopped)
	},
}

func init() {
	rootCmd.AddCommand(eventCmd)
}
