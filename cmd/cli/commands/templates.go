package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List message templates",
	Long: `List message templates from the outreach server. Workflow steps
reference templates by ID; step content is re-read at dispatch time, so
editing a template changes messages for runs already in flight.

Examples:
  outreach templates
  outreach templates --json`,
	Run: func(cmd *cobra.Command, args []string) {
		client := apiClient()

		templates, err := client.GetTemplates()
		if err != nil {
			fmt.Printf("Failed to get templates: %v\n", err)
			os.Exit(1)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(templates, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(templates) == 0 {
			fmt.Println("No templates found")
			return
		}

		fmt.Printf("Found %d template(s):\n\n", len(templates))
		fmt.Printf("%-36s  %-30s  %-30s\n", "ID", "Name", "Subject")
		for _, t := range templates {
			subject := ""
			if t.Subject != nil {
				subject = *t.Subject
			}
			fmt.Printf("%-36s  %-30s  %-30s\n", t.ID, truncate(t.Name, 30), truncate(subject, 30))
		}
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
