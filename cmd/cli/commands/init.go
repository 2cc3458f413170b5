package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/cli"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/spf13/cobra"
)

var (
	templateName string
	outputFile   string
)

var initCmd = &cobra.Command{
	Use:   "init [workflow-name]",
	Short: "Initialize a new workflow",
	Long: `Initialize a new follow-up workflow from a starter or create a blank one.

Available starters:
  - standard: Immediate email, then day-1 and day-3 follow-ups
  - line:     Immediate LINE message with an email fallback on day 2
  - blank:    Single-step skeleton

The generated file contains placeholder template IDs; replace them with
real message template IDs before deploying.

Examples:
  outreach init my-followup --template standard
  outreach init custom-followup --template blank --output custom.json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workflowName := args[0]

		// Determine output file name
		if outputFile == "" {
			outputFile = strings.ToLower(strings.ReplaceAll(workflowName, " ", "-")) + ".json"
		}

		// Check if file already exists
		if _, err := os.Stat(outputFile); err == nil {
			fmt.Printf("Error: File '%s' already exists\n", outputFile)
			os.Exit(1)
		}

		// Build starter
		req, err := loadStarter(templateName, workflowName)
		if err != nil {
			fmt.Printf("Error loading starter: %v\n", err)
			os.Exit(1)
		}

		// Save to file
		if err := cli.SaveWorkflowToFile(req, outputFile); err != nil {
			fmt.Printf("Error saving workflow: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created workflow '%s' from starter '%s'\n", workflowName, templateName)
		fmt.Printf("File: %s\n", outputFile)
		fmt.Println("\nNext steps:")
		fmt.Printf("  1. Fill in template IDs:  outreach templates\n")
		fmt.Printf("  2. Validate:              outreach validate %s\n", outputFile)
		fmt.Printf("  3. Deploy:                outreach deploy %s\n", outputFile)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&templateName, "template", "t", "blank", "Starter to use (standard, line, blank)")
	initCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file name (default: <workflow-name>.json)")
}

func loadStarter(starter, name string) (*models.CreateWorkflowRequest, error) {
	switch starter {
	case "standard":
		return createStandardStarter(name), nil
	case "line":
		return createLineStarter(name), nil
	case "blank":
		return createBlankStarter(name), nil
	default:
		return nil, fmt.Errorf("unknown starter: %s", starter)
	}
}

func createBlankStarter(name string) *models.CreateWorkflowRequest {
	return &models.CreateWorkflowRequest{
		Name: name,
		Steps: []models.CreateStepRequest{
			{
				Channel:     models.ChannelEmail,
				DaysAfter:   0,
				TimeOfDay:   "10:00",
				IsImmediate: true,
			},
		},
	}
}

func createStandardStarter(name string) *models.CreateWorkflowRequest {
	return &models.CreateWorkflowRequest{
		Name: name,
		Steps: []models.CreateStepRequest{
			{
				Channel:     models.ChannelEmail,
				DaysAfter:   0,
				TimeOfDay:   "10:00",
				IsImmediate: true,
			},
			{
				Channel:   models.ChannelEmail,
				DaysAfter: 1,
				TimeOfDay: "10:00",
			},
			{
				Channel:   models.ChannelEmail,
				DaysAfter: 3,
				TimeOfDay: "19:00",
			},
		},
	}
}

func createLineStarter(name string) *models.CreateWorkflowRequest {
	return &models.CreateWorkflowRequest{
		Name: name,
		Steps: []models.CreateStepRequest{
			{
				Channel:     models.ChannelLine,
				DaysAfter:   0,
				TimeOfDay:   "10:00",
				IsImmediate: true,
			},
			{
				Channel:   models.ChannelEmail,
				DaysAfter: 2,
				TimeOfDay: "10:00",
			},
		},
	}
}
