package schedules

import (
	"fmt"

	"github.com/crucial707/opificio-cmms/cmd/cli/client"
	"github.com/crucial707/opificio-cmms/cmd/cli/output"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/spf13/cobra"
)

// InitSchedules registers preventive schedule commands on the root command.
func InitSchedules(rootCmd *cobra.Command) {
	schedCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage preventive maintenance schedules",
	}

	schedCmd.AddCommand(
		listCmd(),
		createCmd(),
		scanCmd(),
	)

	rootCmd.AddCommand(schedCmd)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List preventive schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Items []models.PreventiveSchedule `json:"items"`
				Total int                         `json:"total"`
			}
			if err := client.Call("GET", "/v1/schedules", nil, &resp); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(resp.Items))
			for _, s := range resp.Items {
				lastRun := "never"
				if s.LastRunDate != nil {
					lastRun = s.LastRunDate.Format("2006-01-02")
				}
				rows = append(rows, []interface{}{
					s.ID, s.AssetID, s.TaskTitle, s.FrequencyDays,
					lastRun, s.NextDueDate.Format("2006-01-02"),
				})
			}
			output.RenderTable([]string{"ID", "Asset", "Task", "Every (days)", "Last Run", "Next Due"}, rows)
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	var taskTitle, description string
	var assetID, frequencyDays int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a preventive schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			var s models.PreventiveSchedule
			err := client.Call("POST", "/v1/schedules", map[string]interface{}{
				"asset_id":       assetID,
				"task_title":     taskTitle,
				"description":    description,
				"frequency_days": frequencyDays,
			}, &s)
			if err != nil {
				return err
			}
			fmt.Printf("Created schedule %d, next due %s\n", s.ID, s.NextDueDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().IntVar(&assetID, "asset", 0, "Asset id")
	cmd.Flags().StringVar(&taskTitle, "task", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().IntVar(&frequencyDays, "every", 30, "Frequency in days")
	return cmd
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run the due-date scan now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Success bool     `json:"success"`
				Count   int      `json:"count"`
				Errors  []string `json:"errors"`
				Message string   `json:"message"`
			}
			if err := client.Call("POST", "/v1/scan/run", map[string]string{}, &resp); err != nil {
				return err
			}

			if resp.Message != "" {
				fmt.Println(resp.Message)
				return nil
			}
			fmt.Printf("Generated %d work orders\n", resp.Count)
			for _, e := range resp.Errors {
				fmt.Println("  failed:", e)
			}
			return nil
		},
	}
}
