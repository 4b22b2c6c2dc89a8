package workorders

import (
	"fmt"
	"strconv"

	"github.com/crucial707/opificio-cmms/cmd/cli/client"
	"github.com/crucial707/opificio-cmms/cmd/cli/output"
	"github.com/crucial707/opificio-cmms/internal/models"
	"github.com/spf13/cobra"
)

// InitWorkOrders registers work order commands on the root command.
func InitWorkOrders(rootCmd *cobra.Command) {
	woCmd := &cobra.Command{
		Use:   "workorders",
		Short: "Manage work orders",
	}

	woCmd.AddCommand(
		listCmd(),
		createCmd(),
		statusCmd(),
		timerCmd(),
	)

	rootCmd.AddCommand(woCmd)
}

func listCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/v1/workorders"
			if status != "" {
				path += "?status=" + status
			}

			var resp struct {
				Items []models.WorkOrder `json:"items"`
				Total int                `json:"total"`
			}
			if err := client.Call("GET", path, nil, &resp); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(resp.Items))
			for _, wo := range resp.Items {
				due := ""
				if wo.DueDate != nil {
					due = wo.DueDate.Format("2006-01-02")
				}
				rows = append(rows, []interface{}{wo.ID, wo.Title, wo.Status, wo.Priority, wo.Category, due})
			}
			output.RenderTable([]string{"ID", "Title", "Status", "Priority", "Category", "Due"}, rows)
			fmt.Printf("%d of %d work orders\n", len(resp.Items), resp.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (e.g. OPEN, IN_PROGRESS)")
	return cmd
}

func createCmd() *cobra.Command {
	var title, description, priority, category string
	var assetID int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a work order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var wo models.WorkOrder
			err := client.Call("POST", "/v1/workorders", map[string]interface{}{
				"title":       title,
				"description": description,
				"asset_id":    assetID,
				"priority":    priority,
				"category":    category,
			}, &wo)
			if err != nil {
				return err
			}
			fmt.Printf("Created work order %d (%s)\n", wo.ID, wo.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Work order title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().IntVar(&assetID, "asset", 0, "Asset id")
	cmd.Flags().StringVar(&priority, "priority", "MEDIUM", "Priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new-status>",
		Short: "Transition a work order's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid work order id: %s", args[0])
			}
			err = client.Call("POST", fmt.Sprintf("/v1/workorders/%d/status", id),
				map[string]string{"status": args[1]}, nil)
			if err != nil {
				return err
			}
			fmt.Printf("Work order %d moved to %s\n", id, args[1])
			return nil
		},
	}
}

func timerCmd() *cobra.Command {
	timer := &cobra.Command{
		Use:   "timer",
		Short: "Drive the labor timer on a work order",
	}

	for _, action := range []string{"start", "pause", "stop"} {
		action := action
		timer.AddCommand(&cobra.Command{
			Use:   action + " <id>",
			Short: action + " the timer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid work order id: %s", args[0])
				}
				err = client.Call("POST", fmt.Sprintf("/v1/workorders/%d/timer/%s", id, action), map[string]string{}, nil)
				if err != nil {
					return err
				}
				fmt.Printf("Timer %s on work order %d\n", action, id)
				return nil
			},
		})
	}

	return timer
}
