package parts

import (
	"fmt"
	"strconv"

	"github.com/crucial707/opificio-cmms/cmd/cli/client"
	"github.com/crucial707/opificio-cmms/cmd/cli/output"
	"github.com/spf13/cobra"
)

// InitParts registers spare parts commands on the root command.
func InitParts(rootCmd *cobra.Command) {
	partsCmd := &cobra.Command{
		Use:   "parts",
		Short: "Manage spare parts inventory",
	}

	partsCmd.AddCommand(listCmd(), adjustCmd())
	rootCmd.AddCommand(partsCmd)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List spare parts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Items []struct {
					ID          int     `json:"id"`
					Name        string  `json:"name"`
					Code        string  `json:"code"`
					Quantity    int     `json:"quantity"`
					MinQuantity int     `json:"min_quantity"`
					UnitCost    float64 `json:"unit_cost"`
					LowStock    bool    `json:"low_stock"`
				} `json:"items"`
			}
			if err := client.Call("GET", "/v1/parts", nil, &resp); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(resp.Items))
			for _, p := range resp.Items {
				stock := strconv.Itoa(p.Quantity)
				if p.LowStock {
					stock += " (LOW)"
				}
				rows = append(rows, []interface{}{p.ID, p.Code, p.Name, stock, p.MinQuantity, p.UnitCost})
			}
			output.RenderTable([]string{"ID", "Code", "Name", "Stock", "Min", "Unit Cost"}, rows)
			return nil
		},
	}
}

func adjustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <id> <delta>",
		Short: "Adjust stock quantity (negative to consume)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid part id: %s", args[0])
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta: %s", args[1])
			}

			var resp struct {
				Quantity int `json:"quantity"`
			}
			err = client.Call("POST", fmt.Sprintf("/v1/parts/%d/adjust", id),
				map[string]int{"delta": delta}, &resp)
			if err != nil {
				return err
			}
			fmt.Printf("Part %d stock is now %d\n", id, resp.Quantity)
			return nil
		},
	}
}
