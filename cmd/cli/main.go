package main

import (
	"fmt"
	"os"

	"github.com/crucial707/opificio-cmms/cmd/cli/auth"
	"github.com/crucial707/opificio-cmms/cmd/cli/parts"
	"github.com/crucial707/opificio-cmms/cmd/cli/root"
	"github.com/crucial707/opificio-cmms/cmd/cli/schedules"
	"github.com/crucial707/opificio-cmms/cmd/cli/workorders"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	workorders.InitWorkOrders(rootCmd)
	schedules.InitSchedules(rootCmd)
	parts.InitParts(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
