package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-gate",
	Short: "Biometric attendance verification engine",
	Long: `Attendance Gate verifies employee check-ins and check-outs for an HR
attendance portal. Each attempt is checked against the employee's enrolled
face descriptors and the location's geofence before the attendance state
machine commits the transition.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
