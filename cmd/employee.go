package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/database/postgres"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage the employee directory projection",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add <employee-id>",
	Short: "Register or update an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeAdd,
}

func init() {
	rootCmd.AddCommand(employeeCmd)
	employeeCmd.AddCommand(employeeAddCmd)

	employeeAddCmd.Flags().String("name", "", "Employee display name")
	employeeAddCmd.Flags().String("location", "", "Registered work location id")
	employeeAddCmd.Flags().String("shift-start", "09:00", "Scheduled shift start (HH:MM)")
	employeeAddCmd.Flags().String("shift-end", "17:00", "Scheduled shift end (HH:MM)")
}

func runEmployeeAdd(cmd *cobra.Command, args []string) error {
	pool, err := openPool()
	if err != nil {
		return err
	}
	defer pool.Close()

	e := database.Employee{
		ID:         args[0],
		Name:       mustGetString(cmd, "name"),
		LocationID: mustGetString(cmd, "location"),
		ShiftStart: mustGetString(cmd, "shift-start"),
		ShiftEnd:   mustGetString(cmd, "shift-end"),
	}

	repo := postgres.NewEmployeeRepository(pool)
	if err := repo.Upsert(context.Background(), e); err != nil {
		return fmt.Errorf("saving employee: %w", err)
	}

	fmt.Printf("Employee %s saved\n", e.ID)
	return nil
}
