package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance-gate/internal/config"
	"github.com/kozaktomas/attendance-gate/internal/database/postgres"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
	"github.com/kozaktomas/attendance-gate/internal/verification"
	"github.com/kozaktomas/attendance-gate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification API server",
	Long: `Start the Attendance Gate API server.
The server exposes verification, enrollment, identification and attendance
lookup endpoints for the portal backend and kiosk clients.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// buildIdentifyIndex loads all enrolled descriptors into the in-memory HNSW
// index used by the kiosk identify endpoint.
func buildIdentifyIndex(ctx context.Context, descriptors *postgres.DescriptorRepository) (*facematch.Index, error) {
	all, err := descriptors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading descriptors: %w", err)
	}
	index := facematch.NewIndex()
	index.Build(all)
	fmt.Printf("Identification index built with %d descriptors\n", index.Len())
	return index, nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if !cmd.Flags().Changed("port") {
		port = cfg.Server.Port
	}
	if !cmd.Flags().Changed("host") {
		host = cfg.Server.Host
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := postgres.Migrate(ctx, pool, cfg.Verification.DescriptorDim); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	descriptorRepo := postgres.NewDescriptorRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	geofenceRepo := postgres.NewGeofenceRepository(pool)
	policyRepo := postgres.NewPolicyRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)

	index, err := buildIdentifyIndex(ctx, descriptorRepo)
	if err != nil {
		return err
	}

	lockWait := time.Duration(cfg.Verification.LockWaitMillis) * time.Millisecond
	verifier := verification.NewService(
		descriptorRepo, employeeRepo, geofenceRepo, policyRepo, attendanceRepo,
		lockWait, verification.NewMetrics(),
	)
	enroller := verification.NewEnroller(
		descriptorRepo, employeeRepo, policyRepo, index, cfg.Verification.DescriptorDim,
	)

	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, port, host, web.Deps{
		Verifier: verifier,
		Enroller: enroller,
		Index:    index,
		Policies: policyRepo,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Attendance Gate API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
