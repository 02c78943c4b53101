package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/attendance-gate/internal/config"
	"github.com/kozaktomas/attendance-gate/internal/database/postgres"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
	"github.com/kozaktomas/attendance-gate/internal/policy"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage location geofences and policies",
}

var locationSetCmd = &cobra.Command{
	Use:   "set <location-id>",
	Short: "Register or update a location's geofence",
	Long: `Register a location's verification area: GPS center plus radius, a WiFi
network name, or both. A location with neither cannot location-verify and
depends on a face-only policy.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocationSet,
}

var locationPolicyCmd = &cobra.Command{
	Use:   "policy <location-id>",
	Short: "Set a location's policy override",
	Long: `Override the global verification policy for one location. Flags left at
their defaults keep the global default values.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocationPolicy,
}

func init() {
	rootCmd.AddCommand(locationCmd)
	locationCmd.AddCommand(locationSetCmd)
	locationCmd.AddCommand(locationPolicyCmd)

	locationSetCmd.Flags().Float64("lat", 0, "Latitude of the geofence center")
	locationSetCmd.Flags().Float64("lon", 0, "Longitude of the geofence center")
	locationSetCmd.Flags().Float64("radius", 0, "Geofence radius in meters")
	locationSetCmd.Flags().String("wifi", "", "Office WiFi SSID")

	def := policy.Default()
	locationPolicyCmd.Flags().Float64("threshold", def.FaceThreshold, "Minimum face match score (0-100)")
	locationPolicyCmd.Flags().Float64("normalization", def.DistanceNormalization, "Distance-to-score normalization constant")
	locationPolicyCmd.Flags().String("signals", string(def.RequiredSignals), "Required location signals (face-only, gps, wifi, gps-and-wifi, gps-or-wifi)")
	locationPolicyCmd.Flags().Int("grace", def.GraceMinutes, "Late grace period in minutes")
	locationPolicyCmd.Flags().Float64("min-quality", def.MinEnrollQuality, "Minimum enrollment quality (0-100)")
	locationPolicyCmd.Flags().Bool("exclusive", def.ExclusiveEnrollment, "Replace prior descriptors on enrollment instead of accumulating")
}

func openPool() (*postgres.Pool, error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	return postgres.NewPool(&cfg.Database)
}

func runLocationSet(cmd *cobra.Command, args []string) error {
	pool, err := openPool()
	if err != nil {
		return err
	}
	defer pool.Close()

	fence := geofence.Geofence{
		LocationID:   args[0],
		RadiusMeters: mustGetFloat64(cmd, "radius"),
		WifiSSID:     mustGetString(cmd, "wifi"),
	}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		lat := mustGetFloat64(cmd, "lat")
		lon := mustGetFloat64(cmd, "lon")
		fence.Latitude = &lat
		fence.Longitude = &lon
	}
	if !fence.HasCoordinates() && !fence.HasWifi() {
		fmt.Println("Warning: location has neither coordinates nor WiFi, only face-only policies can pass")
	}

	repo := postgres.NewGeofenceRepository(pool)
	if err := repo.Save(context.Background(), fence); err != nil {
		return fmt.Errorf("saving geofence: %w", err)
	}

	fmt.Printf("Geofence for location %s saved\n", fence.LocationID)
	return nil
}

func runLocationPolicy(cmd *cobra.Command, args []string) error {
	pool, err := openPool()
	if err != nil {
		return err
	}
	defer pool.Close()

	p := policy.Policy{
		FaceThreshold:         mustGetFloat64(cmd, "threshold"),
		DistanceNormalization: mustGetFloat64(cmd, "normalization"),
		RequiredSignals:       policy.SignalRequirement(mustGetString(cmd, "signals")),
		GraceMinutes:          mustGetInt(cmd, "grace"),
		MinEnrollQuality:      mustGetFloat64(cmd, "min-quality"),
		ExclusiveEnrollment:   mustGetBool(cmd, "exclusive"),
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	repo := postgres.NewPolicyRepository(pool)
	if err := repo.SaveOverride(context.Background(), args[0], p); err != nil {
		return fmt.Errorf("saving policy override: %w", err)
	}

	fmt.Printf("Policy override for location %s saved\n", args[0])
	return nil
}
