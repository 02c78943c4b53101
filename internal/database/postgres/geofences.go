package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/geofence"
)

// GeofenceRepository handles database operations for location geofences.
type GeofenceRepository struct {
	pool *Pool
}

// NewGeofenceRepository creates a new geofence repository.
func NewGeofenceRepository(pool *Pool) *GeofenceRepository {
	return &GeofenceRepository{pool: pool}
}

// Get retrieves the geofence for a location.
func (r *GeofenceRepository) Get(ctx context.Context, locationID string) (*geofence.Geofence, error) {
	var (
		fence    geofence.Geofence
		lat, lon sql.NullFloat64
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude, radius_m, wifi_ssid
		FROM locations
		WHERE id = $1
	`, locationID).Scan(&fence.LocationID, &lat, &lon, &fence.RadiusMeters, &fence.WifiSSID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		fence.Latitude = &lat.Float64
		fence.Longitude = &lon.Float64
	}
	return &fence, nil
}

// Save stores or replaces the geofence for a location.
func (r *GeofenceRepository) Save(ctx context.Context, fence geofence.Geofence) error {
	var lat, lon sql.NullFloat64
	if fence.Latitude != nil && fence.Longitude != nil {
		lat = sql.NullFloat64{Float64: *fence.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: *fence.Longitude, Valid: true}
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO locations (id, latitude, longitude, radius_m, wifi_ssid)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			radius_m = EXCLUDED.radius_m,
			wifi_ssid = EXCLUDED.wifi_ssid
	`, fence.LocationID, lat, lon, fence.RadiusMeters, fence.WifiSSID)
	return err
}
