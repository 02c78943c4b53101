//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/attendance-gate/internal/attendance"
	"github.com/kozaktomas/attendance-gate/internal/config"
	"github.com/kozaktomas/attendance-gate/internal/database"
	"github.com/kozaktomas/attendance-gate/internal/facematch"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := Migrate(ctx, pool, 4); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestAttendanceRepository_DuplicateDay(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	day := attendance.NewDay("emp-1", date)
	day.State = attendance.StateCheckedIn

	if err := repo.CreateDay(ctx, day); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := repo.CreateDay(ctx, day); !errors.Is(err, database.ErrDuplicateDay) {
		t.Fatalf("expected ErrDuplicateDay on second insert, got %v", err)
	}

	// Different date for the same employee is a separate record.
	other := attendance.NewDay("emp-1", date.AddDate(0, 0, 1))
	if err := repo.CreateDay(ctx, other); err != nil {
		t.Fatalf("insert for next day failed: %v", err)
	}
}

func TestAttendanceRepository_ConcurrentCreate(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	const goroutines = 20
	var wg sync.WaitGroup
	var created, duplicates atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			day := attendance.NewDay("emp-race", date)
			day.State = attendance.StateCheckedIn
			err := repo.CreateDay(ctx, day)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, database.ErrDuplicateDay):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("expected exactly one successful insert, got %d", created.Load())
	}
	if duplicates.Load() != goroutines-1 {
		t.Errorf("expected %d duplicate errors, got %d", goroutines-1, duplicates.Load())
	}
}

func TestAttendanceRepository_UpdateRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	checkIn := date.Add(9 * time.Hour)

	day := attendance.NewDay("emp-2", date)
	day.State = attendance.StateCheckedIn
	day.CheckInAt = &checkIn
	day.CheckInMethod = "face"
	day.CheckInConfidence = 91.5
	day.Late = true

	if err := repo.CreateDay(ctx, day); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	checkOut := date.Add(17 * time.Hour)
	day.State = attendance.StateCheckedOut
	day.CheckOutAt = &checkOut
	day.CheckOutMethod = "face"
	day.CheckOutConfidence = 88.0
	if err := repo.UpdateDay(ctx, day); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.GetDay(ctx, "emp-2", date)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a day record")
	}
	if got.State != attendance.StateCheckedOut {
		t.Errorf("expected checked_out, got %s", got.State)
	}
	if got.CheckInAt == nil || !got.CheckInAt.Equal(checkIn) {
		t.Errorf("check-in timestamp did not round-trip: %v", got.CheckInAt)
	}
	if !got.Late {
		t.Error("late flag did not round-trip")
	}
}

func TestDescriptorRepository_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewDescriptorRepository(pool)

	d := facematch.Descriptor{
		ID:         uuid.New(),
		EmployeeID: "emp-1",
		Embedding:  []float32{0.1, 0.2, 0.3, 0.4},
		Quality:    87.5,
		EnrolledAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := repo.Save(ctx, d); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.GetByEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(got))
	}
	if got[0].ID != d.ID {
		t.Errorf("id did not round-trip: %s", got[0].ID)
	}
	if len(got[0].Embedding) != 4 {
		t.Fatalf("expected 4-dim embedding, got %d", len(got[0].Embedding))
	}

	n, err := repo.DeleteByEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
}
