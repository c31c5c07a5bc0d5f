package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/before-thirty/live-chat/internal/domain"
)

func TestTripCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTripRepository(newTestDB(t))

	trip := &domain.Trip{Name: "Lisbon"}
	if err := repo.Create(ctx, trip); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if trip.ID == "" {
		t.Fatal("Create() left id empty")
	}

	got, err := repo.FindTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("FindTrip() error = %v", err)
	}
	if got.Name != "Lisbon" {
		t.Errorf("Name = %q, want Lisbon", got.Name)
	}

	if _, err := repo.FindTrip(ctx, "missing"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("FindTrip(missing) error = %v, want ErrTripNotFound", err)
	}
}

func TestTripCreateKeepsGivenID(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTripRepository(newTestDB(t))

	if err := repo.Create(ctx, &domain.Trip{ID: "trip-42", Name: "Porto"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := repo.FindTrip(ctx, "trip-42"); err != nil {
		t.Fatalf("FindTrip() error = %v", err)
	}
}

func TestCreateMembership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormTripRepository(db)

	if err := repo.Create(ctx, &domain.Trip{ID: "trip-42", Name: "Porto"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, user := range []string{"u1", "u2", "u1"} {
		if err := repo.CreateMembership(ctx, "trip-42", user); err != nil {
			t.Fatalf("CreateMembership(%s) error = %v", user, err)
		}
	}

	snap, err := repo.GetTripWithMembers(ctx, "trip-42")
	if err != nil {
		t.Fatalf("GetTripWithMembers() error = %v", err)
	}
	if len(snap.TripUsers) != 2 {
		t.Fatalf("got %d members, want 2 (repeat join is a no-op)", len(snap.TripUsers))
	}
	if snap.TripUsers[0].UserID != "u1" || snap.TripUsers[1].UserID != "u2" {
		t.Errorf("members = %+v, want join order u1, u2", snap.TripUsers)
	}
	if !snap.HasUser("u2") || snap.HasUser("u3") {
		t.Error("HasUser disagrees with the member list")
	}
}

func TestCreateMembershipUnknownTripWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormTripRepository(db)

	err := repo.CreateMembership(ctx, "nope", "u1")
	if !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("CreateMembership() error = %v, want ErrTripNotFound", err)
	}

	var count int64
	if err := db.Model(&domain.TripUserModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("trip_users has %d rows, want 0", count)
	}
}

func TestGetTripWithMembersEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTripRepository(newTestDB(t))

	if err := repo.Create(ctx, &domain.Trip{ID: "t", Name: "Empty"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	snap, err := repo.GetTripWithMembers(ctx, "t")
	if err != nil {
		t.Fatalf("GetTripWithMembers() error = %v", err)
	}
	if snap.TripUsers == nil || len(snap.TripUsers) != 0 {
		t.Errorf("TripUsers = %#v, want empty non-nil slice", snap.TripUsers)
	}

	if _, err := repo.GetTripWithMembers(ctx, "missing"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("GetTripWithMembers(missing) error = %v, want ErrTripNotFound", err)
	}
}
