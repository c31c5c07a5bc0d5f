package repository

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/before-thirty/live-chat/internal/domain"
)

func memberIDs(g *domain.Group) []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	sort.Strings(ids)
	return ids
}

func createUsers(t *testing.T, repo *GormGroupRepository, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := repo.CreateUser(context.Background(), &domain.User{ID: id, Name: "user " + id}); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", id, err)
		}
	}
}

func TestGroupCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGroupRepository(newTestDB(t))
	createUsers(t, repo, "a", "b")

	tests := []struct {
		name    string
		members []string
		want    []string
		wantErr error
	}{
		{name: "no members", members: []string{}, want: []string{}},
		{name: "existing members", members: []string{"b", "a"}, want: []string{"a", "b"}},
		{name: "duplicates collapse", members: []string{"a", "a"}, want: []string{"a"}},
		{name: "unknown member", members: []string{"a", "ghost"}, wantErr: ErrMembersNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := repo.Create(ctx, tt.name, tt.members)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			got := memberIDs(g)
			if len(got) != len(tt.want) {
				t.Fatalf("members = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("members = %v, want %v", got, tt.want)
				}
			}
		})
	}

	groups, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(groups) != 3 {
		t.Errorf("List() returned %d groups, want 3 (failed create must not persist)", len(groups))
	}
}

func TestGroupMembershipChanges(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGroupRepository(newTestDB(t))
	createUsers(t, repo, "a", "b")

	g, err := repo.Create(ctx, "crew", []string{"a"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	g, err = repo.AddMember(ctx, g.ID, "b")
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if got := memberIDs(g); len(got) != 2 {
		t.Fatalf("after add members = %v, want [a b]", got)
	}

	// adding twice keeps one row
	g, err = repo.AddMember(ctx, g.ID, "b")
	if err != nil {
		t.Fatalf("AddMember() again error = %v", err)
	}
	if got := memberIDs(g); len(got) != 2 {
		t.Fatalf("after re-add members = %v, want [a b]", got)
	}

	g, err = repo.RemoveMember(ctx, g.ID, "a")
	if err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if got := memberIDs(g); len(got) != 1 || got[0] != "b" {
		t.Fatalf("after remove members = %v, want [b]", got)
	}

	if _, err := repo.AddMember(ctx, g.ID, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("AddMember(ghost) error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.AddMember(ctx, "nope", "a"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("AddMember(no group) error = %v, want ErrGroupNotFound", err)
	}
	if _, err := repo.RemoveMember(ctx, "nope", "a"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("RemoveMember(no group) error = %v, want ErrGroupNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("GetByID(no group) error = %v, want ErrGroupNotFound", err)
	}
}

func TestCreateUserGeneratesID(t *testing.T) {
	repo := NewGormGroupRepository(newTestDB(t))

	u := &domain.User{Name: "Ana", Email: "ana@example.com"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Errorf("CreateUser() left user = %+v", u)
	}
}
