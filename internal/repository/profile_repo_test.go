package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Growthfyi/squeak/internal/model"
)

func TestProfileCreateAndGetByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "org-a", "user-1", "Grace", "H", "g.png")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("profile was not assigned an id")
	}

	got, err := repo.GetByUser(ctx, "org-a", "user-1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got profile %q, want %q", got.ID, created.ID)
	}
	if got.FirstName != "Grace" {
		t.Errorf("FirstName = %q, want %q", got.FirstName, "Grace")
	}
	if got.Role != "user" {
		t.Errorf("Role = %q, want %q for a newly registered end user", got.Role, "user")
	}
}

func TestProfileGetByUserTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepo(db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "org-a", "user-1", "Grace", "H", ""); err != nil {
		t.Fatalf("Create org-a: %v", err)
	}

	// Same external identity, different organization: must not resolve.
	if _, err := repo.GetByUser(ctx, "org-b", "user-1"); !errors.Is(err, ErrProfileMissing) {
		t.Errorf("cross-tenant lookup error = %v, want ErrProfileMissing", err)
	}

	// Registering in the second organization creates a distinct profile.
	second, err := repo.Create(ctx, "org-b", "user-1", "Grace", "H", "")
	if err != nil {
		t.Fatalf("Create org-b: %v", err)
	}

	a, err := repo.GetByUser(ctx, "org-a", "user-1")
	if err != nil {
		t.Fatalf("GetByUser org-a: %v", err)
	}
	b, err := repo.GetByUser(ctx, "org-b", "user-1")
	if err != nil {
		t.Fatalf("GetByUser org-b: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("same profile id %q resolved in both organizations", a.ID)
	}
	if b.ID != second.ID {
		t.Errorf("org-b resolved profile %q, want %q", b.ID, second.ID)
	}

	var readonlyCount int64
	db.Model(&model.ProfileReadonly{}).Count(&readonlyCount)
	if readonlyCount != 2 {
		t.Errorf("readonly rows = %d, want 2", readonlyCount)
	}
}

func TestConfigGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewConfigRepo(db)
	ctx := context.Background()

	seeded := model.SqueakConfig{
		OrganizationID: "org-a",
		PermalinkBase:  "forum",
	}
	if err := db.Create(&seeded).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}
	// An explicit update, because create would fold the zero value back into
	// the column default.
	if err := db.Model(&seeded).Update("question_auto_publish", false).Error; err != nil {
		t.Fatalf("update config: %v", err)
	}

	got, err := repo.Get(ctx, "org-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PermalinkBase != "forum" {
		t.Errorf("PermalinkBase = %q, want %q", got.PermalinkBase, "forum")
	}
	if got.QuestionAutoPublish {
		t.Error("QuestionAutoPublish = true, want false as seeded")
	}

	if _, err := repo.Get(ctx, "org-missing"); !errors.Is(err, ErrConfigMissing) {
		t.Errorf("missing config error = %v, want ErrConfigMissing", err)
	}
}
