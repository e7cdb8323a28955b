package fanout

import (
	"fmt"
	"testing"

	"github.com/courier-dev/courier/internal/membership"
	"github.com/courier-dev/courier/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:fanout_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMembership{}, &models.Notification{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()

	user := models.User{Name: "u", Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user.ID
}

func TestGroupFanout(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db)
	reg := membership.NewRegistry(db)

	group := models.Group{Name: "Team"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	members := map[uint]bool{}
	for i := 0; i < 3; i++ {
		id := seedUser(t, db, fmt.Sprintf("member%d@example.com", i))
		if err := reg.Add(group.ID, id); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		members[id] = true
	}
	outsider := seedUser(t, db, "outsider@example.com")

	created, err := engine.Create("Release", "v2 is out", ForGroup(group.ID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created rows: got %d, want 3", len(created))
	}

	for _, n := range created {
		if !members[n.UserID] {
			t.Errorf("row created for non-member %d", n.UserID)
		}
		if n.GroupID == nil || *n.GroupID != group.ID {
			t.Errorf("row %d missing group provenance", n.ID)
		}
		if n.ReadAt != nil {
			t.Errorf("row %d created already read", n.ID)
		}
	}

	var outsiderRows int64
	db.Model(&models.Notification{}).Where("user_id = ?", outsider).Count(&outsiderRows)
	if outsiderRows != 0 {
		t.Errorf("outsider got %d rows, want 0", outsiderRows)
	}
}

func TestUserTarget(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db)
	userID := seedUser(t, db, "solo@example.com")

	created, err := engine.Create("Hello", "just you", ForUser(userID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(created) != 1 {
		t.Fatalf("created rows: got %d, want 1", len(created))
	}
	if created[0].UserID != userID {
		t.Errorf("recipient: got %d, want %d", created[0].UserID, userID)
	}
	if created[0].GroupID != nil {
		t.Error("direct notification should carry no group provenance")
	}
}

func TestInvalidTargets(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db)

	if _, err := engine.Create("t", "m", Target{}); err != ErrInvalidTarget {
		t.Errorf("neither target: got %v, want ErrInvalidTarget", err)
	}

	one := uint(1)
	if _, err := engine.Create("t", "m", Target{UserID: &one, GroupID: &one}); err != ErrInvalidTarget {
		t.Errorf("both targets: got %v, want ErrInvalidTarget", err)
	}

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("rows written on validation failure: got %d, want 0", count)
	}
}

func TestMissingGroup(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db)

	if _, err := engine.Create("t", "m", ForGroup(99)); err != ErrGroupNotFound {
		t.Errorf("missing group: got %v, want ErrGroupNotFound", err)
	}
}

func TestMissingUser(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db)

	if _, err := engine.Create("t", "m", ForUser(99)); err != ErrUserNotFound {
		t.Errorf("missing user: got %v, want ErrUserNotFound", err)
	}
}
