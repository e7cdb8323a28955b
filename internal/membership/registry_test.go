package membership

import (
	"fmt"
	"testing"

	"github.com/courier-dev/courier/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMembership{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedGroupAndUser(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()

	user := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	group := models.Group{Name: "Team"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	return group.ID, user.ID
}

func TestAddDuplicateMember(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	groupID, userID := seedGroupAndUser(t, db)

	if err := reg.Add(groupID, userID); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	if err := reg.Add(groupID, userID); err != ErrAlreadyMember {
		t.Fatalf("second Add: got %v, want ErrAlreadyMember", err)
	}

	members, err := reg.Members(groupID)
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("membership count changed: got %d, want 1", len(members))
	}
}

func TestRemoveAbsentMember(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	groupID, userID := seedGroupAndUser(t, db)

	if err := reg.Remove(groupID, userID); err != ErrNotMember {
		t.Fatalf("Remove of absent pair: got %v, want ErrNotMember", err)
	}

	var count int64
	if err := db.Model(&models.GroupMembership{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("storage changed: got %d rows, want 0", count)
	}
}

func TestRemoveThenIsMember(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)
	groupID, userID := seedGroupAndUser(t, db)

	if err := reg.Add(groupID, userID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ok, err := reg.IsMember(groupID, userID)
	if err != nil || !ok {
		t.Fatalf("IsMember after Add: got (%v, %v), want (true, nil)", ok, err)
	}

	if err := reg.Remove(groupID, userID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	ok, err = reg.IsMember(groupID, userID)
	if err != nil {
		t.Fatalf("IsMember failed: %v", err)
	}
	if ok {
		t.Error("IsMember after Remove: got true, want false")
	}

	// Re-adding after removal must succeed, not hit the unique index.
	if err := reg.Add(groupID, userID); err != nil {
		t.Fatalf("re-Add after Remove failed: %v", err)
	}
}

func TestMembersOrder(t *testing.T) {
	db := setupDB(t)
	reg := NewRegistry(db)

	group := models.Group{Name: "Team"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	var want []uint
	for i := 0; i < 3; i++ {
		user := models.User{Name: "u", Email: fmt.Sprintf("u%d@example.com", i), PasswordHash: "x"}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if err := reg.Add(group.ID, user.ID); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		want = append(want, user.ID)
	}

	got, err := reg.Members(group.ID)
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("member count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d: got %d, want %d (join order)", i, got[i], want[i])
		}
	}
}
