package service

import (
	"context"
	"errors"
	"krishna_store/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// claimSlugOnce inserts a rival user holding slug just before the first
// matching user insert, the way a concurrent request would.
func claimSlugOnce(t *testing.T, gdb *gorm.DB, slug string) {
	t.Helper()
	claimed := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:claim_slug", func(tx *gorm.DB) {
		u, ok := tx.Statement.Dest.(*domain.User)
		if !ok || claimed || u.Slug != slug {
			return
		}
		claimed = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (name, phone, role, slug, is_verified, is_active, additional_addresses, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			"Rival", "9111111111", domain.RoleSubadmin, slug, true, true, "[]", now, now,
		)
	})
	require.NoError(t, err)
}

func TestCreateSubadmin_ConcurrentSlugClaimGetsFreshSlug(t *testing.T) {
	gdb := setupTestDB(t)
	claimSlugOnce(t, gdb, "ravi-kumar")
	svc := NewSubadminService(gdb, &fakeOTP{code: "123456"})

	created, err := svc.Create(context.Background(), domain.RoleAdmin, CreateSubadminInput{Name: "Ravi Kumar", Phone: "9876543210"})
	require.NoError(t, err)

	var stored domain.User
	require.NoError(t, gdb.First(&stored, created.ID).Error)
	assert.NotEqual(t, "ravi-kumar", stored.Slug)
	assert.True(t, strings.HasPrefix(stored.Slug, "ravi-kumar-"), stored.Slug)
	assert.EqualValues(t, 2, countUsers(t, gdb))
}

func TestCreateSubadmin_ConcurrentPhoneClaimStillConflicts(t *testing.T) {
	gdb := setupTestDB(t)
	err := gdb.Callback().Create().Before("gorm:create").Register("test:claim_phone", func(tx *gorm.DB) {
		u, ok := tx.Statement.Dest.(*domain.User)
		if !ok || u.Name != "Ravi" {
			return
		}
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT OR IGNORE INTO users (name, phone, role, slug, is_verified, is_active, additional_addresses, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			"Rival", u.Phone, domain.RoleSubadmin, "rival", true, true, "[]", now, now,
		)
	})
	require.NoError(t, err)
	svc := NewSubadminService(gdb, &fakeOTP{code: "123456"})

	_, err = svc.Create(context.Background(), domain.RoleAdmin, CreateSubadminInput{Name: "Ravi", Phone: "9876543210"})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}
