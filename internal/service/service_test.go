package service

import (
	"context"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

type issuedOTP struct {
	phone, purpose string
}

// fakeOTP records issued codes and verifies against a fixed code
type fakeOTP struct {
	code      string
	issueErr  error
	verifyErr error
	issued    []issuedOTP
}

func (f *fakeOTP) Issue(_ context.Context, phone, purpose string) (string, error) {
	f.issued = append(f.issued, issuedOTP{phone: phone, purpose: purpose})
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return f.code, nil
}

func (f *fakeOTP) Verify(_ context.Context, _, _, code string) error {
	if f.verifyErr != nil {
		return f.verifyErr
	}
	if code != f.code {
		return domain.NewError(domain.KindValidation, "Invalid or expired OTP", domain.ErrOTPInvalid)
	}
	return nil
}

func createUser(t *testing.T, gdb *gorm.DB, u domain.User) domain.User {
	t.Helper()
	if u.Slug == "" {
		u.Slug = u.Phone
	}
	if u.Role == "" {
		u.Role = domain.RoleCustomer
	}
	u.IsActive = true
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func countUsers(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&domain.User{}).Count(&n).Error)
	return n
}
