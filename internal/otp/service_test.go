package otp

import (
	"context"
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/notify"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // every connection to :memory: is a separate database
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

type sentSMS struct {
	to, body string
}

func newTestService(t *testing.T, sendErr error) (*Service, *[]sentSMS, *miniredis.Miniredis, *gorm.DB) {
	t.Helper()
	gdb := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	var sent []sentSMS
	sender := notify.SenderFunc(func(ctx context.Context, to, body string) error {
		if sendErr != nil {
			return sendErr
		}
		sent = append(sent, sentSMS{to: to, body: body})
		return nil
	})
	svc := NewService(gdb, rdb, sender, Config{Length: 6, TTL: 5 * time.Minute, ResendWindow: time.Minute, MaxAttempts: 3})
	return svc, &sent, mr, gdb
}

func TestIssue_StoresHashAndSends(t *testing.T) {
	svc, sent, mr, gdb := newTestService(t, nil)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

	require.Len(t, *sent, 1)
	assert.Equal(t, "9876543210", (*sent)[0].to)
	assert.Contains(t, (*sent)[0].body, code)

	var records []domain.OTP
	require.NoError(t, gdb.Find(&records).Error)
	require.Len(t, records, 1)
	assert.NotEqual(t, code, records[0].CodeHash)
	assert.Nil(t, records[0].UsedAt)
	assert.True(t, mr.Exists(resendKey("9876543210", domain.OTPPurposeLogin)))
}

func TestIssue_Throttled(t *testing.T) {
	svc, _, mr, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	assert.ErrorIs(t, err, domain.ErrOTPThrottled)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	mr.FastForward(2 * time.Minute)
	_, err = svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	assert.NoError(t, err)
}

func TestIssue_SendFailureLeavesNoLiveCode(t *testing.T) {
	svc, _, mr, gdb := newTestService(t, errors.New("twilio down"))
	ctx := context.Background()

	_, err := svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	require.Error(t, err)

	var live int64
	require.NoError(t, gdb.Model(&domain.OTP{}).Where("used_at IS NULL").Count(&live).Error)
	assert.Zero(t, live)
	assert.False(t, mr.Exists(resendKey("9876543210", domain.OTPPurposeLogin)))
}

func TestIssue_SendFailureLogsCleanupErrors(t *testing.T) {
	gdb := setupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	sender := notify.SenderFunc(func(ctx context.Context, to, body string) error {
		// Both cleanup steps fail after the gateway does
		require.NoError(t, gdb.Callback().Update().Before("gorm:update").Register("test:fail_update", func(tx *gorm.DB) {
			_ = tx.AddError(errors.New("disk full"))
		}))
		mr.Close()
		return errors.New("twilio down")
	})
	svc := NewService(gdb, rdb, sender, Config{Length: 6, TTL: 5 * time.Minute, ResendWindow: time.Minute, MaxAttempts: 3})

	_, err := svc.Issue(context.Background(), "9876543210", domain.OTPPurposeLogin)
	require.Error(t, err)

	var warnings []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry.Message)
		}
	}
	assert.Contains(t, warnings, "Failed to mark OTP used")
	assert.Contains(t, warnings, "Failed to release OTP throttle")
}

func TestIssue_RejectsUnknownPurpose(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	_, err := svc.Issue(context.Background(), "9876543210", "reset")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestVerify(t *testing.T) {
	svc, _, mr, _ := newTestService(t, nil)
	ctx := context.Background()
	phone := "9876543210"

	code, err := svc.Issue(ctx, phone, domain.OTPPurposeLogin)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(ctx, phone, domain.OTPPurposeRegister, code), domain.ErrOTPNotFound)
	assert.ErrorIs(t, svc.Verify(ctx, phone, domain.OTPPurposeLogin, "000000x"), domain.ErrOTPInvalid)
	require.NoError(t, svc.Verify(ctx, phone, domain.OTPPurposeLogin, code))
	// Codes are single use
	assert.ErrorIs(t, svc.Verify(ctx, phone, domain.OTPPurposeLogin, code), domain.ErrOTPNotFound)

	// A newer code supersedes the older one
	mr.FastForward(2 * time.Minute)
	first, err := svc.Issue(ctx, phone, domain.OTPPurposeLogin)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	second, err := svc.Issue(ctx, phone, domain.OTPPurposeLogin)
	require.NoError(t, err)
	if first != second {
		assert.ErrorIs(t, svc.Verify(ctx, phone, domain.OTPPurposeLogin, first), domain.ErrOTPInvalid)
	}
	assert.NoError(t, svc.Verify(ctx, phone, domain.OTPPurposeLogin, second))
}

func TestVerify_Expired(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	assert.ErrorIs(t, svc.Verify(ctx, "9876543210", domain.OTPPurposeLogin, code), domain.ErrOTPExpired)
}

func TestVerify_MaxAttempts(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.Verify(ctx, "9876543210", domain.OTPPurposeLogin, "wrong"), domain.ErrOTPInvalid)
	}
	// The code was burned by the failed attempts
	assert.Error(t, svc.Verify(ctx, "9876543210", domain.OTPPurposeLogin, code))
}
