package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"krishna_store/internal/domain"
	"krishna_store/internal/notify"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Issuer hands out one-time codes for a phone and purpose
type Issuer interface {
	Issue(ctx context.Context, phone, purpose string) (string, error)
}

// Provider both issues and verifies codes
type Provider interface {
	Issuer
	Verifier
}

// Verifier consumes codes produced by an Issuer
type Verifier interface {
	Verify(ctx context.Context, phone, purpose, code string) error
}

// Config tunes code generation and throttling
type Config struct {
	Length       int
	TTL          time.Duration
	ResendWindow time.Duration
	MaxAttempts  int
}

// Service stores hashed codes in the database, throttles resends in Redis
// and delivers codes by SMS.
type Service struct {
	db     *gorm.DB
	rdb    redis.Cmdable
	sender notify.Sender
	cfg    Config
	now    func() time.Time
}

// NewService creates an OTP service
func NewService(db *gorm.DB, rdb redis.Cmdable, sender notify.Sender, cfg Config) *Service {
	if cfg.Length <= 0 {
		cfg.Length = 6 // Six digit codes by default
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5 // Wrong guesses before a code burns
	}
	return &Service{db: db, rdb: rdb, sender: sender, cfg: cfg, now: time.Now}
}

func resendKey(phone, purpose string) string {
	return fmt.Sprintf("otp:res:%s:%s", purpose, phone)
}

// Issue generates, stores and sends a fresh code. Any earlier unused code for
// the same phone and purpose stops being valid.
func (s *Service) Issue(ctx context.Context, phone, purpose string) (string, error) {
	if !domain.ValidOTPPurpose(purpose) {
		return "", domain.ValidationError("Unknown OTP purpose")
	}
	key := resendKey(phone, purpose)
	if s.cfg.ResendWindow > 0 {
		ok, err := s.rdb.SetNX(ctx, key, 1, s.cfg.ResendWindow).Result() // Key expires with the window
		if err != nil {
			return "", fmt.Errorf("otp throttle: %w", err)
		}
		if !ok { // A code went out recently
			return "", domain.NewError(domain.KindValidation, "Please wait before requesting a new OTP", domain.ErrOTPThrottled)
		}
	}

	code, err := s.generateCode()
	if err != nil {
		s.releaseThrottle(ctx, key)
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.releaseThrottle(ctx, key)
		return "", fmt.Errorf("hash otp: %w", err)
	}

	now := s.now()
	record := domain.OTP{
		Phone:     phone,
		Purpose:   purpose,
		CodeHash:  string(hash), // Plain code is never stored
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Supersede older codes
		if err := tx.Model(&domain.OTP{}).
			Where("phone = ? AND purpose = ? AND used_at IS NULL", phone, purpose).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		s.releaseThrottle(ctx, key)
		return "", fmt.Errorf("store otp: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.cfg.TTL.Minutes()))
	if err := s.sender.SendSMS(ctx, phone, message); err != nil {
		s.consume(ctx, &record, s.now()) // Leave no usable code behind when delivery failed
		s.releaseThrottle(ctx, key)
		return "", fmt.Errorf("send otp sms: %w", err)
	}
	logrus.WithFields(logrus.Fields{"phone": phone, "purpose": purpose, "otp_id": record.ID}).Info("OTP issued")
	return code, nil
}

// Verify checks code against the newest live record and consumes it on success
func (s *Service) Verify(ctx context.Context, phone, purpose, code string) error {
	var record domain.OTP
	err := s.db.WithContext(ctx).
		Where("phone = ? AND purpose = ? AND used_at IS NULL", phone, purpose).
		Order("id desc"). // Newest code wins
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.KindValidation, "Invalid or expired OTP", domain.ErrOTPNotFound)
	}
	if err != nil {
		return err
	}

	now := s.now()
	if now.After(record.ExpiresAt) {
		s.consume(ctx, &record, now)
		return domain.NewError(domain.KindValidation, "Invalid or expired OTP", domain.ErrOTPExpired)
	}
	if record.Attempts >= s.cfg.MaxAttempts {
		s.consume(ctx, &record, now)
		return domain.NewError(domain.KindValidation, "Too many attempts. Please request a new OTP", domain.ErrOTPMaxAttempts)
	}
	if err := s.db.WithContext(ctx).Model(&record).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error; err != nil { // Counted before comparing
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		if record.Attempts+1 >= s.cfg.MaxAttempts {
			s.consume(ctx, &record, now)
		}
		return domain.NewError(domain.KindValidation, "Invalid or expired OTP", domain.ErrOTPInvalid)
	}
	s.consume(ctx, &record, now)
	return nil
}

func (s *Service) consume(ctx context.Context, record *domain.OTP, at time.Time) {
	if err := s.db.WithContext(ctx).Model(record).Update("used_at", at).Error; err != nil {
		logrus.WithFields(logrus.Fields{"otp_id": record.ID, "error": err.Error()}).Warn("Failed to mark OTP used")
	}
}

func (s *Service) releaseThrottle(ctx context.Context, key string) {
	if s.cfg.ResendWindow <= 0 {
		return // Throttling disabled
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		// The caller may have to wait out the window
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Failed to release OTP throttle")
	}
}

// generateCode returns a cryptographically random numeric code
func (s *Service) generateCode() (string, error) {
	digits := make([]byte, s.cfg.Length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64()) // ASCII digit
	}
	return string(digits), nil
}
