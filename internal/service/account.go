package service

import (
	"context"
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/otp"
	"krishna_store/internal/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegisterInput is a customer self-registration
type RegisterInput struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"dateOfBirth"` // Optional, enables birthday wishes
}

// Registered is the result of a registration; OTP is empty when issuance failed
type Registered struct {
	User domain.PublicUser `json:"user"`
	OTP  string            `json:"otp,omitempty"`
}

// Session is returned after a successful OTP verification
type Session struct {
	Token string            `json:"token"` // Bearer JWT
	User  domain.PublicUser `json:"user"`
}

// AccountService handles customer registration and OTP login
type AccountService struct {
	db        *gorm.DB
	otp       otp.Provider
	jwtSecret string
	jwtTTL    time.Duration
}

// NewAccountService creates the service
func NewAccountService(db *gorm.DB, provider otp.Provider, jwtSecret string, jwtTTL time.Duration) *AccountService {
	return &AccountService{db: db, otp: provider, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// Register creates a customer account and sends a registration OTP once the
// account is committed.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Registered, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, domain.ValidationError("Name and phone are required")
	}
	user := domain.User{
		Name:        name,
		Phone:       phone,
		Email:       normalizeEmail(in.Email),
		Role:        domain.RoleCustomer, // Self-registration never grants staff roles
		IsActive:    true,
		DateOfBirth: in.DateOfBirth,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertUser(tx, &user)
	}); err != nil {
		return nil, db.Classify(err, "Server error while registering")
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "slug": user.Slug}).Info("Customer registered")

	result := &Registered{User: user.Public()}
	code, err := s.otp.Issue(ctx, user.Phone, domain.OTPPurposeRegister)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Warn("OTP creation failed but customer was registered")
		return result, nil
	}
	result.OTP = code
	return result, nil
}

// SendLoginOTP issues a login code to an existing active account
func (s *AccountService) SendLoginOTP(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", domain.ValidationError("Phone is required")
	}
	if _, err := s.activeUserByPhone(ctx, phone); err != nil {
		return "", err
	}
	code, err := s.otp.Issue(ctx, phone, domain.OTPPurposeLogin)
	if err != nil {
		return "", db.Classify(err, "Failed to send OTP")
	}
	return code, nil
}

// VerifyOTP consumes a code, marks the phone verified and opens a session
func (s *AccountService) VerifyOTP(ctx context.Context, phone, purpose, code string) (*Session, error) {
	phone = strings.TrimSpace(phone)
	if purpose == "" {
		purpose = domain.OTPPurposeLogin // Default purpose
	}
	if phone == "" || code == "" {
		return nil, domain.ValidationError("Phone and OTP are required")
	}
	if !domain.ValidOTPPurpose(purpose) {
		return nil, domain.ValidationError("Unknown OTP purpose")
	}
	user, err := s.activeUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if err := s.otp.Verify(ctx, phone, purpose, code); err != nil {
		return nil, db.Classify(err, "Failed to verify OTP")
	}
	if !user.IsVerified { // First successful code proves phone ownership
		if err := s.db.WithContext(ctx).Model(user).Update("is_verified", true).Error; err != nil {
			return nil, db.Classify(err, "Failed to verify account")
		}
		user.IsVerified = true
	}
	token, err := utils.GenerateJWT(user.ID, user.Role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, domain.NewError(domain.KindUnknown, "Failed to generate token", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
	return &Session{Token: token, User: user.Public()}, nil
}

func (s *AccountService) activeUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("No account found for this phone number", domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, db.Classify(err, "Server error while loading account")
	}
	if !user.IsActive {
		return nil, domain.NewError(domain.KindAuthorization, "Account is deactivated", domain.ErrUserInactive)
	}
	return &user, nil
}
