package service

import (
	"context"
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/otp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateSubadminInput is the payload of a provisioning request
type CreateSubadminInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"` // Login phone, unique across roles
	Email string `json:"email"` // Optional
}

// UpdateSubadminInput changes only the fields that are present
type UpdateSubadminInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
}

// SubadminCreated is returned after provisioning. OTP is empty when issuance failed.
type SubadminCreated struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
	Role  string  `json:"role"`
	OTP   string  `json:"otp,omitempty"` // Stripped by the handler outside debug
}

// SubadminService manages staff accounts. Every operation requires an admin actor.
type SubadminService struct {
	db     *gorm.DB
	issuer otp.Issuer
}

// NewSubadminService creates the service
func NewSubadminService(db *gorm.DB, issuer otp.Issuer) *SubadminService {
	return &SubadminService{db: db, issuer: issuer}
}

// Create provisions a subadmin. The account is committed before the login OTP
// is requested; an OTP failure is logged and never undoes the account.
func (s *SubadminService) Create(ctx context.Context, actorRole string, in CreateSubadminInput) (*SubadminCreated, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.AuthorizationError("Only admin can create subadmins")
	}
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, domain.ValidationError("Name and phone are required")
	}

	user := domain.User{
		Name:       name,
		Phone:      phone,
		Email:      normalizeEmail(in.Email),
		Role:       domain.RoleSubadmin,
		IsVerified: true, // Provisioned by the admin, no registration OTP
		IsActive:   true,
	}
	// Rolled back on any returned error, committed otherwise
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertUser(tx, &user)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"phone": phone,
			"error": err.Error(),
		}).Error("Create subadmin failed")
		return nil, db.Classify(err, "Server error while creating subadmin")
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"slug":    user.Slug,
	}).Info("Subadmin created")

	result := &SubadminCreated{
		ID:    user.ID,
		Name:  user.Name,
		Phone: user.Phone,
		Email: user.Email,
		Role:  user.Role,
	}
	code, err := s.issuer.Issue(ctx, user.Phone, domain.OTPPurposeLogin)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("OTP creation failed but subadmin was created")
		return result, nil
	}
	result.OTP = code
	return result, nil
}

// List returns active subadmins, newest first
func (s *SubadminService) List(ctx context.Context, actorRole string) ([]domain.PublicUser, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.AuthorizationError("Only admin can view subadmins")
	}
	var users []domain.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", domain.RoleSubadmin, true).
		Order("created_at desc").Order("id desc"). // Newest first
		Find(&users).Error; err != nil {
		return nil, db.Classify(err, "Server error while fetching subadmins")
	}
	out := make([]domain.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public() // Never expose internal columns
	}
	return out, nil
}

// Update changes name, email or the active flag of a subadmin
func (s *SubadminService) Update(ctx context.Context, actorRole string, id uint, in UpdateSubadminInput) (*domain.PublicUser, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.AuthorizationError("Only admin can update subadmins")
	}
	var user domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findSubadmin(tx, id, &user); err != nil {
			return err
		}
		var fields []string
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" { // Blank names are ignored
			user.Name = strings.TrimSpace(*in.Name)
			fields = append(fields, "Name")
		}
		if in.Email != nil {
			user.Email = normalizeEmail(*in.Email) // Empty clears it
			if user.Email != nil {
				taken, err := emailTakenByOther(tx, *user.Email, user.ID)
				if err != nil {
					return err
				}
				if taken {
					return domain.ConflictError(userExistsMessage, domain.ErrEmailTaken)
				}
			}
			fields = append(fields, "Email")
		}
		if in.IsActive != nil {
			user.IsActive = *in.IsActive
			fields = append(fields, "IsActive")
		}
		if len(fields) == 0 {
			return nil // Nothing to change
		}
		return tx.Model(&user).Select(fields).Updates(&user).Error // Select lets false and nil through
	})
	if err != nil {
		return nil, db.Classify(err, "Server error while updating subadmin")
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "is_active": user.IsActive}).Info("Subadmin updated")
	public := user.Public()
	return &public, nil
}

// Deactivate soft-deletes a subadmin. Deactivating an inactive subadmin succeeds.
func (s *SubadminService) Deactivate(ctx context.Context, actorRole string, id uint) error {
	if actorRole != domain.RoleAdmin {
		return domain.AuthorizationError("Only admin can delete subadmins")
	}
	var user domain.User
	if err := findSubadmin(s.db.WithContext(ctx), id, &user); err != nil {
		return db.Classify(err, "Server error while deleting subadmin")
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("is_active", false).Error; err != nil {
		return db.Classify(err, "Server error while deleting subadmin")
	}
	logrus.WithField("user_id", user.ID).Info("Subadmin deactivated")
	return nil
}

func findSubadmin(tx *gorm.DB, id uint, user *domain.User) error {
	err := tx.Where("id = ? AND role = ?", id, domain.RoleSubadmin).First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("Subadmin not found", domain.ErrSubadminNotFound)
	}
	return err
}
