package service

import (
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"strings"

	"gorm.io/gorm"
)

// userExistsMessage never says which identifier collided
const userExistsMessage = "User with these details already exists"

// normalizeEmail trims and lower-cases; blank becomes nil
func normalizeEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}

// insertUser runs the uniqueness checks, assigns a slug and creates u, all on tx.
// The unique indexes back the checks up when two requests race past them.
func insertUser(tx *gorm.DB, u *domain.User) error {
	var count int64
	if err := tx.Model(&domain.User{}).Where("phone = ?", u.Phone).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ConflictError(userExistsMessage, domain.ErrPhoneTaken)
	}
	if u.Email != nil {
		if err := tx.Model(&domain.User{}).Where("email = ?", *u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ConflictError(userExistsMessage, domain.ErrEmailTaken)
		}
	}

	slug, err := availableSlug(tx, &domain.User{}, u.Name, "user")
	if err != nil {
		return err
	}
	u.Slug = slug
	if u.AdditionalAddresses == nil {
		u.AdditionalAddresses = []string{}
	}

	if err := createWithSlug(tx, u, &u.Slug); err != nil {
		if db.IsDuplicate(err) {
			return domain.ConflictError(userExistsMessage, errors.Join(domain.ErrDuplicate, err))
		}
		return err
	}
	return nil
}

// availableSlug picks a slug for name that no row of model holds yet
func availableSlug(tx *gorm.DB, model any, name, fallback string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = fallback
	}
	var slugs []string // Only slugs that could collide with this base
	if err := tx.Model(model).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error; err != nil {
		return "", err
	}
	return utils.GenerateSlug(base, slugs), nil
}

// createWithSlug inserts row. A concurrent insert can claim the slug between
// availableSlug and the insert, so one duplicate key is retried under a
// time-suffixed slug. A second duplicate is returned to the caller.
func createWithSlug(tx *gorm.DB, row any, slug *string) error {
	err := tx.Create(row).Error
	if !db.IsDuplicate(err) {
		return err
	}
	*slug = utils.TimeSlug(*slug) // Phone or email clashes fail again below
	return tx.Create(row).Error
}

// emailTakenByOther reports whether another user already holds email
func emailTakenByOther(tx *gorm.DB, email string, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&domain.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error
	return count > 0, err
}
