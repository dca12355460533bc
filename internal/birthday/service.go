package birthday

import (
	"context"
	"errors"
	"fmt"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/notify"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ShopSource supplies the shop name used to sign messages
type ShopSource interface {
	Get(ctx context.Context) (*domain.ShopInfo, error)
}

// Service finds today's birthdays among customers and messages them
type Service struct {
	db     *gorm.DB
	sender notify.Sender
	shop   ShopSource // May be nil; messages then use the default name
}

// NewService creates the service
func NewService(db *gorm.DB, sender notify.Sender, shop ShopSource) *Service {
	return &Service{db: db, sender: sender, shop: shop}
}

// IsBirthday reports whether dob falls on day. Feb 29 birthdays are
// celebrated on Feb 28 in non-leap years.
func IsBirthday(dob, day time.Time) bool {
	if dob.Month() == day.Month() && dob.Day() == day.Day() {
		return true
	}
	leap := time.Date(day.Year(), time.February, 29, 0, 0, 0, 0, day.Location()).Month() == time.February // Feb 29 normalises to Mar 1 otherwise
	return !leap && dob.Month() == time.February && dob.Day() == 29 &&
		day.Month() == time.February && day.Day() == 28
}

// Today lists active customers whose birthday is on now's date.
// Dates of birth are stored as local midnight and compared by calendar date.
func (s *Service) Today(ctx context.Context, now time.Time) ([]domain.User, error) {
	var candidates []domain.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ? AND date_of_birth IS NOT NULL", domain.RoleCustomer, true).
		Order("name asc"). // Stable listing for the dashboard
		Find(&candidates).Error; err != nil {
		return nil, db.Classify(err, "Failed to fetch birthdays")
	}
	today := make([]domain.User, 0, len(candidates))
	for _, u := range candidates {
		if IsBirthday(*u.DateOfBirth, now) { // Year is ignored
			today = append(today, u)
		}
	}
	return today, nil
}

// SendWish sends the standard birthday greeting to one customer
func (s *Service) SendWish(ctx context.Context, userID uint) error {
	user, err := s.customer(ctx, userID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Happy Birthday, %s! Warm wishes from all of us at %s.", firstName(user.Name), s.shopName(ctx))
	return s.send(ctx, user, body, "wish")
}

// SendOffer sends a staff-written birthday offer to one customer
func (s *Service) SendOffer(ctx context.Context, userID uint, offer string) error {
	offer = strings.TrimSpace(offer)
	if offer == "" {
		return domain.ValidationError("Offer message is required")
	}
	user, err := s.customer(ctx, userID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Happy Birthday, %s! %s - %s", firstName(user.Name), offer, s.shopName(ctx))
	return s.send(ctx, user, body, "offer")
}

// SendAll wishes everyone whose birthday is today and returns how many were sent.
// One failed message does not stop the rest.
func (s *Service) SendAll(ctx context.Context, now time.Time) (int, error) {
	users, err := s.Today(ctx, now)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, u := range users {
		if err := s.SendWish(ctx, u.ID); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": u.ID, "error": err.Error()}).Warn("Birthday wish failed")
			continue // Keep going for the others
		}
		sent++
	}
	return sent, nil
}

func (s *Service) customer(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("User not found", domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, db.Classify(err, "Failed to load user")
	}
	return &user, nil
}

func (s *Service) send(ctx context.Context, user *domain.User, body, kind string) error {
	if err := s.sender.SendSMS(ctx, user.Phone, body); err != nil {
		return domain.NewError(domain.KindUnknown, "Failed to send birthday message", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "kind": kind}).Info("Birthday message sent")
	return nil
}

func (s *Service) shopName(ctx context.Context) string {
	if s.shop != nil {
		if info, err := s.shop.Get(ctx); err == nil && info.ShopName != "" {
			return info.ShopName
		}
	}
	return domain.DefaultShopName
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0] // "Asha Rao" becomes "Asha"
	}
	return name
}
