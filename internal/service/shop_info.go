package service

import (
	"context"
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// publicShopInfoKey caches the unauthenticated view
const publicShopInfoKey = "shop:info:public"

// ShopInfoService serves and persists the singleton storefront record.
// Concurrent updates are last-write-wins per field present in the payload.
type ShopInfoService struct {
	db       *gorm.DB
	rdb      redis.Cmdable
	cacheTTL time.Duration
}

// NewShopInfoService creates the service; a nil rdb disables caching
func NewShopInfoService(db *gorm.DB, rdb redis.Cmdable, cacheTTL time.Duration) *ShopInfoService {
	return &ShopInfoService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

// Get returns the full record, creating the default one on first use
func (s *ShopInfoService) Get(ctx context.Context) (*domain.ShopInfo, error) {
	info, err := s.getOrCreate(ctx)
	if err != nil {
		return nil, db.Classify(err, "Server error while fetching shop information")
	}
	return info, nil
}

// GetPublic returns the allow-listed view, served from cache when possible
func (s *ShopInfoService) GetPublic(ctx context.Context) (*domain.PublicShopInfo, error) {
	var cached domain.PublicShopInfo
	if s.rdb != nil {
		found, err := utils.GetCache(ctx, s.rdb, publicShopInfoKey, &cached)
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Shop info cache read failed")
		} else if found {
			return &cached, nil
		}
	}
	info, err := s.getOrCreate(ctx)
	if err != nil {
		return nil, db.Classify(err, "Server error while fetching shop information")
	}
	public := info.Public()
	if s.rdb != nil {
		if err := utils.SetCache(ctx, s.rdb, publicShopInfoKey, public, s.cacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Shop info cache write failed")
		}
	}
	return &public, nil
}

// Update merges the present fields of u onto the record, creating it if
// needed, and returns the record as re-read from the store.
func (s *ShopInfoService) Update(ctx context.Context, u *domain.ShopInfoUpdate) (*domain.ShopInfo, error) {
	tx := s.db.WithContext(ctx)
	info, err := s.find(tx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		info = domain.NewDefaultShopInfo() // First write creates the record
		u.ApplyTo(info)
		err = tx.Create(info).Error
		if db.IsDuplicate(err) {
			// Someone created it first; merge onto theirs
			if info, err = s.find(tx); err == nil {
				err = s.merge(tx, info, u)
			}
		}
	case err == nil:
		err = s.merge(tx, info, u)
	}
	if err != nil {
		return nil, db.Classify(err, "Server error while updating shop information")
	}

	// Re-read so store-level defaults are reflected
	var fresh domain.ShopInfo
	if err := tx.First(&fresh, info.ID).Error; err != nil {
		return nil, db.Classify(err, "Server error while updating shop information")
	}
	s.invalidate(ctx)
	logrus.WithField("shop_info_id", fresh.ID).Info("Shop information updated")
	return &fresh, nil
}

func (s *ShopInfoService) merge(tx *gorm.DB, info *domain.ShopInfo, u *domain.ShopInfoUpdate) error {
	fields := u.ApplyTo(info)
	if len(fields) == 0 {
		return nil // Empty payload
	}
	return tx.Model(info).Select(fields).Updates(info).Error
}

func (s *ShopInfoService) find(tx *gorm.DB) (*domain.ShopInfo, error) {
	var info domain.ShopInfo
	if err := tx.Where("singleton_key = ?", domain.ShopSingletonKey).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// getOrCreate is the only lazy creation path. The unique singleton key makes
// a concurrent creator fail, after which the winner's row is read.
func (s *ShopInfoService) getOrCreate(ctx context.Context) (*domain.ShopInfo, error) {
	tx := s.db.WithContext(ctx)
	info, err := s.find(tx)
	if err == nil {
		return info, nil // Common path
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := domain.NewDefaultShopInfo()
	err = tx.Create(created).Error
	switch {
	case err == nil:
		logrus.WithField("shop_info_id", created.ID).Info("Default shop information created")
	case !db.IsDuplicate(err):
		return nil, err
	}
	return s.find(tx)
}

func (s *ShopInfoService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := utils.DeleteCache(ctx, s.rdb, publicShopInfoKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Shop info cache invalidation failed")
	}
}
