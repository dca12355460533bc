package service

import (
	"context"
	"errors"
	"krishna_store/internal/db"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	featuredProductsKey = "products:featured" // Cached storefront rail
	maxRailSize         = 50 // Largest rail a client may ask for
	productExistsMsg    = "Product with this name already exists"
)

// productSorts maps the sort query value to an ORDER BY clause
var productSorts = map[string]string{
	"":           "created_at desc, id desc",
	"newest":     "created_at desc, id desc",
	"price_asc":  "price asc, id asc",
	"price_desc": "price desc, id desc",
	"popular":    "sold_count desc, id desc",
	"name":       "name asc, id asc",
}

// ProductFilter narrows a catalogue listing
type ProductFilter struct {
	Category string
	Query    string // Matches name or brand
	Sort     string
}

// ProductService serves the public catalogue and staff product management.
// Inactive products are hidden from every public read.
type ProductService struct {
	db       *gorm.DB
	rdb      redis.Cmdable
	cacheTTL time.Duration
}

// NewProductService creates the service; a nil rdb disables caching
func NewProductService(db *gorm.DB, rdb redis.Cmdable, cacheTTL time.Duration) *ProductService {
	return &ProductService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func (s *ProductService) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&domain.Product{}).Where("is_active = ?", true)
}

// List returns a page of active products with the total match count
func (s *ProductService) List(ctx context.Context, filter ProductFilter, page utils.Page) ([]domain.Product, int64, error) {
	order, ok := productSorts[filter.Sort]
	if !ok {
		return nil, 0, domain.ValidationError("Unknown sort order")
	}
	query := s.active(ctx)
	if filter.Category != "" {
		query = query.Where("category_slug = ?", filter.Category)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{}) // Reusable for Count and Find
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to count products")
	}
	var products []domain.Product
	if err := query.Order(order).Offset(page.Offset()).Limit(page.Size).Find(&products).Error; err != nil {
		return nil, 0, db.Classify(err, "Failed to fetch products")
	}
	return products, total, nil
}

// Featured returns up to limit featured products, newest first
func (s *ProductService) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	limit = railLimit(limit)
	var cached []domain.Product
	if s.rdb != nil {
		found, err := utils.GetCache(ctx, s.rdb, featuredProductsKey, &cached)
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Featured products cache read failed")
		} else if found {
			return firstN(cached, limit), nil // The cache holds the whole rail
		}
	}
	var products []domain.Product
	if err := s.active(ctx).Where("is_featured = ?", true).
		Order("created_at desc, id desc").Limit(maxRailSize).
		Find(&products).Error; err != nil {
		return nil, db.Classify(err, "Failed to fetch featured products")
	}
	if s.rdb != nil {
		if err := utils.SetCache(ctx, s.rdb, featuredProductsKey, products, s.cacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Featured products cache write failed")
		}
	}
	return firstN(products, limit), nil
}

// BestSellers returns the most sold active products
func (s *ProductService) BestSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.active(ctx).Where("sold_count > 0").
		Order("sold_count desc, id desc").Limit(railLimit(limit)).
		Find(&products).Error; err != nil {
		return nil, db.Classify(err, "Failed to fetch best sellers")
	}
	return products, nil
}

// NewArrivals returns the most recently added active products
func (s *ProductService) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.active(ctx).Order("created_at desc, id desc").Limit(railLimit(limit)).
		Find(&products).Error; err != nil {
		return nil, db.Classify(err, "Failed to fetch new arrivals")
	}
	return products, nil
}

// DealOfTheDay returns the in-stock product with the deepest relative discount
func (s *ProductService) DealOfTheDay(ctx context.Context) (*domain.Product, error) {
	var product domain.Product
	err := s.active(ctx).
		Where("discount_price IS NOT NULL AND discount_price < price AND price > 0 AND stock > 0").
		Order("(price - discount_price) / price desc, id asc").
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("No deal available today", domain.ErrProductNotFound)
	}
	if err != nil {
		return nil, db.Classify(err, "Failed to fetch deal of the day")
	}
	return &product, nil
}

// Get resolves an active product by numeric id or by slug
func (s *ProductService) Get(ctx context.Context, identifier string) (*domain.Product, error) {
	identifier = strings.TrimSpace(identifier)
	query := s.active(ctx)
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		// A numeric slug still resolves, but the id wins
		query = query.Where("id = ? OR slug = ?", id, identifier).
			Order(clause.OrderBy{Expression: clause.Expr{SQL: "id = ? DESC", Vars: []any{id}}})
	} else {
		query = query.Where("slug = ?", identifier)
	}
	var product domain.Product
	err := query.First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError("Product not found", domain.ErrProductNotFound)
	}
	if err != nil {
		return nil, db.Classify(err, "Failed to fetch product")
	}
	return &product, nil
}

// Related returns other active products from the same category, best sellers first
func (s *ProductService) Related(ctx context.Context, id uint, limit int) ([]domain.Product, error) {
	product, err := s.Get(ctx, strconv.FormatUint(uint64(id), 10))
	if err != nil {
		return nil, err
	}
	related := []domain.Product{}
	if product.CategorySlug == "" {
		return related, nil // Uncategorised products have no siblings
	}
	if err := s.active(ctx).
		Where("category_slug = ? AND id <> ?", product.CategorySlug, product.ID).
		Order("sold_count desc, id desc").Limit(railLimit(limit)).
		Find(&related).Error; err != nil {
		return nil, db.Classify(err, "Failed to fetch related products")
	}
	return related, nil
}

// Create adds a product with a slug derived from its name
func (s *ProductService) Create(ctx context.Context, actorID uint, in *domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{IsActive: true, Images: []string{}}
	in.ApplyTo(product)
	if err := domain.ValidateProduct(product); err != nil {
		return nil, err
	}
	inactive := !product.IsActive // Create swaps a false for the column default
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := availableSlug(tx, &domain.Product{}, product.Name, "product")
		if err != nil {
			return err
		}
		product.Slug = slug
		if err := createWithSlug(tx, product, &product.Slug); err != nil {
			if db.IsDuplicate(err) {
				return domain.ConflictError(productExistsMsg, errors.Join(domain.ErrSlugTaken, err))
			}
			return err
		}
		if inactive {
			return tx.Model(product).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, db.Classify(err, "Failed to create product")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{"product_id": product.ID, "slug": product.Slug, "actor_id": actorID}).Info("Product created")
	return product, nil
}

// Update applies the present fields. Renaming moves the product to a fresh slug.
func (s *ProductService) Update(ctx context.Context, actorID uint, id uint, in *domain.ProductInput) (*domain.Product, error) {
	var product domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findProduct(tx, id, &product); err != nil {
			return err
		}
		oldBase := utils.Slugify(product.Name)
		fields := in.ApplyTo(&product)
		if len(fields) == 0 {
			return nil
		}
		if err := domain.ValidateProduct(&product); err != nil {
			return err
		}
		if base := utils.Slugify(product.Name); base != oldBase {
			slug, err := availableSlug(tx, &domain.Product{}, product.Name, "product")
			if err != nil {
				return err
			}
			product.Slug = slug
			fields = append(fields, "Slug")
		}
		err := tx.Model(&product).Select(fields).Updates(&product).Error
		if db.IsDuplicate(err) {
			return domain.ConflictError(productExistsMsg, errors.Join(domain.ErrSlugTaken, err))
		}
		return err
	})
	if err != nil {
		return nil, db.Classify(err, "Failed to update product")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{"product_id": product.ID, "actor_id": actorID}).Info("Product updated")
	return &product, nil
}

// Delete hides a product from the storefront; orders keep referring to it
func (s *ProductService) Delete(ctx context.Context, actorID uint, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := findProduct(tx, id, &product); err != nil {
			return err
		}
		return tx.Model(&product).Update("is_active", false).Error
	})
	if err != nil {
		return db.Classify(err, "Failed to delete product")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{"product_id": id, "actor_id": actorID}).Info("Product deactivated")
	return nil
}

// UpdateStock sets stock outright or applies a delta. Deltas are applied in a
// single conditional UPDATE so concurrent adjustments never drive stock negative.
func (s *ProductService) UpdateStock(ctx context.Context, actorID uint, id uint, change domain.StockChange) (*domain.Product, error) {
	if (change.Stock == nil) == (change.Delta == nil) {
		return nil, domain.ValidationError("Provide either stock or delta")
	}
	var product domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if change.Stock != nil {
			if *change.Stock < 0 {
				return domain.ValidationError("Stock must not be negative")
			}
			if err := findProduct(tx, id, &product); err != nil {
				return err
			}
			if err := tx.Model(&product).UpdateColumn("stock", *change.Stock).Error; err != nil {
				return err
			}
			return findProduct(tx, id, &product) // Re-read for updated_at
		}

		delta := *change.Delta
		if delta == 0 {
			return domain.ValidationError("Delta must not be zero")
		}
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock + ? >= 0", id, delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if err := findProduct(tx, id, &product); err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return domain.NewError(domain.KindValidation, "Insufficient stock", domain.ErrInsufficientStock)
		}
		return nil
	})
	if err != nil {
		return nil, db.Classify(err, "Failed to update stock")
	}
	logrus.WithFields(logrus.Fields{"product_id": id, "stock": product.Stock, "actor_id": actorID}).Info("Product stock updated")
	return &product, nil
}

func findProduct(tx *gorm.DB, id uint, product *domain.Product) error {
	err := tx.First(product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("Product not found", domain.ErrProductNotFound)
	}
	return err
}

// railLimit clamps a storefront rail size, defaulting to 8
func railLimit(limit int) int {
	switch {
	case limit <= 0:
		return 8
	case limit > maxRailSize:
		return maxRailSize
	}
	return limit
}

func firstN(products []domain.Product, n int) []domain.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := utils.DeleteCache(ctx, s.rdb, featuredProductsKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Product cache invalidation failed")
	}
}
