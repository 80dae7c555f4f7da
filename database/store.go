package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the gorm-backed price record store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch products")
	}
	return products, nil
}

func (s *Store) Product(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return models.Product{}, notFoundOr(err, fmt.Sprintf("product %d not found", id))
	}
	return product, nil
}

func (s *Store) SaveProduct(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return apperrors.Internal(err, "failed to save product")
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("product %d not found", id))
	}
	return nil
}

func (s *Store) History(ctx context.Context) ([]models.PriceHistoryEntry, error) {
	var history []models.PriceHistoryEntry
	if err := s.db.WithContext(ctx).Order("date ASC, id ASC").Find(&history).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch price history")
	}
	return history, nil
}

func (s *Store) HistoryEntry(ctx context.Context, id uint) (models.PriceHistoryEntry, error) {
	var entry models.PriceHistoryEntry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return models.PriceHistoryEntry{}, notFoundOr(err, fmt.Sprintf("price history entry %d not found", id))
	}
	return entry, nil
}

func (s *Store) SaveHistory(ctx context.Context, entry *models.PriceHistoryEntry) error {
	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		return apperrors.Internal(err, "failed to save price history entry")
	}
	return nil
}

func (s *Store) DeleteHistory(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.PriceHistoryEntry{}, id)
	if result.Error != nil {
		return apperrors.Internal(result.Error, "failed to delete price history entry")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("price history entry %d not found", id))
	}
	return nil
}

// BoardResult counts what ApplyBoard changed.
type BoardResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Missing int `json:"missing"`
}

// ApplyBoard writes one day's quotes: master products are upserted by
// commodity name, one history row is kept per product and day, and products
// absent from the board lose today's min/max/avg while keeping their last
// price.
func (s *Store) ApplyBoard(ctx context.Context, day models.Date, quotes []models.Quote) (BoardResult, error) {
	var result BoardResult
	now := time.Now()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return result, apperrors.Internal(tx.Error, "failed to start transaction")
	}

	names := make([]string, 0, len(quotes))
	for _, q := range quotes {
		names = append(names, q.Commodity)

		var product models.Product
		err := tx.Where("commodity_name = ?", q.Commodity).First(&product).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			product = models.Product{CommodityName: q.Commodity, InsertDate: now}
			result.Created++
		case err != nil:
			tx.Rollback()
			return result, apperrors.Internal(err, "failed to look up product "+q.Commodity)
		default:
			result.Updated++
		}

		if q.Unit != "" {
			unit := q.Unit
			product.Unit = &unit
		}
		product.MinPrice = decimal.NewNullDecimal(q.Min)
		product.MaxPrice = decimal.NewNullDecimal(q.Max)
		product.AvgPrice = decimal.NewNullDecimal(q.Avg)
		product.LastPrice = decimal.NewNullDecimal(q.Avg)
		product.LastUpdate = now
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			return result, apperrors.Internal(err, "failed to save product "+q.Commodity)
		}

		var entry models.PriceHistoryEntry
		err = tx.Where("product_name = ? AND date = ?", q.Commodity, day).First(&entry).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return result, apperrors.Internal(err, "failed to look up history for "+q.Commodity)
		}
		entry.ProductName = q.Commodity
		entry.Date = day
		entry.MinPrice = q.Min
		entry.MaxPrice = q.Max
		entry.AvgPrice = q.Avg
		if err := tx.Save(&entry).Error; err != nil {
			tx.Rollback()
			return result, apperrors.Internal(err, "failed to save history for "+q.Commodity)
		}
	}

	stale := tx.Model(&models.Product{})
	if len(names) > 0 {
		stale = stale.Where("commodity_name NOT IN ?", names)
	} else {
		stale = stale.Where("1 = 1")
	}
	cleared := stale.UpdateColumns(map[string]interface{}{"min_price": nil, "max_price": nil, "avg_price": nil})
	if cleared.Error != nil {
		tx.Rollback()
		return result, apperrors.Internal(cleared.Error, "failed to clear stale products")
	}
	result.Missing = int(cleared.RowsAffected)

	if err := tx.Commit().Error; err != nil {
		return result, apperrors.Internal(err, "failed to commit transaction")
	}
	return result, nil
}

// User looks up an administrator by username.
func (s *Store) User(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, notFoundOr(err, "user not found")
	}
	return user, nil
}

// EnsureAdmin creates the administrator account when it does not exist yet.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.User(ctx, username); err == nil {
		return false, nil
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return false, err
	}

	user := models.User{Username: username}
	if err := user.HashPassword(password); err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, apperrors.Internal(err, "failed to create admin user")
	}
	return true, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(message)
	}
	return apperrors.Internal(err, message)
}
