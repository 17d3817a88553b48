package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campus-canteen-api/apperror"
	"campus-canteen-api/metrics"
	"campus-canteen-api/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const menuCacheKey = "canteen:menu:all"

type MenuFilter struct {
	Category string
	VegOnly  bool
}

// Catalog serves the read-only menu. When a redis client is configured the full
// menu is cached under a single key; a nil client disables caching.
type Catalog struct {
	db      *gorm.DB
	rdb     *redis.Client
	ttl     time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewCatalog(db *gorm.DB, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *Catalog {
	return &Catalog{db: db, rdb: rdb, ttl: ttl, log: log, metrics: m}
}

// List returns menu items ordered by category then name, narrowed by the filter
func (c *Catalog) List(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.VegOnly && !it.IsVeg {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Seed inserts items when the catalog is empty and reports how many were written
func (c *Catalog) Seed(ctx context.Context, items []models.MenuItem) (int, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return 0, apperror.Store("Failed to count menu items", err)
	}
	if count > 0 || len(items) == 0 {
		return 0, nil
	}
	if err := c.db.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, apperror.Store("Failed to seed menu", err)
	}
	c.invalidate(ctx)
	return len(items), nil
}

func (c *Catalog) all(ctx context.Context) ([]models.MenuItem, error) {
	if items, ok := c.cached(ctx); ok {
		return items, nil
	}

	var items []models.MenuItem
	if err := c.db.WithContext(ctx).Order("category asc").Order("name asc").Find(&items).Error; err != nil {
		return nil, apperror.Store("Failed to load menu", err)
	}
	c.store(ctx, items)
	return items, nil
}

func (c *Catalog) cached(ctx context.Context) ([]models.MenuItem, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, menuCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("menu cache read failed")
		}
		c.metrics.CacheLookup(false)
		return nil, false
	}
	var items []models.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.metrics.CacheLookup(false)
		return nil, false
	}
	c.metrics.CacheLookup(true)
	return items, true
}

func (c *Catalog) store(ctx context.Context, items []models.MenuItem) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, menuCacheKey, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("menu cache write failed")
	}
}

func (c *Catalog) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		c.log.WithError(err).Warn("menu cache invalidation failed")
	}
}

// DefaultMenu is the starter catalog written by the seed command
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Masala Dosa", Price: 60, Category: "South Indian", IsVeg: true, Description: "Crisp dosa with potato masala, sambar and chutney"},
		{Name: "Idli Vada", Price: 45, Category: "South Indian", IsVeg: true, Description: "Two idlis and a medu vada"},
		{Name: "Veg Fried Rice", Price: 80, Category: "Chinese", IsVeg: true, Description: "Wok-tossed rice with vegetables"},
		{Name: "Chicken Noodles", Price: 110, Category: "Chinese", IsVeg: false, Description: "Hakka noodles with chicken"},
		{Name: "Paneer Roll", Price: 70, Category: "Snacks", IsVeg: true, Description: "Paneer tikka wrapped in paratha"},
		{Name: "Egg Puff", Price: 25, Category: "Snacks", IsVeg: false, Description: "Flaky pastry with spiced egg"},
		{Name: "Tea", Price: 10, Category: "Beverages", IsVeg: true, Description: "Cutting chai"},
		{Name: "Cold Coffee", Price: 50, Category: "Beverages", IsVeg: true, Description: "Blended iced coffee"},
	}
}
