package services

import (
	"context"

	"campus-canteen-api/apperror"
	"campus-canteen-api/models"

	"gorm.io/gorm"
)

type Summary struct {
	Revenue   float64 `json:"revenue"`
	PaidCount int64   `json:"paidCount"`
}

// RevenueAggregator derives owner-facing totals from the order ledger
type RevenueAggregator struct {
	db *gorm.DB
}

func NewRevenueAggregator(db *gorm.DB) *RevenueAggregator {
	return &RevenueAggregator{db: db}
}

// Summarize sums the grand total over paid orders. A missing grand total counts as zero.
func (a *RevenueAggregator) Summarize(ctx context.Context) (Summary, error) {
	var s Summary
	err := a.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS paid_count, COALESCE(SUM(COALESCE(totals_grand, 0)), 0) AS revenue").
		Where("paid = ?", true).
		Scan(&s).Error
	if err != nil {
		return Summary{}, apperror.Store("Failed to summarize revenue", err)
	}
	return s, nil
}
