package models

import "time"

// MenuItem is a catalog entry. The API only reads these; the seed command writes them.
type MenuItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"index"`
	IsVeg       bool      `json:"isVeg" gorm:"default:false"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// All returns every model the schema migration manages
func All() []interface{} {
	return []interface{}{
		&User{},
		&MenuItem{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
	}
}
