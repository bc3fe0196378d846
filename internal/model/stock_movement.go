package model

import (
	"time"

	"github.com/google/uuid"
)

const MovementSale = "SALE"

// StockMovement records every change to an inventory quantity.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InventoryID uuid.UUID  `gorm:"type:uuid;not null;index"`
	BillID      *uuid.UUID `gorm:"type:uuid;index"`
	Type        string     `gorm:"type:varchar(20);not null"`
	Quantity    int        `gorm:"not null"` // negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
