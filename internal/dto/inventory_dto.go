package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRequest is used for both create and update.
type InventoryRequest struct {
	MedicationName    string          `json:"medicationName"    validate:"required,min=1,max=150"`
	Manufacturer      *string         `json:"manufacturer"      validate:"omitempty,max=150"`
	BatchNumber       *string         `json:"batchNumber"       validate:"omitempty,max=50"`
	ExpiryDate        string          `json:"expiryDate"        validate:"required,datetime=2006-01-02"`
	Quantity          int             `json:"quantity"          validate:"min=0"`
	MinimumStockLevel int             `json:"minimumStockLevel" validate:"min=0"`
	CostPrice         decimal.Decimal `json:"costPrice"         validate:"min=0"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"      validate:"gt=0"`
	Active            *bool           `json:"active"`
	MedicationType    string          `json:"medicationType"    validate:"required,oneof=PRESCRIPTION OVER_THE_COUNTER CONTROLLED_SUBSTANCE DONATED"`
	Description       *string         `json:"description"       validate:"omitempty,max=1000"`
	DosageForm        *string         `json:"dosageForm"        validate:"omitempty,max=50"`
	Strength          *string         `json:"strength"          validate:"omitempty,max=50"`
	StorageConditions *string         `json:"storageConditions" validate:"omitempty,max=255"`
}

// InventoryFilter is bound from the query string of the item listing. The
// first non-empty filter wins in the order search, type, lowStock, expiring.
type InventoryFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type"`
	LowStock bool   `form:"lowStock"`
	Expiring bool   `form:"expiring"`
}

type InventoryResponse struct {
	ID                   string          `json:"id"`
	PharmacyID           string          `json:"pharmacyId"`
	MedicationName       string          `json:"medicationName"`
	Manufacturer         *string         `json:"manufacturer"`
	BatchNumber          *string         `json:"batchNumber"`
	ExpiryDate           string          `json:"expiryDate"`
	Quantity             int             `json:"quantity"`
	MinimumStockLevel    int             `json:"minimumStockLevel"`
	CostPrice            decimal.Decimal `json:"costPrice"`
	SellingPrice         decimal.Decimal `json:"sellingPrice"`
	Active               bool            `json:"active"`
	MedicationType       string          `json:"medicationType"`
	Description          *string         `json:"description"`
	DosageForm           *string         `json:"dosageForm"`
	Strength             *string         `json:"strength"`
	StorageConditions    *string         `json:"storageConditions"`
	LowStock             bool            `json:"lowStock"`
	Expired              bool            `json:"expired"`
	ExpiringWithin30Days bool            `json:"expiringWithin30Days"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

type InventoryStats struct {
	TotalItems        int64 `json:"totalItems"`
	LowStockCount     int64 `json:"lowStockCount"`
	ExpiringSoonCount int64 `json:"expiringSoonCount"`
}

// OverviewEntry is one slice of the stock overview chart.
type OverviewEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type StockMovementResponse struct {
	ID          string    `json:"id"`
	InventoryID string    `json:"inventoryId"`
	BillID      *string   `json:"billId"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stockBefore"`
	StockAfter  int       `json:"stockAfter"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}
