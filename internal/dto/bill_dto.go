package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BillItemRequest struct {
	InventoryID string `json:"inventoryId" validate:"required,uuid"`
	Quantity    int    `json:"quantity"    validate:"required,min=1"`
}

type CreateBillRequest struct {
	PharmacyID            string            `json:"pharmacyId"            validate:"required,uuid"`
	CustomerID            *string           `json:"customerId"            validate:"omitempty,uuid"`
	CustomerName          *string           `json:"customerName"          validate:"omitempty,max=100"`
	CustomerPhone         *string           `json:"customerPhone"         validate:"omitempty,max=20"`
	CustomerEmail         *string           `json:"customerEmail"         validate:"omitempty,email"`
	PaymentMethod         string            `json:"paymentMethod"         validate:"required,oneof=CASH CREDIT_CARD DEBIT_CARD MOBILE_PAYMENT INSURANCE OTHER"`
	PaymentStatus         string            `json:"paymentStatus"         validate:"omitempty,oneof=PENDING PAID PARTIALLY_PAID CANCELLED REFUNDED"`
	Items                 []BillItemRequest `json:"items"                 validate:"required,min=1,dive"`
	DiscountAmount        decimal.Decimal   `json:"discountAmount"        validate:"min=0"`
	TaxAmount             decimal.Decimal   `json:"taxAmount"             validate:"min=0"`
	Notes                 *string           `json:"notes"                 validate:"omitempty,max=500"`
	PrescriptionReference *string           `json:"prescriptionReference" validate:"omitempty,max=100"`
}

// BillFilter is bound from the query string of GET /api/bills.
type BillFilter struct {
	PharmacyID string `form:"pharmacyId" validate:"required,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BillItemResponse struct {
	ID             string          `json:"id"`
	InventoryID    string          `json:"inventoryId"`
	ItemName       string          `json:"itemName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

type BillResponse struct {
	ID                    string             `json:"id"`
	BillNumber            string             `json:"billNumber"`
	PharmacyID            string             `json:"pharmacyId"`
	PharmacyName          string             `json:"pharmacyName"`
	CustomerID            *string            `json:"customerId"`
	CustomerName          *string            `json:"customerName"`
	CustomerPhone         *string            `json:"customerPhone"`
	CustomerEmail         *string            `json:"customerEmail"`
	Subtotal              decimal.Decimal    `json:"subtotal"`
	DiscountAmount        decimal.Decimal    `json:"discountAmount"`
	TaxAmount             decimal.Decimal    `json:"taxAmount"`
	TotalAmount           decimal.Decimal    `json:"totalAmount"`
	PaymentMethod         string             `json:"paymentMethod"`
	PaymentStatus         string             `json:"paymentStatus"`
	Notes                 *string            `json:"notes"`
	PrescriptionReference *string            `json:"prescriptionReference"`
	CreatedByID           string             `json:"createdById"`
	CreatedByName         string             `json:"createdByName"`
	BillDate              time.Time          `json:"billDate"`
	Items                 []BillItemResponse `json:"items"`
	CreatedAt             time.Time          `json:"createdAt"`
}

type BillListResponse struct {
	Data  []BillResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// SalesSummary aggregates PAID bills in a period.
type SalesSummary struct {
	PharmacyID string          `json:"pharmacyId"`
	Period     string          `json:"period"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	TotalSales decimal.Decimal `json:"totalSales"`
	BillCount  int64           `json:"billCount"`
}
