package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMobile     PaymentMethod = "MOBILE_PAYMENT"
	PaymentInsurance  PaymentMethod = "INSURANCE"
	PaymentOther      PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobile, PaymentInsurance, PaymentOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentCancelled     PaymentStatus = "CANCELLED"
	PaymentRefunded      PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// Bill is an immutable sales record. Items snapshot name and price at sale time.
type Bill struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillNumber            string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	PharmacyID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID            *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName          *string         `gorm:"type:varchar(100)"`
	CustomerPhone         *string         `gorm:"type:varchar(20)"`
	CustomerEmail         *string
	Subtotal              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod         PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaymentStatus         PaymentStatus   `gorm:"type:varchar(20);not null"`
	Notes                 *string         `gorm:"type:varchar(500)"`
	PrescriptionReference *string         `gorm:"type:varchar(100)"`
	CreatedByID           uuid.UUID       `gorm:"type:uuid;not null"`
	BillDate              time.Time       `gorm:"not null;index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Items     []BillItem `gorm:"foreignKey:BillID"`
	Pharmacy  *Pharmacy  `gorm:"foreignKey:PharmacyID"`
	CreatedBy *User      `gorm:"foreignKey:CreatedByID"`
}

func (Bill) TableName() string { return "bills" }

// BeforeCreate assigns the bill number and date when the caller left them empty.
func (b *Bill) BeforeCreate(_ *gorm.DB) error {
	if b.BillNumber == "" {
		b.BillNumber = NewBillNumber()
	}
	if b.BillDate.IsZero() {
		b.BillDate = time.Now()
	}
	return nil
}

// NewBillNumber returns "BILL-" followed by the first 8 hex chars of a random UUID.
func NewBillNumber() string {
	return "BILL-" + strings.ToUpper(uuid.NewString()[:8])
}

// ComputeTotals sets item and bill amounts from quantities and unit prices:
// item subtotal = unit price × quantity, bill total = subtotal − discount + tax.
func (b *Bill) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range b.Items {
		it := &b.Items[i]
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.DiscountAmount = decimal.Zero
		it.TaxAmount = decimal.Zero
		it.TotalAmount = it.Subtotal
		subtotal = subtotal.Add(it.Subtotal)
	}
	b.Subtotal = subtotal
	b.TotalAmount = subtotal.Sub(b.DiscountAmount).Add(b.TaxAmount)
}

type BillItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName       string          `gorm:"not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (BillItem) TableName() string { return "bill_items" }
