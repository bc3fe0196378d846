package model_test

import (
	"strings"
	"testing"
	"time"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInventory_Predicates(t *testing.T) {
	now := day("2025-03-10").Add(15 * time.Hour)

	inv := model.Inventory{Quantity: 5, MinimumStockLevel: 5, ExpiryDate: day("2025-03-10")}
	assert.True(t, inv.IsLowStock(), "quantity equal to threshold is low stock")
	assert.False(t, inv.IsExpired(now), "expiring today is not expired")
	assert.True(t, inv.IsExpiringWithin(now, 30))

	inv.Quantity = 6
	inv.ExpiryDate = day("2025-03-09")
	assert.False(t, inv.IsLowStock())
	assert.True(t, inv.IsExpired(now))

	inv.ExpiryDate = day("2025-04-09")
	assert.False(t, inv.IsExpiringWithin(now, 30), "today+30 is outside the window")
	inv.ExpiryDate = day("2025-04-08")
	assert.True(t, inv.IsExpiringWithin(now, 30))
}

func TestBill_ComputeTotals(t *testing.T) {
	b := model.Bill{
		DiscountAmount: decimal.RequireFromString("1.50"),
		TaxAmount:      decimal.RequireFromString("0.75"),
		Items: []model.BillItem{
			{Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
			{Quantity: 2, UnitPrice: decimal.RequireFromString("4.25")},
		},
	}
	b.ComputeTotals()

	assert.True(t, b.Items[0].Subtotal.Equal(decimal.RequireFromString("6.00")))
	assert.True(t, b.Items[1].TotalAmount.Equal(decimal.RequireFromString("8.50")))
	assert.True(t, b.Subtotal.Equal(decimal.RequireFromString("14.50")))
	assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("13.75")))
	for _, it := range b.Items {
		assert.True(t, it.DiscountAmount.IsZero())
		assert.True(t, it.TaxAmount.IsZero())
	}
}

func TestBill_BeforeCreateAssignsNumber(t *testing.T) {
	b := &model.Bill{}
	require.NoError(t, b.BeforeCreate(nil))
	assert.True(t, strings.HasPrefix(b.BillNumber, "BILL-"))
	assert.Len(t, b.BillNumber, 13)
	assert.Equal(t, strings.ToUpper(b.BillNumber), b.BillNumber)
	assert.False(t, b.BillDate.IsZero())

	kept := &model.Bill{BillNumber: "BILL-ABCDEF12"}
	require.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "BILL-ABCDEF12", kept.BillNumber)
}

func TestDonation_Transitions(t *testing.T) {
	now := time.Now()

	d := model.Donation{Status: model.DonationPending}
	assert.True(t, d.CanDelete())
	require.True(t, d.TransitionTo(model.DonationCompleted, now))
	assert.Equal(t, model.DonationCompleted, d.Status)
	require.NotNil(t, d.CompletedDate)
	assert.False(t, d.CanDelete())

	assert.False(t, d.TransitionTo(model.DonationPending, now))
	assert.False(t, d.TransitionTo(model.DonationRejected, now))
	assert.True(t, d.TransitionTo(model.DonationCompleted, now), "same status is a no-op")

	rej := model.Donation{Status: model.DonationPending}
	require.True(t, rej.TransitionTo(model.DonationRejected, now))
	assert.Nil(t, rej.CompletedDate)
	assert.False(t, rej.TransitionTo(model.DonationStatus("LOST"), now))
}

func TestReminder_SetCompleted(t *testing.T) {
	now := time.Now()
	r := model.Reminder{}

	r.SetCompleted(true, nil, now)
	require.NotNil(t, r.CompletedAt)
	assert.Equal(t, now, *r.CompletedAt)

	explicit := now.Add(-time.Hour)
	r.SetCompleted(true, &explicit, now)
	assert.Equal(t, explicit, *r.CompletedAt)

	r.SetCompleted(false, &explicit, now)
	assert.False(t, r.Completed)
	assert.Nil(t, r.CompletedAt)
}

func TestUser_Roles(t *testing.T) {
	u := model.User{ID: uuid.New(), FirstName: "Ana", LastName: "Lee",
		Roles: []model.Role{{Name: model.RoleUser}, {Name: model.RoleAdmin}}}
	assert.True(t, u.HasRole(model.RoleAdmin))
	assert.False(t, u.HasRole(model.RolePharmacy))
	assert.Equal(t, []string{model.RoleUser, model.RoleAdmin}, u.RoleNames())
	assert.Equal(t, "Ana Lee", u.FullName())
}

func TestStaffRole_Valid(t *testing.T) {
	assert.True(t, model.StaffCashier.Valid())
	assert.False(t, model.StaffRole("OWNER").Valid())

	staff := model.PharmacyStaff{Role: model.StaffAdmin, Active: false}
	assert.False(t, staff.IsAdmin(), "inactive admins grant nothing")
}
