package service_test

import (
	"context"
	"testing"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pharmacyFixture struct {
	users      *stubUserRepo
	pharmacies *stubPharmacyRepo
	svc        service.PharmacyService
	pharmacy   *model.Pharmacy
	admin      *model.User
	cashier    *model.User
}

func newPharmacyFixture() *pharmacyFixture {
	users := newStubUserRepo()
	pharmacies := newStubPharmacyRepo(users)
	ph := pharmacies.seed("Main")
	admin := users.seed("admin@main.test", "x", model.RolePharmacy)
	cashier := users.seed("cashier@main.test", "x", model.RolePharmacy)
	pharmacies.seedStaff(ph.ID, admin.ID, model.StaffAdmin, true)
	pharmacies.seedStaff(ph.ID, cashier.ID, model.StaffCashier, true)
	return &pharmacyFixture{
		users:      users,
		pharmacies: pharmacies,
		svc:        service.NewPharmacyService(pharmacies, users),
		pharmacy:   ph,
		admin:      admin,
		cashier:    cashier,
	}
}

func TestPharmacyGet_MemberAndOutsider(t *testing.T) {
	f := newPharmacyFixture()
	outsider := f.users.seed("out@test.com", "x", model.RoleUser)
	root := f.users.seed("root@test.com", "x", model.RoleAdmin)

	resp, err := f.svc.Get(context.Background(), principalOf(f.cashier), f.pharmacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", resp.Name)

	_, err = f.svc.Get(context.Background(), principalOf(root), f.pharmacy.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), principalOf(outsider), f.pharmacy.ID)
	assert.True(t, apierror.Is(err, apierror.KindForbidden))

	_, err = f.svc.Get(context.Background(), principalOf(f.cashier), uuid.New())
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestListMine(t *testing.T) {
	f := newPharmacyFixture()
	list, err := f.svc.ListMine(context.Background(), principalOf(f.cashier))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.pharmacy.ID.String(), list[0].ID)
}

func TestListStaff_RequiresPharmacyAdmin(t *testing.T) {
	f := newPharmacyFixture()

	list, err := f.svc.ListStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.ListStaff(context.Background(), principalOf(f.cashier), f.pharmacy.ID)
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}

func TestAddStaff(t *testing.T) {
	f := newPharmacyFixture()
	newcomer := f.users.seed("new@test.com", "x", model.RoleUser)

	resp, err := f.svc.AddStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "new@test.com", Role: "PHARMACIST"})
	require.NoError(t, err)
	assert.Equal(t, "PHARMACIST", resp.Role)
	assert.True(t, newcomer.HasRole(model.RolePharmacy))

	_, err = f.svc.AddStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "new@test.com", Role: "CASHIER"})
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	_, err = f.svc.AddStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "nobody@test.com", Role: "CASHIER"})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = f.svc.AddStaff(context.Background(), principalOf(f.cashier), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "new@test.com", Role: "CASHIER"})
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}

func TestAddStaff_LostMembershipRace(t *testing.T) {
	f := newPharmacyFixture()
	f.users.seed("new@test.com", "x", model.RoleUser)
	f.pharmacies.createStaffErr = gorm.ErrDuplicatedKey

	_, err := f.svc.AddStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "new@test.com", Role: "CASHIER"})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
	assert.Equal(t, "User new@test.com is already a staff member of this pharmacy", err.Error())
}

func TestAddStaff_ReactivatesInsideTransaction(t *testing.T) {
	f := newPharmacyFixture()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	f.pharmacies.db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	former := f.users.seed("former@test.com", "x", model.RolePharmacy)
	row := f.pharmacies.seedStaff(f.pharmacy.ID, former.ID, model.StaffCashier, false)

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := f.svc.AddStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID,
		dto.AddStaffRequest{Email: "former@test.com", Role: "PHARMACIST"})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, "PHARMACIST", resp.Role)
	assert.True(t, f.pharmacies.staff[row.ID].Active)

	require.Len(t, f.pharmacies.staffTx, 1)
	assert.NotNil(t, f.pharmacies.staffTx[0], "reactivation must use the transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateStaff(t *testing.T) {
	f := newPharmacyFixture()
	var cashierStaff, adminStaff uuid.UUID
	for id, s := range f.pharmacies.staff {
		if s.UserID == f.cashier.ID {
			cashierStaff = id
		} else {
			adminStaff = id
		}
	}

	_, err := f.svc.DeactivateStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID, adminStaff)
	assert.True(t, apierror.Is(err, apierror.KindBadRequest), "admins cannot deactivate themselves")

	resp, err := f.svc.DeactivateStaff(context.Background(), principalOf(f.admin), f.pharmacy.ID, cashierStaff)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.False(t, f.pharmacies.staff[cashierStaff].Active)

	// a deactivated cashier loses membership
	_, err = f.svc.Get(context.Background(), principalOf(f.cashier), f.pharmacy.ID)
	assert.True(t, apierror.Is(err, apierror.KindForbidden))

	other := f.pharmacies.seed("Other")
	_, err = f.svc.DeactivateStaff(context.Background(), principalOf(f.admin), other.ID, cashierStaff)
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}
