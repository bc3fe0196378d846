package service

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/metrics"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxBillPageSize = 200

// ReceiptDispatcher enqueues the e-mailed receipt of a committed bill.
type ReceiptDispatcher interface {
	EnqueueReceipt(ctx context.Context, billID uuid.UUID, email string) error
}

type BillService interface {
	Create(ctx context.Context, p dto.Principal, req dto.CreateBillRequest) (*dto.BillResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.BillResponse, error)
	List(ctx context.Context, p dto.Principal, filter dto.BillFilter) (*dto.BillListResponse, error)
	SalesSummary(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, period string) (*dto.SalesSummary, error)
}

type billService struct {
	repo       repository.BillRepository
	inventory  repository.InventoryRepository
	movements  repository.StockMovementRepository
	pharmacies repository.PharmacyRepository
	users      repository.UserRepository
	access     accessChecker
	cache      countsCache
	dispatcher ReceiptDispatcher
}

// NewBillService wires billing. rdb and dispatcher may be nil: the first
// skips stats cache invalidation, the second skips receipts.
func NewBillService(
	repo repository.BillRepository,
	inventory repository.InventoryRepository,
	movements repository.StockMovementRepository,
	pharmacies repository.PharmacyRepository,
	users repository.UserRepository,
	rdb *redis.Client,
	dispatcher ReceiptDispatcher,
) BillService {
	return &billService{
		repo:       repo,
		inventory:  inventory,
		movements:  movements,
		pharmacies: pharmacies,
		users:      users,
		access:     accessChecker{pharmacies: pharmacies},
		cache:      countsCache{rdb: rdb},
		dispatcher: dispatcher,
	}
}

type lineRequest struct {
	inventoryID uuid.UUID
	quantity    int
}

// mergeLines folds repeated inventory ids into one line, keeping first-seen order.
func mergeLines(items []dto.BillItemRequest) ([]lineRequest, error) {
	idx := make(map[uuid.UUID]int, len(items))
	var lines []lineRequest
	for _, it := range items {
		id, err := uuid.Parse(it.InventoryID)
		if err != nil {
			return nil, apierror.BadRequest("Invalid inventory id: %s", it.InventoryID)
		}
		if it.Quantity < 1 {
			return nil, apierror.BadRequest("Quantity must be at least 1")
		}
		if i, ok := idx[id]; ok {
			lines[i].quantity += it.Quantity
			continue
		}
		idx[id] = len(lines)
		lines = append(lines, lineRequest{inventoryID: id, quantity: it.Quantity})
	}
	return lines, nil
}

// ── Create ───────────────────────────────────────────────────────────────────
// Pre-flight checks run outside the transaction. Inside it:
//   1. lock every referenced inventory row in ascending id order
//   2. check ownership, active flag and available stock
//   3. conditional decrement per row
//   4. insert bill, items and stock movements
// After commit: receipt job (best effort) and stats cache invalidation.

func (s *billService) Create(ctx context.Context, p dto.Principal, req dto.CreateBillRequest) (*dto.BillResponse, error) {
	pharmacyID, err := uuid.Parse(req.PharmacyID)
	if err != nil {
		return nil, apierror.BadRequest("Invalid pharmacy id: %s", req.PharmacyID)
	}
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	pharmacy, err := s.pharmacies.FindByID(ctx, pharmacyID)
	if err != nil {
		return nil, lookupErr(err, "Pharmacy not found with id: %s", pharmacyID)
	}

	bill := &model.Bill{
		PharmacyID:            pharmacyID,
		CustomerName:          req.CustomerName,
		CustomerPhone:         req.CustomerPhone,
		CustomerEmail:         req.CustomerEmail,
		DiscountAmount:        req.DiscountAmount,
		TaxAmount:             req.TaxAmount,
		PaymentMethod:         model.PaymentMethod(req.PaymentMethod),
		PaymentStatus:         model.PaymentStatus(req.PaymentStatus),
		Notes:                 req.Notes,
		PrescriptionReference: req.PrescriptionReference,
		CreatedByID:           p.UserID,
		Pharmacy:              pharmacy,
	}
	if bill.PaymentStatus == "" {
		bill.PaymentStatus = model.PaymentPaid
	}
	if !bill.PaymentMethod.Valid() {
		return nil, apierror.BadRequest("Invalid payment method: %s", req.PaymentMethod)
	}
	if !bill.PaymentStatus.Valid() {
		return nil, apierror.BadRequest("Invalid payment status: %s", req.PaymentStatus)
	}
	if bill.DiscountAmount.IsNegative() || bill.TaxAmount.IsNegative() {
		return nil, apierror.BadRequest("Discount and tax amounts must not be negative")
	}

	if req.CustomerID != nil && *req.CustomerID != "" {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, apierror.BadRequest("Invalid customer id: %s", *req.CustomerID)
		}
		customer, err := s.users.FindByID(ctx, cid)
		if err != nil {
			return nil, lookupErr(err, "Customer not found with id: %s", cid)
		}
		bill.CustomerID = &cid
		if bill.CustomerName == nil || strings.TrimSpace(*bill.CustomerName) == "" {
			name := customer.FullName()
			bill.CustomerName = &name
		}
		if bill.CustomerEmail == nil {
			bill.CustomerEmail = &customer.Email
		}
	} else if bill.CustomerName == nil || strings.TrimSpace(*bill.CustomerName) == "" {
		return nil, apierror.BadRequest("Customer name is required when no customer id is provided")
	}

	if len(req.Items) == 0 {
		return nil, apierror.BadRequest("A bill needs at least one item")
	}
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.inventoryID
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	var movements []model.StockMovement
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.inventory.LockForUpdate(tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Inventory, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		bill.Items = make([]model.BillItem, 0, len(lines))
		movements = movements[:0]
		for _, l := range lines {
			inv, ok := byID[l.inventoryID]
			if !ok {
				return apierror.NotFound("Inventory item not found with id: %s", l.inventoryID)
			}
			if inv.PharmacyID != pharmacyID {
				return apierror.BadRequest("Inventory item %s does not belong to this pharmacy", inv.MedicationName)
			}
			if !inv.Active {
				return apierror.BadRequest("Inventory item %s is not active", inv.MedicationName)
			}
			if inv.Quantity < l.quantity {
				return insufficientStock(inv, l.quantity)
			}
			bill.Items = append(bill.Items, model.BillItem{
				InventoryID: inv.ID,
				ItemName:    inv.MedicationName,
				Quantity:    l.quantity,
				UnitPrice:   inv.SellingPrice,
			})
			movements = append(movements, model.StockMovement{
				InventoryID: inv.ID,
				Type:        model.MovementSale,
				Quantity:    -l.quantity,
				StockBefore: inv.Quantity,
				StockAfter:  inv.Quantity - l.quantity,
				CreatedByID: p.UserID,
			})
		}

		for _, l := range lines {
			ok, err := s.inventory.DecrementStockTx(tx, l.inventoryID, l.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(byID[l.inventoryID], l.quantity)
			}
		}

		bill.ComputeTotals()
		if err := s.repo.Create(ctx, tx, bill); err != nil {
			return err
		}
		for i := range movements {
			movements[i].BillID = &bill.ID
			if err := s.movements.CreateTx(tx, &movements[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if apierror.Is(txErr, apierror.KindConflict) {
			metrics.StockConflicts.Inc()
		}
		return nil, storeErr(txErr)
	}

	metrics.BillsCreated.Inc()
	s.cache.invalidate(pharmacyID)
	log.Info().
		Str("bill_id", bill.ID.String()).
		Str("bill_number", bill.BillNumber).
		Str("pharmacy_id", pharmacyID.String()).
		Str("total", bill.TotalAmount.StringFixed(2)).
		Int("items", len(bill.Items)).
		Msg("bill created")

	if bill.CustomerEmail != nil && *bill.CustomerEmail != "" && s.dispatcher != nil {
		if err := s.dispatcher.EnqueueReceipt(ctx, bill.ID, *bill.CustomerEmail); err != nil {
			log.Warn().Err(err).Str("bill_id", bill.ID.String()).Msg("receipt job enqueue failed")
		}
	}

	if creator, err := s.users.FindByID(ctx, p.UserID); err == nil {
		bill.CreatedBy = creator
	}
	resp := toBillResponse(bill)
	return &resp, nil
}

func insufficientStock(inv *model.Inventory, requested int) error {
	return apierror.Conflict("Insufficient stock for item: %s (Requested: %d, Available: %d)",
		inv.MedicationName, requested, inv.Quantity)
}

func (s *billService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.BillResponse, error) {
	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Bill not found with id: %s", id)
	}
	ok, err := s.access.isMember(ctx, p, bill.PharmacyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierror.NotFound("Bill not found with id: %s", id)
	}
	resp := toBillResponse(bill)
	return &resp, nil
}

func (s *billService) List(ctx context.Context, p dto.Principal, filter dto.BillFilter) (*dto.BillListResponse, error) {
	pharmacyID, err := uuid.Parse(filter.PharmacyID)
	if err != nil {
		return nil, apierror.BadRequest("Invalid pharmacy id: %s", filter.PharmacyID)
	}
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	page, limit, _ := repository.Page(filter.Page, filter.Limit, maxBillPageSize)
	bills, total, err := s.repo.List(ctx, pharmacyID, page, limit)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := &dto.BillListResponse{Data: make([]dto.BillResponse, len(bills)), Total: total, Page: page, Limit: limit}
	for i := range bills {
		resp.Data[i] = toBillResponse(&bills[i])
	}
	return resp, nil
}

// PeriodStart returns the start of the reporting period containing now:
// midnight today, the last seven days, the first of the month or of the year.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	today := model.DateOnly(now)
	switch period {
	case "", "day":
		return today, true
	case "week":
		return today.AddDate(0, 0, -6), true
	case "month":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), true
	case "year":
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func (s *billService) SalesSummary(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, period string) (*dto.SalesSummary, error) {
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	from, ok := PeriodStart(period, now)
	if !ok {
		return nil, apierror.BadRequest("Invalid period: %s (expected day, week, month or year)", period)
	}
	if period == "" {
		period = "day"
	}
	total, count, err := s.repo.SumPaid(ctx, pharmacyID, from, now)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	return &dto.SalesSummary{
		PharmacyID: pharmacyID.String(),
		Period:     period,
		From:       from,
		To:         now,
		TotalSales: total,
		BillCount:  count,
	}, nil
}
