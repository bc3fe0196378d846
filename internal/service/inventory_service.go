package service

import (
	"context"
	"time"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultMovementLimit = 50

type InventoryService interface {
	List(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, filter dto.InventoryFilter) ([]dto.InventoryResponse, error)
	Get(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID) (*dto.InventoryResponse, error)
	Create(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, req dto.InventoryRequest) (*dto.InventoryResponse, error)
	Update(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID, req dto.InventoryRequest) (*dto.InventoryResponse, error)
	Delete(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID) error
	Stats(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (*dto.InventoryStats, error)
	Overview(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) ([]dto.OverviewEntry, error)
	Movements(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID, limit int) ([]dto.StockMovementResponse, error)
}

type inventoryService struct {
	repo       repository.InventoryRepository
	pharmacies repository.PharmacyRepository
	movements  repository.StockMovementRepository
	access     accessChecker
	cache      countsCache
}

// NewInventoryService wires the stock service. rdb may be nil, which disables
// the stats cache.
func NewInventoryService(
	repo repository.InventoryRepository,
	pharmacies repository.PharmacyRepository,
	movements repository.StockMovementRepository,
	rdb *redis.Client,
) InventoryService {
	return &inventoryService{
		repo:       repo,
		pharmacies: pharmacies,
		movements:  movements,
		access:     accessChecker{pharmacies: pharmacies},
		cache:      countsCache{rdb: rdb},
	}
}

func (s *inventoryService) List(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, filter dto.InventoryFilter) ([]dto.InventoryResponse, error) {
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := repository.InventoryQuery{
		Search:   filter.Search,
		Type:     model.MedicationType(filter.Type),
		LowStock: filter.LowStock,
	}
	if q.Search == "" && q.Type != "" && !q.Type.Valid() {
		return nil, apierror.BadRequest("Invalid medication type: %s", filter.Type)
	}
	if filter.Expiring {
		from := model.DateOnly(now)
		to := from.AddDate(0, 0, model.ExpiringSoonWindowDays)
		q.ExpiringFrom, q.ExpiringTo = &from, &to
	}

	items, err := s.repo.List(ctx, pharmacyID, q)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.InventoryResponse, len(items))
	for i := range items {
		resp[i] = toInventoryResponse(&items[i], now)
	}
	return resp, nil
}

// Get returns the item even when it was soft-deleted.
func (s *inventoryService) Get(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID) (*dto.InventoryResponse, error) {
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	inv, err := s.find(ctx, pharmacyID, id)
	if err != nil {
		return nil, err
	}
	resp := toInventoryResponse(inv, time.Now().UTC())
	return &resp, nil
}

func (s *inventoryService) Create(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, req dto.InventoryRequest) (*dto.InventoryResponse, error) {
	if _, err := s.pharmacies.FindByID(ctx, pharmacyID); err != nil {
		return nil, lookupErr(err, "Pharmacy not found with id: %s", pharmacyID)
	}
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return nil, err
	}

	inv := &model.Inventory{PharmacyID: pharmacyID, Active: true}
	if err := applyInventoryRequest(inv, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, apierror.Internal(err)
	}
	s.cache.invalidate(pharmacyID)

	log.Info().
		Str("pharmacy_id", pharmacyID.String()).
		Str("inventory_id", inv.ID.String()).
		Int("quantity", inv.Quantity).
		Msg("inventory item created")
	resp := toInventoryResponse(inv, time.Now().UTC())
	return &resp, nil
}

func (s *inventoryService) Update(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID, req dto.InventoryRequest) (*dto.InventoryResponse, error) {
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	inv, err := s.find(ctx, pharmacyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyInventoryRequest(inv, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, apierror.Internal(err)
	}
	s.cache.invalidate(pharmacyID)

	resp := toInventoryResponse(inv, time.Now().UTC())
	return &resp, nil
}

// Delete marks the item inactive; it stays readable by id.
func (s *inventoryService) Delete(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID) error {
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return err
	}
	if _, err := s.find(ctx, pharmacyID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	s.cache.invalidate(pharmacyID)
	log.Info().Str("inventory_id", id.String()).Msg("inventory item deactivated")
	return nil
}

func (s *inventoryService) Stats(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (*dto.InventoryStats, error) {
	c, err := s.counts(ctx, p, pharmacyID)
	if err != nil {
		return nil, err
	}
	return &dto.InventoryStats{
		TotalItems:        c.Total,
		LowStockCount:     c.LowStock,
		ExpiringSoonCount: c.ExpiringSoon,
	}, nil
}

// Overview splits active items into chart buckets. Items that are both low
// and expired are subtracted twice, so In Stock is clamped at zero.
func (s *inventoryService) Overview(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) ([]dto.OverviewEntry, error) {
	c, err := s.counts(ctx, p, pharmacyID)
	if err != nil {
		return nil, err
	}
	inStock := c.Total - c.LowStock - c.OutOfStock - c.Expired
	if inStock < 0 {
		inStock = 0
	}
	return []dto.OverviewEntry{
		{Name: "In Stock", Value: inStock},
		{Name: "Low Stock", Value: c.LowStock},
		{Name: "Out of Stock", Value: c.OutOfStock},
		{Name: "Expired", Value: c.Expired},
	}, nil
}

func (s *inventoryService) Movements(ctx context.Context, p dto.Principal, pharmacyID, id uuid.UUID, limit int) ([]dto.StockMovementResponse, error) {
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, pharmacyID, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultMovementLimit
	}
	rows, err := s.movements.ListByInventory(ctx, id, limit)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.StockMovementResponse, len(rows))
	for i, m := range rows {
		resp[i] = dto.StockMovementResponse{
			ID:          m.ID.String(),
			InventoryID: m.InventoryID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			CreatedByID: m.CreatedByID.String(),
			CreatedAt:   m.CreatedAt,
		}
		if m.BillID != nil {
			id := m.BillID.String()
			resp[i].BillID = &id
		}
	}
	return resp, nil
}

func (s *inventoryService) counts(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (*repository.InventoryCounts, error) {
	if err := s.access.requireMember(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	today := model.DateOnly(time.Now().UTC())
	if c, ok := s.cache.get(ctx, pharmacyID, today); ok {
		return c, nil
	}
	c, err := s.repo.Counts(ctx, pharmacyID, today, model.ExpiringSoonWindowDays)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	s.cache.put(pharmacyID, today, c)
	return c, nil
}

// find loads an item of the pharmacy; an item of another pharmacy is reported
// as missing.
func (s *inventoryService) find(ctx context.Context, pharmacyID, id uuid.UUID) (*model.Inventory, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Inventory item not found with id: %s", id)
	}
	if inv.PharmacyID != pharmacyID {
		return nil, apierror.NotFound("Inventory item not found with id: %s", id)
	}
	return inv, nil
}

func applyInventoryRequest(inv *model.Inventory, req dto.InventoryRequest) error {
	mt := model.MedicationType(req.MedicationType)
	if !mt.Valid() {
		return apierror.BadRequest("Invalid medication type: %s", req.MedicationType)
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return err
	}
	inv.MedicationName = req.MedicationName
	inv.Manufacturer = req.Manufacturer
	inv.BatchNumber = req.BatchNumber
	inv.ExpiryDate = expiry
	inv.Quantity = req.Quantity
	inv.MinimumStockLevel = req.MinimumStockLevel
	inv.CostPrice = req.CostPrice
	inv.SellingPrice = req.SellingPrice
	inv.MedicationType = mt
	inv.Description = req.Description
	inv.DosageForm = req.DosageForm
	inv.Strength = req.Strength
	inv.StorageConditions = req.StorageConditions
	if req.Active != nil {
		inv.Active = *req.Active
	}
	return nil
}
