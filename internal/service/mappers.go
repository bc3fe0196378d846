package service

import (
	"time"

	"pharmacare/internal/dto"
	"pharmacare/internal/model"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}

func toProfileResponse(u *model.User) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		UserResponse:     toUserResponse(u),
		Phone:            u.Phone,
		DateOfBirth:      formatOptionalDate(u.DateOfBirth),
		Address:          u.Address,
		BloodType:        u.BloodType,
		Allergies:        []string(u.Allergies),
		EmergencyContact: map[string]any(u.EmergencyContact),
		UpdatedAt:        u.UpdatedAt,
	}
	if resp.Allergies == nil {
		resp.Allergies = []string{}
	}
	return resp
}

// toStaffResponse flattens the staff row with its pharmacy and user. Both
// associations are optional.
func toStaffResponse(s *model.PharmacyStaff) dto.PharmacyStaffResponse {
	resp := dto.PharmacyStaffResponse{
		ID:         s.ID.String(),
		PharmacyID: s.PharmacyID.String(),
		UserID:     s.UserID.String(),
		Role:       string(s.Role),
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Pharmacy != nil {
		resp.PharmacyName = s.Pharmacy.Name
	}
	if s.User != nil {
		resp.UserName = s.User.FullName()
		resp.UserEmail = s.User.Email
		resp.FirstName = s.User.FirstName
		resp.LastName = s.User.LastName
		resp.Email = s.User.Email
	}
	return resp
}

func toPharmacyResponse(p *model.Pharmacy) dto.PharmacyResponse {
	return dto.PharmacyResponse{
		ID:                 p.ID.String(),
		Name:               p.Name,
		RegistrationNumber: p.RegistrationNumber,
		Address:            p.Address,
		Phone:              p.Phone,
		Email:              p.Email,
		Website:            p.Website,
		Active:             p.Active,
		OwnerID:            p.OwnerID.String(),
		CreatedAt:          p.CreatedAt,
	}
}

func toInventoryResponse(inv *model.Inventory, now time.Time) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:                   inv.ID.String(),
		PharmacyID:           inv.PharmacyID.String(),
		MedicationName:       inv.MedicationName,
		Manufacturer:         inv.Manufacturer,
		BatchNumber:          inv.BatchNumber,
		ExpiryDate:           inv.ExpiryDate.Format(dateLayout),
		Quantity:             inv.Quantity,
		MinimumStockLevel:    inv.MinimumStockLevel,
		CostPrice:            inv.CostPrice,
		SellingPrice:         inv.SellingPrice,
		Active:               inv.Active,
		MedicationType:       string(inv.MedicationType),
		Description:          inv.Description,
		DosageForm:           inv.DosageForm,
		Strength:             inv.Strength,
		StorageConditions:    inv.StorageConditions,
		LowStock:             inv.IsLowStock(),
		Expired:              inv.IsExpired(now),
		ExpiringWithin30Days: inv.IsExpiringWithin(now, model.ExpiringSoonWindowDays),
		CreatedAt:            inv.CreatedAt,
		UpdatedAt:            inv.UpdatedAt,
	}
}

func toBillResponse(b *model.Bill) dto.BillResponse {
	resp := dto.BillResponse{
		ID:                    b.ID.String(),
		BillNumber:            b.BillNumber,
		PharmacyID:            b.PharmacyID.String(),
		CustomerName:          b.CustomerName,
		CustomerPhone:         b.CustomerPhone,
		CustomerEmail:         b.CustomerEmail,
		Subtotal:              b.Subtotal,
		DiscountAmount:        b.DiscountAmount,
		TaxAmount:             b.TaxAmount,
		TotalAmount:           b.TotalAmount,
		PaymentMethod:         string(b.PaymentMethod),
		PaymentStatus:         string(b.PaymentStatus),
		Notes:                 b.Notes,
		PrescriptionReference: b.PrescriptionReference,
		CreatedByID:           b.CreatedByID.String(),
		BillDate:              b.BillDate,
		CreatedAt:             b.CreatedAt,
		Items:                 make([]dto.BillItemResponse, len(b.Items)),
	}
	if b.CustomerID != nil {
		id := b.CustomerID.String()
		resp.CustomerID = &id
	}
	if b.Pharmacy != nil {
		resp.PharmacyName = b.Pharmacy.Name
	}
	if b.CreatedBy != nil {
		resp.CreatedByName = b.CreatedBy.FullName()
	}
	for i, it := range b.Items {
		resp.Items[i] = dto.BillItemResponse{
			ID:             it.ID.String(),
			InventoryID:    it.InventoryID.String(),
			ItemName:       it.ItemName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxAmount:      it.TaxAmount,
			Subtotal:       it.Subtotal,
			TotalAmount:    it.TotalAmount,
		}
	}
	return resp
}

func toMedicationResponse(m *model.Medication) dto.MedicationResponse {
	return dto.MedicationResponse{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		Dosage:      m.Dosage,
		Frequency:   m.Frequency,
		StartDate:   formatOptionalDate(m.StartDate),
		EndDate:     formatOptionalDate(m.EndDate),
		Active:      m.Active,
		Stock:       m.Stock,
		UserID:      m.UserID.String(),
		CreatedAt:   m.CreatedAt,
	}
}

func toReminderResponse(r *model.Reminder) dto.ReminderResponse {
	resp := dto.ReminderResponse{
		ID:           r.ID.String(),
		MedicationID: r.MedicationID.String(),
		ReminderTime: r.ReminderTime,
		Notes:        r.Notes,
		Completed:    r.Completed,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
	}
	if r.Medication != nil {
		resp.MedicationName = r.Medication.Name
	}
	return resp
}

func toFamilyMemberResponse(m *model.FamilyMember) dto.FamilyMemberResponse {
	return dto.FamilyMemberResponse{
		ID:                 m.ID.String(),
		Name:               m.Name,
		Relationship:       m.Relationship,
		Age:                m.Age,
		CanViewMedications: m.CanViewMedications,
		CanEditMedications: m.CanEditMedications,
		CanManageReminders: m.CanManageReminders,
		Status:             m.Status,
		CreatedAt:          m.CreatedAt,
	}
}

func toDonationResponse(d *model.Donation) dto.DonationResponse {
	return dto.DonationResponse{
		ID:            d.ID.String(),
		MedicineName:  d.MedicineName,
		Quantity:      d.Quantity,
		ExpiryDate:    formatOptionalDate(d.ExpiryDate),
		Location:      d.Location,
		Organization:  d.Organization,
		Notes:         d.Notes,
		Status:        string(d.Status),
		DonationDate:  d.DonationDate,
		CompletedDate: d.CompletedDate,
	}
}

func toDocumentResponse(d *model.MedicalDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:               d.ID.String(),
		DocumentType:     d.DocumentType,
		FileName:         d.FileName,
		FileType:         d.FileType,
		FileSize:         d.FileSize,
		Checksum:         d.Checksum,
		Description:      d.Description,
		UploadDate:       d.UploadDate,
		LastModifiedDate: d.LastModifiedDate,
	}
}
