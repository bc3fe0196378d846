package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pharmacare/internal/infra"
	"pharmacare/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	BillID        string `json:"bill_id"`
	CustomerEmail string `json:"customer_email"`
}

// BillFinder loads a bill with its items and pharmacy.
type BillFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// ReceiptWorker renders the PDF receipt of a bill and queues the email that
// carries it.
type ReceiptWorker struct {
	bills       BillFinder
	emails      EmailEnqueuer
	storagePath string
	render      func(bill *model.Bill, storagePath string) (string, error)
}

func NewReceiptWorker(bills BillFinder, emails EmailEnqueuer, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		bills:       bills,
		emails:      emails,
		storagePath: storagePath,
		render:      infra.GenerateBillPDF,
	}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("receipt_worker: invalid payload: %w", err))
	}
	billID, err := uuid.Parse(payload.BillID)
	if err != nil {
		return Permanent(fmt.Errorf("receipt_worker: invalid bill_id %q", payload.BillID))
	}

	bill, err := w.bills.FindByID(ctx, billID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Permanent(fmt.Errorf("receipt_worker: bill %s not found", billID))
	}
	if err != nil {
		return fmt.Errorf("receipt_worker: load bill: %w", err)
	}

	path, err := w.render(bill, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: render pdf: %w", err)
	}
	log.Info().Str("bill_number", bill.BillNumber).Str("pdf", path).Msg("receipt_worker: PDF generated")

	to := payload.CustomerEmail
	if to == "" && bill.CustomerEmail != nil {
		to = *bill.CustomerEmail
	}
	if to == "" {
		return nil
	}

	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail:        to,
		Subject:        receiptSubject(bill),
		Body:           receiptBody(bill),
		AttachmentPath: path,
	})
}

func receiptSubject(bill *model.Bill) string {
	if bill.Pharmacy != nil {
		return fmt.Sprintf("Your receipt %s from %s", bill.BillNumber, bill.Pharmacy.Name)
	}
	return fmt.Sprintf("Your receipt %s", bill.BillNumber)
}

func receiptBody(bill *model.Bill) string {
	return fmt.Sprintf("Thank you for your purchase.\n\nBill: %s\nDate: %s\nTotal: %s\n\nThe receipt is attached as a PDF.",
		bill.BillNumber, bill.BillDate.Format("2006-01-02 15:04"), bill.TotalAmount.StringFixed(2))
}
