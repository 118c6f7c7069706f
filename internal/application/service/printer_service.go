package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	billRepo    repository.BillRepository
	sourceRepo  repository.SourceRepository
	printerType string
	width       int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	billRepo repository.BillRepository,
	sourceRepo repository.SourceRepository,
	printerType string,
	width int,
) *PrinterService {
	if width <= 0 {
		width = printer.Width58mm
	}
	return &PrinterService{
		printer:     p,
		billRepo:    billRepo,
		sourceRepo:  sourceRepo,
		printerType: printerType,
		width:       width,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
		Width:      s.width,
	}
}

// TestPrint sends a test page to the printer.
// The receipt is returned so the handler can show it when no printer is attached.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:   entity.ReceiptHeader{StoreName: "PRINTER TEST"},
		BillNo:   "TEST-001",
		Date:     "Test Date",
		Cashier:  "System",
		Items:    []entity.ReceiptItem{{Name: "Test Item", Quantity: 2, UnitPrice: 500, Total: 1000}},
		SubTotal: 1000,
		Total:    1000,
		Paid:     1000,
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// BuildReceipt composes the printable receipt for a bill
func (s *PrinterService) BuildReceipt(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	source, err := s.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NewNotFoundError("Source")
	}

	header := entity.ReceiptHeader{
		StoreName: source.Name,
		Address:   source.Settings.Address,
		Phone:     source.Settings.Phone,
		TaxID:     source.Settings.TaxID,
	}
	if source.Settings.BusinessName != "" {
		header.StoreName = source.Settings.BusinessName
	}

	receipt := &entity.Receipt{
		Header:        header,
		BillNo:        bill.BillNo,
		Date:          bill.BillDate.Format("2006-01-02 15:04"),
		PaymentMethod: bill.PaymentMethod,
		SubTotal:      bill.SubTotal,
		GSTLabel:      gstLabel(bill),
		GST:           bill.GST,
		Discount:      bill.Discount,
		Total:         bill.Total,
		Paid:          bill.Paid,
		Due:           bill.Due,
		Footer:        source.Settings.ReceiptFooter,
	}
	if bill.Payer != nil {
		receipt.Payer = bill.Payer.Name
	}
	for _, it := range bill.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Total:     it.Total,
		})
	}
	return receipt, nil
}

// PrintBill prints a bill's receipt. The receipt is returned even when printing fails.
func (s *PrinterService) PrintBill(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		log.Printf("Printer error (bill %s): %v", billID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

func gstLabel(bill *entity.Bill) string {
	mode := "additive"
	if bill.GstMode == enum.GstModeInclusive {
		mode = "incl."
	}
	return fmt.Sprintf("GST %s%% (%s)", bill.GstRate.String(), mode)
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("GSTIN: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Bill:", r.BillNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Payer != "" {
		doc.KeyValue("Customer:", r.Payer)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total.String())
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", r.SubTotal.String())
	if r.GST != 0 {
		label := r.GSTLabel
		if label == "" {
			label = "GST"
		}
		doc.KeyValue(label+":", r.GST.String())
	}
	if r.Discount > 0 {
		doc.KeyValue("Discount:", "-"+r.Discount.String())
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.Total.String()).
		SetBold(false)

	if r.Paid > 0 {
		doc.KeyValue("Paid:", r.Paid.String())
	}
	if r.Due > 0 {
		doc.KeyValue("Due:", r.Due.String())
	}

	doc.Separator('-')

	footer := r.Footer
	if footer == "" {
		footer = "Thank you for your business!"
	}
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text(footer).
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
