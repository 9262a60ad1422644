package service

import (
	"context"
	"fmt"

	"github.com/sangkips/tailorbook-api/internal/config"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/logger"
	"github.com/sangkips/tailorbook-api/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterService formats payment slips and sends them to the counter printer.
type PrinterService struct {
	printer  printer.Printer
	bills    *BillService
	receipts *ReceiptService
	cfg      config.PrinterConfig
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, bills *BillService, receipts *ReceiptService, cfg config.PrinterConfig) *PrinterService {
	return &PrinterService{
		printer:  p,
		bills:    bills,
		receipts: receipts,
		cfg:      cfg,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// PaymentSlip is the printable view of one receipt
type PaymentSlip struct {
	ShopName      string             `json:"shop_name"`
	ShopAddress   string             `json:"shop_address,omitempty"`
	ShopPhone     string             `json:"shop_phone,omitempty"`
	ReceiptNumber int64              `json:"receipt_number"`
	BillNumber    int64              `json:"bill_number"`
	Date          string             `json:"date"`
	Customer      string             `json:"customer"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	PaymentType   enum.PaymentType   `json:"payment_type"`
	BillTotal     decimal.Decimal    `json:"bill_total"`
	Amount        decimal.Decimal    `json:"amount"`
	Discount      decimal.Decimal    `json:"discount"`
	Taxes         []SlipTax          `json:"taxes,omitempty"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	DueBefore     decimal.Decimal    `json:"due_before"`
	DueAfter      decimal.Decimal    `json:"due_after"`
	Status        enum.PaymentStatus `json:"status"`
}

// SlipTax is one tax line printed on a slip
type SlipTax struct {
	Name  string `json:"name"`
	Label string `json:"label"` // "5%" or a flat amount
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.cfg.Type != printer.TypeNone && s.cfg.Type != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.cfg.Type,
	}
}

// BuildSlip assembles the slip of a receipt without printing it.
func (s *PrinterService) BuildSlip(ctx context.Context, receiptNumber int64) (*PaymentSlip, error) {
	receipt, err := s.receipts.GetReceipt(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.receipts.Breakdown(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	bill, err := s.bills.GetBill(ctx, receipt.BillNumber)
	if err != nil {
		return nil, err
	}

	slip := &PaymentSlip{
		ShopName:      s.cfg.ShopName,
		ShopAddress:   s.cfg.ShopAddress,
		ShopPhone:     s.cfg.ShopPhone,
		ReceiptNumber: receipt.ReceiptNumber,
		BillNumber:    receipt.BillNumber,
		Date:          receipt.PaymentDate.Format("02-01-2006"),
		Customer:      receipt.Name,
		PaymentMethod: receipt.PaymentMethod,
		PaymentType:   receipt.PaymentType,
		BillTotal:     bill.TotalAmount,
		Amount:        breakdown.Amount,
		Discount:      breakdown.Discount,
		TaxAmount:     breakdown.TaxAmount,
		DueBefore:     breakdown.DueBefore,
		DueAfter:      breakdown.DueAfter,
		Status:        bill.PaymentStatus,
	}
	for _, line := range receipt.Tax {
		label := line.TaxPercentage.StringFixed(2)
		if line.TaxType == enum.TaxTypePercentage {
			label = line.TaxPercentage.String() + "%"
		}
		slip.Taxes = append(slip.Taxes, SlipTax{Name: line.TaxName, Label: label})
	}
	return slip, nil
}

// PrintReceipt prints the slip of a receipt. The slip is returned even when
// printing fails so the caller can show it on screen.
func (s *PrinterService) PrintReceipt(ctx context.Context, receiptNumber int64) (*PaymentSlip, error) {
	slip, err := s.BuildSlip(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}

	data := FormatPaymentSlip(slip, s.cfg.PaperWidth)
	if err := s.printer.Print(ctx, data); err != nil {
		logger.FromContext(ctx).Warn("Printer error",
			zap.Int64("receipt_number", receiptNumber),
			zap.Error(err),
		)
		return slip, fmt.Errorf("failed to print receipt: %w", err)
	}

	return slip, nil
}

// FormatPaymentSlip converts a slip into ESC/POS bytes.
func FormatPaymentSlip(slip *PaymentSlip, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(slip.ShopName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if slip.ShopAddress != "" {
		doc.Text(slip.ShopAddress)
	}
	if slip.ShopPhone != "" {
		doc.Text(slip.ShopPhone)
	}
	doc.Text("PAYMENT RECEIPT")

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Receipt No:", fmt.Sprintf("%d", slip.ReceiptNumber)).
		KeyValue("Bill No:", fmt.Sprintf("%d", slip.BillNumber)).
		KeyValue("Date:", slip.Date).
		KeyValue("Customer:", slip.Customer).
		KeyValue("Paid by:", string(slip.PaymentMethod)).
		Separator('-')

	doc.KeyValue("Bill total:", slip.BillTotal.StringFixed(2)).
		KeyValue("Due before:", slip.DueBefore.StringFixed(2)).
		SetBold(true).
		KeyValue("AMOUNT PAID:", slip.Amount.StringFixed(2)).
		SetBold(false)
	if slip.Discount.IsPositive() {
		doc.KeyValue("Discount:", slip.Discount.StringFixed(2))
	}
	for _, tax := range slip.Taxes {
		doc.TextF("  %s (%s)", tax.Name, tax.Label)
	}
	if slip.TaxAmount.IsPositive() {
		doc.KeyValue("Tax:", slip.TaxAmount.StringFixed(2))
	}

	doc.Separator('-').
		SetBold(true).
		KeyValue("Balance due:", slip.DueAfter.StringFixed(2)).
		SetBold(false).
		KeyValue("Status:", string(slip.Status))

	doc.SetAlign(printer.AlignCenter).
		FeedLines(1).
		Text("Thank you!").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
