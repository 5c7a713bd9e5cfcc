package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"

	"garderie_backend/internals/features/finance/receipts/templates"
	"garderie_backend/internals/helpers/dbtime"
)

// Printer turns an HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, document []byte) ([]byte, error)
}

type Company struct {
	Name     string
	Address  string
	Phone    string
	Currency string
}

type PaymentReceipt struct {
	Company       Company
	ReceiptNumber string
	PaymentDate   time.Time
	ChildName     string
	ClassLabel    string
	ParentName    string
	Amount        int64
	MethodLabel   string
	TypeLabel     string
	Period        string
	Status        string
	RecordedBy    string
	Notes         string
}

type ExpenseReceipt struct {
	Company       Company
	ReceiptNumber string
	Date          time.Time
	TitleLabel    string
	Description   string
	Amount        int64
	Status        string
	CreatedBy     string
	Notes         string
}

const (
	tplPayment = "payment_receipt"
	tplExpense = "expense_receipt"
)

// Renderer fills the embedded receipt templates and prints them.
type Renderer struct {
	engine  *html.Engine
	printer Printer
	company Company
}

func NewRenderer(printer Printer, company Company) (*Renderer, error) {
	if company.Currency == "" {
		company.Currency = "FCFA"
	}
	engine := html.NewFileSystem(http.FS(templates.FS), ".html")
	engine.AddFunc("money", FormatAmount)
	engine.AddFunc("date", func(t time.Time) string { return t.In(dbtime.Location()).Format("02/01/2006") })
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load receipt templates: %w", err)
	}
	return &Renderer{engine: engine, printer: printer, company: company}, nil
}

func (r *Renderer) PaymentHTML(data PaymentReceipt) ([]byte, error) {
	data.Company = r.company
	return r.render(tplPayment, data)
}

func (r *Renderer) ExpenseHTML(data ExpenseReceipt) ([]byte, error) {
	data.Company = r.company
	return r.render(tplExpense, data)
}

func (r *Renderer) PaymentPDF(ctx context.Context, data PaymentReceipt) ([]byte, error) {
	doc, err := r.PaymentHTML(data)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, doc)
}

func (r *Renderer) ExpensePDF(ctx context.Context, data ExpenseReceipt) ([]byte, error) {
	doc, err := r.ExpenseHTML(data)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, doc)
}

func (r *Renderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) print(ctx context.Context, doc []byte) ([]byte, error) {
	if r.printer == nil {
		return nil, fmt.Errorf("no PDF printer configured")
	}
	pdf, err := r.printer.PrintPDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

// FormatAmount groups thousands with spaces: 150000 → "150 000 FCFA".
func FormatAmount(amount int64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// FileName is the download name of a receipt.
func FileName(receiptNumber string) string {
	return "recu-" + receiptNumber + ".pdf"
}
