package invoice

import (
	"fmt"
	"io"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Title   = "Invoice"
	Divider = "--------------------------------"
)

type Line struct {
	Title    string
	Quantity uint
	Price    decimal.Decimal
}

func (l Line) String() string {
	return fmt.Sprintf("%s - %d x %s", l.Title, l.Quantity, money.Format(l.Price))
}

type Document struct {
	OrderID uuid.UUID
	Lines   []Line
	Total   decimal.Decimal
}

// Build prices the order from its snapshot lines only.
func Build(order *models.Order) Document {
	doc := Document{OrderID: order.ID, Total: decimal.Zero}
	for _, it := range order.Items {
		doc.Lines = append(doc.Lines, Line{Title: it.Title, Quantity: it.Quantity, Price: it.Price})
		doc.Total = doc.Total.Add(it.Subtotal())
	}
	return doc
}

func (d Document) TotalLine() string {
	return "Total Price: " + money.Format(d.Total)
}

// Text is the document as plain lines, top to bottom.
func (d Document) Text() []string {
	out := []string{Title, Divider}
	for _, l := range d.Lines {
		out = append(out, l.String())
	}
	return append(out, Divider, d.TotalLine())
}

func Render(w io.Writer, d Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("invoice-%s", d.OrderID), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "U", 26)
	pdf.CellFormat(0, 14, Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, Divider, "", 1, "L", false, 0, "")
	for _, l := range d.Lines {
		pdf.CellFormat(0, 8, tr(l.String()), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, Divider, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 20)
	pdf.CellFormat(0, 12, d.TotalLine(), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", d.OrderID, err)
	}
	return nil
}
