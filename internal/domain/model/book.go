package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is the catalogue entry a PDF edition is sold for.
type Book struct {
	ID        string
	Title     string
	Published bool
	PDFPrice  *decimal.Decimal
	Currency  Currency
	PDFRef    *string
	UpdatedAt time.Time
}

// ForSale reports whether a positive PDF price is configured.
func (b *Book) ForSale() bool {
	return b.PDFPrice != nil && b.PDFPrice.IsPositive()
}

// HasPDF reports whether an admin attached the PDF blob.
func (b *Book) HasPDF() bool {
	return b.PDFRef != nil && *b.PDFRef != ""
}

// BookUpdate holds admin-editable sale attributes of a book.
type BookUpdate struct {
	Title     string
	Published bool
	PDFPrice  *decimal.Decimal
	Currency  Currency
}
