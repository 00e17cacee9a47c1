package repository

import (
	"context"

	"github.com/polkiloo/pdfshop/internal/domain/model"
)

// BookRepository gives access to catalogue entries sold as PDF.
type BookRepository interface {
	GetByID(ctx context.Context, id string) (*model.Book, error)
	Upsert(ctx context.Context, id string, update model.BookUpdate) (*model.Book, error)
	AttachPDF(ctx context.Context, id string, ref string) error
}
