package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/domain/model"
)

const bookColumns = `id, title, published, pdf_price, currency, pdf_ref, updated_at`

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Published, &b.PDFPrice, &b.Currency, &b.PDFRef, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id=$1`
	book, err := scanBook(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return book, nil
}

func (r *bookRepository) Upsert(ctx context.Context, id string, u model.BookUpdate) (*model.Book, error) {
	const query = `INSERT INTO books (id, title, published, pdf_price, currency)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (id) DO UPDATE
                   SET title = EXCLUDED.title,
                       published = EXCLUDED.published,
                       pdf_price = EXCLUDED.pdf_price,
                       currency = EXCLUDED.currency,
                       updated_at = NOW()
                   RETURNING ` + bookColumns
	return scanBook(r.storage.pool.QueryRow(ctx, query, id, u.Title, u.Published, u.PDFPrice, u.Currency))
}

func (r *bookRepository) AttachPDF(ctx context.Context, id string, ref string) error {
	const query = `UPDATE books SET pdf_ref=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
