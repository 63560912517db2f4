package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CachedForm is a row in the generated_forms table. It records that a PDF for
// a given parcel, form type, and fiscal year has already been rendered and
// uploaded to the object store.
type CachedForm struct {
	ID         uuid.UUID `json:"id"`
	ParcelID   string    `json:"parcel_id"`
	FormType   string    `json:"form_type"`
	FiscalYear int       `json:"fiscal_year"`
	ObjectKey  string    `json:"object_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// FormRepository handles database operations for cached generated forms.
type FormRepository struct {
	pool *pgxpool.Pool
}

// NewFormRepository creates a new FormRepository.
func NewFormRepository(pool *pgxpool.Pool) *FormRepository {
	return &FormRepository{pool: pool}
}

// Lookup returns the cached form for the given parcel, form type, and fiscal
// year, or nil if none has been generated yet.
func (r *FormRepository) Lookup(ctx context.Context, parcelID, formType string, fiscalYear int) (*CachedForm, error) {
	query := `
		SELECT id, parcel_id, form_type, fiscal_year, object_key, created_at
		FROM generated_forms
		WHERE parcel_id = $1 AND form_type = $2 AND fiscal_year = $3
	`

	var form CachedForm
	err := r.pool.QueryRow(ctx, query, parcelID, formType, fiscalYear).Scan(
		&form.ID,
		&form.ParcelID,
		&form.FormType,
		&form.FiscalYear,
		&form.ObjectKey,
		&form.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up cached form: %w", err)
	}

	return &form, nil
}

// Save records a freshly generated form. Re-generating the same form replaces
// the previous object key.
func (r *FormRepository) Save(ctx context.Context, form *CachedForm) error {
	query := `
		INSERT INTO generated_forms (id, parcel_id, form_type, fiscal_year, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (parcel_id, form_type, fiscal_year)
		DO UPDATE SET object_key = EXCLUDED.object_key, created_at = EXCLUDED.created_at
	`

	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	if form.CreatedAt.IsZero() {
		form.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query,
		form.ID,
		form.ParcelID,
		form.FormType,
		form.FiscalYear,
		form.ObjectKey,
		form.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cached form: %w", err)
	}

	return nil
}
