package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencivic/assessing-api/internal/fiscal"
	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/repository"
	"github.com/opencivic/assessing-api/internal/storage"
)

// Form types accepted by the cache.
const (
	FormAbatement            = "abatement"
	FormResidentialExemption = "residential_exemption"
	FormPersonalExemption    = "personal_exemption"
)

var (
	ErrInvalidFormType = errors.New("unknown form type")
	ErrFormNotCached   = errors.New("form has not been generated for this fiscal year")
)

// FormCache looks up and records generated-form metadata.
type FormCache interface {
	Lookup(ctx context.Context, parcelID, formType string, fiscalYear int) (*repository.CachedForm, error)
	Save(ctx context.Context, form *repository.CachedForm) error
}

// CachedFormLink is the cache-hit payload: a presigned download URL and the
// cache key it was resolved under.
type CachedFormLink struct {
	ParcelID    string    `json:"parcelId"`
	FormType    string    `json:"formType"`
	FiscalYear  int       `json:"fiscalYear"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// FormService caches pre-filled application PDFs. Forms are keyed by
// (parcel, form type, fiscal year): a form generated last fiscal year carries
// stale values and deadlines, so it is never served for the current one.
type FormService struct {
	repo      FormCache
	store     storage.FormStore
	urlExpiry time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewFormService creates a new FormService.
func NewFormService(repo FormCache, store storage.FormStore, urlExpiry time.Duration, log *logger.Logger) *FormService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &FormService{
		repo:      repo,
		store:     store,
		urlExpiry: urlExpiry,
		log:       log,
		now:       time.Now,
	}
}

// GetCachedForm resolves the cache entry for the fiscal year containing asOf
// (zero means now) and returns a presigned download link. A missing entry is
// ErrFormNotCached.
func (s *FormService) GetCachedForm(ctx context.Context, parcelID, formType string, asOf time.Time) (*CachedFormLink, error) {
	if !ValidParcelID(parcelID) {
		return nil, ErrInvalidParcelID
	}
	if !validFormType(formType) {
		return nil, ErrInvalidFormType
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	fiscalYear := fiscal.FiscalYear(asOf)

	form, err := s.repo.Lookup(ctx, parcelID, formType, fiscalYear)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotCached
	}

	url, err := s.store.PresignedURL(ctx, form.ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign cached form: %w", err)
	}

	return &CachedFormLink{
		ParcelID:    form.ParcelID,
		FormType:    form.FormType,
		FiscalYear:  form.FiscalYear,
		URL:         url,
		GeneratedAt: form.CreatedAt,
	}, nil
}

// RegisterForm uploads a freshly generated PDF and records it under the fiscal
// year containing asOf (zero means now). Re-registering replaces the previous
// object for the same key.
func (s *FormService) RegisterForm(ctx context.Context, parcelID, formType string, pdf []byte, asOf time.Time) (*CachedFormLink, error) {
	if !ValidParcelID(parcelID) {
		return nil, ErrInvalidParcelID
	}
	if !validFormType(formType) {
		return nil, ErrInvalidFormType
	}
	if len(pdf) == 0 {
		return nil, errors.New("empty form body")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	fiscalYear := fiscal.FiscalYear(asOf)

	key := FormObjectKey(parcelID, formType, fiscalYear)
	if err := s.store.Put(ctx, key, pdf); err != nil {
		return nil, err
	}

	form := &repository.CachedForm{
		ParcelID:   parcelID,
		FormType:   formType,
		FiscalYear: fiscalYear,
		ObjectKey:  key,
	}
	if err := s.repo.Save(ctx, form); err != nil {
		return nil, err
	}

	s.log.Info("Form registered", map[string]interface{}{
		"parcel_id":   parcelID,
		"form_type":   formType,
		"fiscal_year": fiscalYear,
		"bytes":       len(pdf),
	})

	url, err := s.store.PresignedURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign registered form: %w", err)
	}

	return &CachedFormLink{
		ParcelID:    form.ParcelID,
		FormType:    form.FormType,
		FiscalYear:  form.FiscalYear,
		URL:         url,
		GeneratedAt: form.CreatedAt,
	}, nil
}

// FormObjectKey is the deterministic object-store key for a cache entry.
func FormObjectKey(parcelID, formType string, fiscalYear int) string {
	return fmt.Sprintf("forms/%d/%s/%s.pdf", fiscalYear, formType, parcelID)
}

func validFormType(t string) bool {
	switch t {
	case FormAbatement, FormResidentialExemption, FormPersonalExemption:
		return true
	}
	return false
}
