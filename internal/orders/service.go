// Package orders runs create and edit sessions for purchase orders, delivery
// orders and invoices on top of the line-item editor.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
	"github.com/odyssey-erp/odyssey-wms/internal/wmsapi"
)

// API is the subset of the remote client used by draft sessions.
type API interface {
	GetOrder(ctx context.Context, d lineitems.Descriptor, id int64) (json.RawMessage, error)
	CreateOrder(ctx context.Context, d lineitems.Descriptor, payload lineitems.Payload) (wmsapi.Result, error)
	UpdateOrder(ctx context.Context, d lineitems.Descriptor, id int64, payload lineitems.Payload) (wmsapi.Result, error)
}

// Catalog supplies the product list for the pickers.
type Catalog interface {
	Products(ctx context.Context) ([]lineitems.Entity, error)
}

// SubmissionObserver records submission outcomes.
type SubmissionObserver interface {
	ObserveSubmission(kind, outcome string)
}

// Submission outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// SubmitResult is the remote answer to a successful submission.
type SubmitResult struct {
	Kind       lineitems.Kind `json:"kind"`
	RecordID   int64          `json:"recordId,omitempty"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
}

// Service coordinates loading, editing and submitting drafts.
type Service struct {
	api      API
	catalog  Catalog
	store    *Store
	observer SubmissionObserver
	logger   *slog.Logger
	newIDs   func() lineitems.IDGenerator
	now      func() time.Time
}

// NewService wires the draft service.
func NewService(api API, catalog Catalog, store *Store, observer SubmissionObserver, logger *slog.Logger) *Service {
	if store == nil {
		store = NewStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      api,
		catalog:  catalog,
		store:    store,
		observer: observer,
		logger:   logger,
		newIDs:   func() lineitems.IDGenerator { return &lineitems.Sequence{} },
		now:      time.Now,
	}
}

// Store exposes the draft store for sweeping.
func (s *Service) Store() *Store {
	return s.store
}

// Open starts a draft. With recordID > 0 the existing record is fetched
// alongside the catalog and loaded for editing.
func (s *Service) Open(ctx context.Context, kind lineitems.Kind, recordID int64) (View, error) {
	desc, err := lineitems.Lookup(kind)
	if err != nil {
		return View{}, err
	}

	var (
		products []lineitems.Entity
		record   json.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.catalog.Products(gctx)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		products = p
		return nil
	})
	if recordID > 0 {
		g.Go(func() error {
			raw, err := s.api.GetOrder(gctx, desc, recordID)
			if err != nil {
				return fmt.Errorf("%s %d: %w", desc.Resource, recordID, err)
			}
			record = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("open draft", slog.String("kind", string(kind)), slog.Int64("record_id", recordID), slog.Any("error", err))
		return View{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	today := s.now()
	ids := s.newIDs()
	editor := lineitems.NewEditor(desc, products, ids, today)
	if recordID > 0 {
		header, items, err := lineitems.FromWire(desc, record, ids, today)
		if err != nil {
			s.logger.Error("decode record", slog.String("kind", string(kind)), slog.Int64("record_id", recordID), slog.Any("error", err))
			return View{}, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		editor.Load(header, items)
	}

	d := s.store.Add(kind, recordID, editor)
	d.mu.Lock()
	defer d.mu.Unlock()
	return buildView(d), nil
}

// View returns the current state of the draft.
func (s *Service) View(draftID string) (View, error) {
	return s.Apply(draftID, func(*lineitems.Editor) error { return nil })
}

// Apply runs one mutation against the draft's editor and returns the new state.
// When fn fails the state is still returned alongside the error.
func (s *Service) Apply(draftID string, fn func(*lineitems.Editor) error) (View, error) {
	d, ok := s.store.Get(draftID)
	if !ok {
		return View{}, ErrDraftNotFound
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return buildView(d), ErrSubmitInProgress
	}
	err := fn(d.editor)
	return buildView(d), err
}

// Submit validates the draft and sends it to the remote API. Invalid drafts
// never reach the network. On failure the draft stays open for a retry.
func (s *Service) Submit(ctx context.Context, draftID string) (SubmitResult, error) {
	d, ok := s.store.Get(draftID)
	if !ok {
		return SubmitResult{}, ErrDraftNotFound
	}

	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return SubmitResult{}, ErrSubmitInProgress
	}
	desc := d.editor.Descriptor()
	payload, err := d.editor.Prepare()
	if err != nil {
		errs := d.editor.Errors()
		d.mu.Unlock()
		if errors.Is(err, lineitems.ErrValidation) {
			s.observe(d.Kind, OutcomeInvalid)
			return SubmitResult{}, &ValidationError{Errors: errs}
		}
		return SubmitResult{}, err
	}
	d.submitting = true
	d.mu.Unlock()

	var res wmsapi.Result
	if d.Editing() {
		res, err = s.api.UpdateOrder(ctx, desc, d.RecordID, payload)
	} else {
		res, err = s.api.CreateOrder(ctx, desc, payload)
	}

	d.mu.Lock()
	d.submitting = false
	d.mu.Unlock()

	if err != nil {
		s.logger.Error("submit draft",
			slog.String("draft_id", d.ID),
			slog.String("kind", string(d.Kind)),
			slog.Int64("record_id", d.RecordID),
			slog.Any("error", err))
		s.observe(d.Kind, OutcomeFailure)
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	s.store.Delete(d.ID)
	s.observe(d.Kind, OutcomeSuccess)
	s.logger.Info("draft submitted", slog.String("kind", string(d.Kind)), slog.Int64("record_id", d.RecordID))
	return SubmitResult{Kind: d.Kind, RecordID: d.RecordID, StatusCode: res.StatusCode, Message: res.Message}, nil
}

// Cancel discards the draft.
func (s *Service) Cancel(draftID string) error {
	if !s.store.Delete(draftID) {
		return ErrDraftNotFound
	}
	return nil
}

func (s *Service) observe(kind lineitems.Kind, outcome string) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveSubmission(string(kind), outcome)
}
