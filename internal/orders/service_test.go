package orders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
	"github.com/odyssey-erp/odyssey-wms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-wms/internal/wmsapi"
)

type stubAPI struct {
	mu       sync.Mutex
	record   json.RawMessage
	getErr   error
	writeErr error
	created  []lineitems.Payload
	updated  map[int64]lineitems.Payload
}

func (s *stubAPI) GetOrder(ctx context.Context, d lineitems.Descriptor, id int64) (json.RawMessage, error) {
	return s.record, s.getErr
}

func (s *stubAPI) CreateOrder(ctx context.Context, d lineitems.Descriptor, payload lineitems.Payload) (wmsapi.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return wmsapi.Result{}, s.writeErr
	}
	s.created = append(s.created, payload)
	return wmsapi.Result{StatusCode: 201, Message: "created"}, nil
}

func (s *stubAPI) UpdateOrder(ctx context.Context, d lineitems.Descriptor, id int64, payload lineitems.Payload) (wmsapi.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return wmsapi.Result{}, s.writeErr
	}
	if s.updated == nil {
		s.updated = make(map[int64]lineitems.Payload)
	}
	s.updated[id] = payload
	return wmsapi.Result{StatusCode: 200, Message: "updated"}, nil
}

type stubCatalog struct {
	products []lineitems.Entity
	err      error
}

func (s stubCatalog) Products(ctx context.Context) ([]lineitems.Entity, error) {
	return s.products, s.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveSubmission(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, kind+":"+outcome)
}

var testProducts = []lineitems.Entity{
	{ID: 7, Name: "Widget A", BrandName: "Acme", CategoryName: "Parts"},
	{ID: 8, Name: "Gadget", BrandName: "Acme", CategoryName: "Tools"},
}

func newTestService(api *stubAPI, catalog Catalog) (*Service, *recordingObserver) {
	observer := &recordingObserver{}
	svc := NewService(api, catalog, NewStore(), observer, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }
	return svc, observer
}

func fillPurchaseOrder(t *testing.T, svc *Service, draftID string) string {
	t.Helper()
	var localID string
	_, err := svc.Apply(draftID, func(ed *lineitems.Editor) error {
		if err := ed.SetHeader(lineitems.HeaderDocumentNumber, "PO-1"); err != nil {
			return err
		}
		if err := ed.SetHeader(lineitems.HeaderCounterpart, "3"); err != nil {
			return err
		}
		it := ed.AddItem()
		localID = it.LocalID
		if _, err := ed.PickItem(localID, 7); err != nil {
			return err
		}
		if err := ed.UpdateItem(localID, lineitems.FieldQuantity, "2"); err != nil {
			return err
		}
		return ed.UpdateItem(localID, lineitems.FieldUnitPrice, "10.5")
	})
	require.NoError(t, err)
	return localID
}

func TestOpenCreatesEmptyDraft(t *testing.T) {
	svc, _ := newTestService(&stubAPI{}, stubCatalog{products: testProducts})

	view, err := svc.Open(context.Background(), lineitems.KindPurchaseOrder, 0)
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	require.Equal(t, modeCreate, view.Mode)
	require.Equal(t, "draft", view.Header.Status)
	require.Equal(t, "2024-05-17", view.Header.Date)
	require.Empty(t, view.Items)
	require.True(t, view.Priced)
	require.Equal(t, 1, svc.Store().Len())
}

func TestOpenLoadsExistingRecord(t *testing.T) {
	api := &stubAPI{record: json.RawMessage(`{"doNumber":"DO-9","status":"shipped","deliveryDate":"2024-04-01T00:00:00","purchaseOrderId":12,
		"items":[{"productId":8,"productName":"Gadget","quantityDelivered":4,"note":"fragile"}]}`)}
	svc, _ := newTestService(api, stubCatalog{products: testProducts})

	view, err := svc.Open(context.Background(), lineitems.KindDeliveryOrder, 55)
	require.NoError(t, err)
	require.Equal(t, modeEdit, view.Mode)
	require.EqualValues(t, 55, view.RecordID)
	require.Equal(t, "DO-9", view.Header.DocumentNumber)
	require.Equal(t, "2024-04-01", view.Header.Date)
	require.Equal(t, "12", view.Header.Counterpart)
	require.Len(t, view.Items, 1)
	require.Equal(t, "Gadget", view.Items[0].Picker.Query)
	require.EqualValues(t, 4, view.Items[0].Quantity)
	require.False(t, view.Priced)
}

func TestOpenFailsWhenAnyFetchFails(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(&stubAPI{}, stubCatalog{err: errors.New("catalog down")})
	_, err := svc.Open(ctx, lineitems.KindInvoice, 0)
	require.ErrorIs(t, err, ErrLoadFailed)

	svc, _ = newTestService(&stubAPI{getErr: &wmsapi.Error{Status: 404}}, stubCatalog{products: testProducts})
	_, err = svc.Open(ctx, lineitems.KindInvoice, 3)
	require.ErrorIs(t, err, ErrLoadFailed)
	require.Zero(t, svc.Store().Len())

	_, err = svc.Open(ctx, lineitems.Kind("quote"), 0)
	require.ErrorIs(t, err, lineitems.ErrUnknownKind)
}

func TestSubmitInvalidDraftMakesNoCall(t *testing.T) {
	api := &stubAPI{}
	svc, observer := newTestService(api, stubCatalog{products: testProducts})
	view, err := svc.Open(context.Background(), lineitems.KindPurchaseOrder, 0)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), view.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.ErrorIs(t, err, lineitems.ErrValidation)
	require.Contains(t, verr.Errors, lineitems.ItemsKey)
	require.Empty(t, api.created)
	require.Equal(t, []string{"purchase_order:invalid"}, observer.outcomes)

	after, err := svc.View(view.ID)
	require.NoError(t, err)
	require.Equal(t, lineitems.Notice, after.Notice)
}

func TestSubmitCreatesAndDiscardsDraft(t *testing.T) {
	api := &stubAPI{}
	svc, observer := newTestService(api, stubCatalog{products: testProducts})
	view, err := svc.Open(context.Background(), lineitems.KindPurchaseOrder, 0)
	require.NoError(t, err)
	fillPurchaseOrder(t, svc, view.ID)

	res, err := svc.Submit(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, "created", res.Message)
	require.Len(t, api.created, 1)
	require.Equal(t, "PO-1", api.created[0]["PONumber"])
	require.EqualValues(t, 3, api.created[0]["ResellerID"])

	_, err = svc.View(view.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)
	require.Equal(t, []string{"purchase_order:success"}, observer.outcomes)
}

func TestSubmitEditUsesUpdate(t *testing.T) {
	api := &stubAPI{record: json.RawMessage(`{"PONumber":"PO-2","Status":"approved","OrderDate":"2024-01-02","ResellerID":4,
		"Items":[{"ProductID":7,"ProductName":"Widget A","Quantity":1,"UnitPrice":5,"Discount":0,"Note":""}]}`)}
	svc, _ := newTestService(api, stubCatalog{products: testProducts})
	view, err := svc.Open(context.Background(), lineitems.KindPurchaseOrder, 21)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), view.ID)
	require.NoError(t, err)
	require.Contains(t, api.updated, int64(21))
	require.Equal(t, "approved", api.updated[21]["Status"])
	require.Empty(t, api.created)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	api := &stubAPI{writeErr: &wmsapi.Error{Status: 500, Message: "boom"}}
	svc, observer := newTestService(api, stubCatalog{products: testProducts})
	view, err := svc.Open(context.Background(), lineitems.KindPurchaseOrder, 0)
	require.NoError(t, err)
	localID := fillPurchaseOrder(t, svc, view.ID)

	_, err = svc.Submit(context.Background(), view.ID)
	require.ErrorIs(t, err, ErrSubmitFailed)

	kept, err := svc.View(view.ID)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1)
	require.Equal(t, localID, kept.Items[0].LocalID)
	require.InDelta(t, 21.0, kept.Total, 1e-9)

	api.writeErr = nil
	_, err = svc.Submit(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"purchase_order:failure", "purchase_order:success"}, observer.outcomes)
}

func TestApplyUnknownDraft(t *testing.T) {
	svc, _ := newTestService(&stubAPI{}, stubCatalog{})
	_, err := svc.Apply("missing", func(*lineitems.Editor) error { return nil })
	require.ErrorIs(t, err, ErrDraftNotFound)
	require.ErrorIs(t, svc.Cancel("missing"), ErrDraftNotFound)
}

func TestStoreSweepDropsIdleDrafts(t *testing.T) {
	store := NewStore()
	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	stale := store.Add(lineitems.KindInvoice, 0, nil)
	now = now.Add(20 * time.Minute)
	fresh := store.Add(lineitems.KindInvoice, 0, nil)
	now = now.Add(20 * time.Minute)

	require.Equal(t, 1, store.Sweep(30*time.Minute))
	_, ok := store.Get(stale.ID)
	require.False(t, ok)
	_, ok = store.Get(fresh.ID)
	require.True(t, ok)
	require.Zero(t, store.Sweep(0))
}

func TestErrorsMapOntoHTTPSentinels(t *testing.T) {
	require.ErrorIs(t, ErrDraftNotFound, httpx.ErrNotFound)
	require.ErrorIs(t, ErrLoadFailed, httpx.ErrUpstream)
	require.ErrorIs(t, ErrSubmitFailed, httpx.ErrUpstream)

	var err error = &ValidationError{Errors: lineitems.Errors{"items": "At least one item is required"}}
	require.ErrorIs(t, err, lineitems.ErrValidation)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
