package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
	"github.com/odyssey-erp/odyssey-wms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-wms/internal/wmsapi"
)

var errProductsUnavailable = fmt.Errorf("%w: failed to load products", httpx.ErrUpstream)

// CatalogSearcher serves the catalog endpoints.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, all bool) ([]lineitems.Entity, error)
	Refresh(ctx context.Context) (int, error)
}

// RefreshEnqueuer schedules a catalog refresh in the background.
type RefreshEnqueuer interface {
	EnqueueCatalogWarmup(ctx context.Context) error
}

// Handler exposes draft sessions over JSON.
type Handler struct {
	service  *Service
	catalog  CatalogSearcher
	enqueuer RefreshEnqueuer
	logger   *slog.Logger
}

// NewHandler builds the HTTP handler. enqueuer may be nil, in which case
// refreshes run inline.
func NewHandler(service *Service, catalog CatalogSearcher, enqueuer RefreshEnqueuer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, catalog: catalog, enqueuer: enqueuer, logger: logger}
}

// MountRoutes registers draft and catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(forwardToken)
		r.Post("/orders/{kind}/drafts", h.openDraft)
		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Delete("/", h.cancelDraft)
			r.Patch("/header", h.setHeader)
			r.Post("/submit", h.submit)
			r.Post("/items", h.addItem)
			r.Route("/items/{localID}", func(r chi.Router) {
				r.Patch("/", h.updateItem)
				r.Delete("/", h.removeItem)
				r.Post("/focus", h.focusItem)
				r.Post("/search", h.searchItem)
				r.Post("/pick", h.pickItem)
				r.Post("/blur", h.blurItem)
			})
		})
		r.Get("/catalog/products", h.searchCatalog)
		r.Post("/catalog/refresh", h.refreshCatalog)
	})
}

// forwardToken passes the caller's bearer token on to the remote API.
func forwardToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && strings.TrimSpace(token) != "" {
			r = r.WithContext(wmsapi.WithToken(r.Context(), strings.TrimSpace(token)))
		}
		next.ServeHTTP(w, r)
	})
}

// formValue accepts either a JSON string or a bare number.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	switch {
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
	case string(b) == "null":
		*v = ""
	default:
		*v = formValue(b)
	}
	return nil
}

type fieldRequest struct {
	Field string    `json:"field"`
	Value formValue `json:"value"`
}

type openRequest struct {
	ID int64 `json:"id"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type pickRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *Handler) openDraft(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(chi.URLParam(r, "kind"))
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown order type")
		return
	}
	var req openRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.ID < 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id must not be negative")
		return
	}
	view, err := h.service.Open(r.Context(), kind, req.ID)
	if err != nil {
		if errors.Is(err, ErrLoadFailed) {
			desc, _ := lineitems.Lookup(kind)
			httpx.WriteProblem(w, httpx.ProblemDetail{
				Title:    "Load Failed",
				Status:   http.StatusBadGateway,
				Detail:   "Failed to load " + strings.ToLower(desc.Title) + " data.",
				Redirect: "/" + desc.Resource,
			})
			return
		}
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(chi.URLParam(r, "draftID"))
	h.writeView(w, view, err)
}

func (h *Handler) cancelDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(chi.URLParam(r, "draftID")); err != nil {
		h.respond(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setHeader(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		return ed.SetHeader(lineitems.HeaderField(req.Field), string(req.Value))
	})
	h.writeView(w, view, err)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		ed.AddItem()
		return nil
	})
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		return ed.UpdateItem(localID, lineitems.Field(req.Field), string(req.Value))
	})
	h.writeView(w, view, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		if !ed.RemoveItem(localID) {
			return lineitems.ErrItemNotFound
		}
		return nil
	})
	h.writeView(w, view, err)
}

func (h *Handler) focusItem(w http.ResponseWriter, r *http.Request) {
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		_, err := ed.FocusItem(localID)
		return err
	})
	h.writeView(w, view, err)
}

func (h *Handler) searchItem(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		_, err := ed.SearchItem(localID, req.Query)
		return err
	})
	h.writeView(w, view, err)
}

func (h *Handler) pickItem(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		_, err := ed.PickItem(localID, req.ProductID)
		return err
	})
	h.writeView(w, view, err)
}

func (h *Handler) blurItem(w http.ResponseWriter, r *http.Request) {
	localID := chi.URLParam(r, "localID")
	view, err := h.service.Apply(chi.URLParam(r, "draftID"), func(ed *lineitems.Editor) error {
		return ed.BlurItem(localID)
	})
	h.writeView(w, view, err)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Submit(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) searchCatalog(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	q := r.URL.Query()
	all, _ := strconv.ParseBool(q.Get("all"))
	products, err := h.catalog.Search(r.Context(), q.Get("q"), all)
	if err != nil {
		h.logger.Error("search catalog", slog.Any("error", err))
		httpx.RespondError(w, errProductsUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueCatalogWarmup(r.Context()); err != nil {
			h.logger.Error("enqueue catalog warmup", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrUnavailable)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
		return
	}
	if h.catalog == nil {
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	n, err := h.catalog.Refresh(r.Context())
	if err != nil {
		h.logger.Error("refresh catalog", slog.Any("error", err))
		httpx.RespondError(w, errProductsUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "refreshed", "products": n})
}

func (h *Handler) writeView(w http.ResponseWriter, view View, err error) {
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteProblem(w, httpx.ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Detail: lineitems.Notice,
			Errors: verr.Errors,
		})
	case errors.Is(err, ErrSubmitFailed):
		httpx.Problem(w, http.StatusBadGateway, "Submit Failed", SubmitFailedNotice)
	case errors.Is(err, ErrSubmitInProgress):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, lineitems.ErrUnknownKind),
		errors.Is(err, lineitems.ErrItemNotFound),
		errors.Is(err, lineitems.ErrProductNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, lineitems.ErrUnknownField),
		errors.Is(err, lineitems.ErrFieldNotApplicable),
		errors.Is(err, lineitems.ErrInvalidNumber):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
	default:
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("orders request", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

// parseKind accepts either the kind name or the list resource.
func parseKind(raw string) (lineitems.Kind, bool) {
	for _, k := range lineitems.Kinds() {
		desc, _ := lineitems.Lookup(k)
		if raw == string(k) || raw == desc.Resource {
			return k, true
		}
	}
	return "", false
}
