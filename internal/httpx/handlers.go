package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/mitienda/fulfillment/internal/catalog"
	"github.com/mitienda/fulfillment/internal/fulfillment"
	kafkax "github.com/mitienda/fulfillment/internal/kafka"
	"github.com/mitienda/fulfillment/internal/ledger"
	"github.com/mitienda/fulfillment/internal/redisx"
)

type Handler struct {
	Orders       *fulfillment.Repo
	Engine       *fulfillment.Engine
	Catalog      *catalog.Repo
	Ledger       *ledger.Repo
	Redis        *redis.Client
	ProducerPaid *kafkax.Producer
	Service      string
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/status", h.setStatus)
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}/movements", h.listMovements)
	r.Get("/products/{id}/reconciliation", h.reconcile)
	r.Get("/variants/{id}/stock", h.variantStock)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusCode(err), map[string]string{"error": err.Error()})
}

// statusCode maps engine errors onto HTTP codes. Serialization
// conflicts are 503 so callers know a plain retry is safe.
func statusCode(err error) int {
	switch {
	case errors.Is(err, fulfillment.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, fulfillment.ErrInvalidTransition),
		errors.Is(err, catalog.ErrStockViolation):
		return http.StatusConflict
	case errors.Is(err, fulfillment.ErrSerializationConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type createOrderReq struct {
	UserID string                  `json:"user_id"`
	Items  []fulfillment.ItemInput `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing items"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.CreateOrder(ctx, req.UserID, req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Cache only answers the status question; full reads go to the DB.
	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	items, err := h.Orders.ListItems(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": o, "items": items})
}

type setStatusReq struct {
	Status fulfillment.Status `json:"status"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Engine.SetStatus(ctx, orderID, req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)

	// Re-announcing pagado on an idempotent repeat is harmless;
	// consumers dedup on event id / order id.
	if o.Status == fulfillment.StatusPagado && h.ProducerPaid != nil {
		h.publishPaid(o, r.Header.Get("X-Request-Id"))
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) cacheStatus(ctx context.Context, o fulfillment.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *Handler) publishPaid(o fulfillment.Order, trace string) {
	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(fulfillment.OrderPaidPayload{
			OrderID: o.ID, Status: o.Status,
		}),
	}
	h.ProducerPaid.Publish(fulfillment.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventOrderPaid)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type createVariantReq struct {
	SKU   string           `json:"sku"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock"`
}

type createProductReq struct {
	SKU      string             `json:"sku"`
	Name     string             `json:"name"`
	Price    decimal.Decimal    `json:"price"`
	Status   string             `json:"status"`
	Variants []createVariantReq `json:"variants"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.SKU == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.CreateProduct(ctx, catalog.Product{
		SKU:    req.SKU,
		Name:   req.Name,
		Price:  req.Price,
		Status: catalog.ProductStatus(req.Status),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	variants := make([]catalog.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		created, err := h.Catalog.CreateVariant(ctx, catalog.Variant{
			ProductID: p.ID,
			SKU:       v.SKU,
			Name:      v.Name,
			Price:     v.Price,
			Stock:     v.Stock,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		variants = append(variants, created)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": p, "variants": variants})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ms, err := h.Ledger.Reconstruct(ctx, productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	net, err := h.Ledger.NetDelta(ctx, productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	current, err := h.Catalog.TotalStock(ctx, productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Reconciliation{
		ProductID:       productID,
		NetDelta:        net,
		CurrentStock:    current,
		ImpliedBaseline: current - net,
	})
}

func (h *Handler) variantStock(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	stock, err := h.Catalog.GetVariantStock(ctx, variantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"variant_id": variantID, "stock": stock})
}
