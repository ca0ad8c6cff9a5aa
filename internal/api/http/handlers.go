package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"resto-pos/internal/domain"
	"resto-pos/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Menu          service.MenuServiceInterface
	Orders        service.OrderServiceInterface
	Cancellations service.CancellationServiceInterface
}

func NewHandler(menuSvc service.MenuServiceInterface, orderSvc service.OrderServiceInterface, cancelSvc service.CancellationServiceInterface) *Handler {
	return &Handler{
		Menu:          menuSvc,
		Orders:        orderSvc,
		Cancellations: cancelSvc,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.listMenu).Methods("GET")
	r.HandleFunc("/api/menu/{id}", h.getMenuItem).Methods("GET")

	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")
	r.HandleFunc("/api/orders/{id}/payment", h.updatePaymentStatus).Methods("PUT")

	r.HandleFunc("/api/orders/{id}/cancellation", h.requestCancellation).Methods("POST")
	r.HandleFunc("/api/orders/{id}/cancellation", h.decideCancellation).Methods("PUT")
	r.HandleFunc("/api/cancellations", h.listCancellationRequests).Methods("GET")
	r.HandleFunc("/api/orders/{id}/history", h.getStatusHistory).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "resto-pos",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCancellationDecided), errors.Is(err, service.ErrNotRequested):
		status = http.StatusConflict
	case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrEmptyReason),
		errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, service.ErrItemUnavailable), errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidPaymentStatus), errors.Is(err, service.ErrInsufficientPoints):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	item, err := h.Menu.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Orders.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	qrCode, err := h.Orders.GetQRCode(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(qrCode) == 0 {
		http.Error(w, "QR code not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qrCode)
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var payload struct {
		Status domain.PaymentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Orders.UpdatePaymentStatus(r.Context(), id, payload.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) requestCancellation(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var payload struct {
		ActorID int    `json:"actor_id"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Cancellations.Request(r.Context(), id, payload.ActorID, payload.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":       order,
		"refund_info": order.Cancellation.Refund,
	})
}

func (h *Handler) decideCancellation(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var payload struct {
		ActorID  int    `json:"actor_id"`
		Approved bool   `json:"approved"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Cancellations.Decide(r.Context(), id, payload.ActorID, payload.Approved, payload.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response := map[string]interface{}{"order": order}
	if order.Cancellation.Status == domain.CancellationApproved {
		response["refund_info"] = order.Cancellation.Refund
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) listCancellationRequests(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Cancellations.ListRequests(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	entries, err := h.Cancellations.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
