package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-orders/internal/auth"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/order"
	"ms-orders/internal/pricing"
	"ms-orders/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Logger:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-with-ticket-type", h.CreateOrder)
	r.Get("/my", h.GetMyOrders)
	r.Get("/{orderId}", h.GetOrder)
	r.Delete("/{orderId}", h.CancelOrder)
}

// currentCustomer resolves the authenticated account to its customer row.
// Writes the error response itself and returns nil when that fails.
func (h *Handler) currentCustomer(w http.ResponseWriter, r *http.Request) *models.Customer {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", ""))
		return nil
	}
	customer, err := h.OrderService.GetCustomerByAccountID(accountID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("customer lookup for account %d: %v", accountID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return nil
	}
	if customer == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Customer not found", ""))
		return nil
	}
	return customer
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	customer := h.currentCustomer(w, r)
	if customer == nil {
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateOrder: customer=%d event=%d", customer.CustomerID, req.EventID))

	registered, err := h.OrderService.HasCustomerRegisteredForEvent(customer.CustomerID, req.EventID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	if registered {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("You have already registered for this event", ""))
		return
	}

	// An open registration for the same event is replaced by this one.
	if pending, err := h.OrderService.GetPendingOrderForEvent(customer.CustomerID, req.EventID); err == nil && pending != nil {
		h.Logger.Info("API", fmt.Sprintf("CreateOrder: replacing pending order %d", pending.OrderID))
		if err := h.OrderService.CancelOrder(pending.OrderID); err != nil {
			h.Logger.Error("API", fmt.Sprintf("CreateOrder: cancelling pending order %d: %v", pending.OrderID, err))
		}
	}

	created, err := h.OrderService.CreateOrderWithTicketType(req, customer)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Order created", models.OrderResponse{
		OrderID:     created.OrderID,
		EventID:     created.EventID,
		Status:      created.Status,
		TotalAmount: created.TotalAmount,
	}))
}

func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrEventNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
	case errors.Is(err, order.ErrTicketTypeNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket type not found", err.Error()))
	case errors.Is(err, order.ErrNoTicketType):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Ticket type is required", err.Error()))
	case errors.Is(err, order.ErrTicketUnavailable):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Tickets are not available", err.Error()))
	case errors.Is(err, pricing.ErrNilPrice), errors.Is(err, pricing.ErrNegativePrice), errors.Is(err, pricing.ErrInvalidPercent):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid ticket pricing", err.Error()))
	default:
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customer := h.currentCustomer(w, r)
	if customer == nil {
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid order id", err.Error()))
		return
	}

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", ""))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	if found.CustomerID != customer.CustomerID {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Order does not belong to current user", ""))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order found", found))
}

func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	customer := h.currentCustomer(w, r)
	if customer == nil {
		return
	}

	orders, err := h.OrderService.GetOrdersForCustomer(customer.CustomerID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Orders found", orders))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	customer := h.currentCustomer(w, r)
	if customer == nil {
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid order id", err.Error()))
		return
	}

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", ""))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	if found.CustomerID != customer.CustomerID {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Order does not belong to current user", ""))
		return
	}

	if err := h.OrderService.CancelOrder(orderID); err != nil {
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Could not cancel order", err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
