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
	"ms-orders/internal/payment"
	"ms-orders/internal/payment/storage"
	"ms-orders/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	PaymentService *payment.PaymentService
	OrderService   *order.OrderService
	Logger         *logger.Logger
}

func NewHandler(paymentService *payment.PaymentService, orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{
		PaymentService: paymentService,
		OrderService:   orderService,
		Logger:         log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-for-order/{orderId}", h.CreatePaymentLink)
	r.Get("/order/{orderId}", h.GetPaymentByOrder)
}

// ownedOrder loads the order and checks it belongs to the authenticated
// customer. Writes the error response itself and returns nil on failure.
func (h *Handler) ownedOrder(w http.ResponseWriter, r *http.Request) *models.Order {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("User not logged in", ""))
		return nil
	}
	customer, err := h.OrderService.GetCustomerByAccountID(accountID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return nil
	}
	if customer == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Customer not found", ""))
		return nil
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid order id", err.Error()))
		return nil
	}

	found, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", ""))
			return nil
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return nil
	}
	if found.CustomerID != customer.CustomerID {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Order does not belong to current user", ""))
		return nil
	}
	return found
}

func (h *Handler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	ord := h.ownedOrder(w, r)
	if ord == nil {
		return
	}

	created, err := h.PaymentService.CreatePaymentLinkForOrder(ord)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePaymentLink for order %d: %v", ord.OrderID, err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not create payment link", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Payment link created", created))
}

func (h *Handler) GetPaymentByOrder(w http.ResponseWriter, r *http.Request) {
	ord := h.ownedOrder(w, r)
	if ord == nil {
		return
	}

	found, err := h.PaymentService.GetPaymentByOrder(ord)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Payment not found", ""))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment found", found))
}

// Webhook receives PayOS notifications. The gateway retries on any non-200,
// so the response is always 200 with the outcome inside the envelope.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Webhook: unreadable body: %v", err))
		body = nil
	}

	resp := h.PaymentService.HandleNotification(body)
	utils.WriteJSON(w, http.StatusOK, resp)
}
