package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/utils"
	"ms-orders/internal/voucher"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	VoucherService *voucher.VoucherService
	Logger         *logger.Logger
}

func NewHandler(voucherService *voucher.VoucherService, log *logger.Logger) *Handler {
	return &Handler{
		VoucherService: voucherService,
		Logger:         log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/validate/{code}", h.ValidateVoucher)
	r.Get("/available", h.GetAvailableVouchers)
	r.Post("/", h.CreateVoucher)
	r.Put("/{voucherId}/quantity", h.UpdateQuantity)
	r.Delete("/{voucherId}", h.DisableVoucher)
	r.Get("/{voucherId}/usages", h.GetUsageHistory)
}

// ValidateVoucher answers whether a code can currently be redeemed. The
// check is advisory: the real redemption is re-validated during order
// creation.
func (h *Handler) ValidateVoucher(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Voucher code is required", ""))
		return
	}

	if !h.VoucherService.IsVoucherAvailable(code) {
		utils.WriteJSON(w, http.StatusOK, utils.ErrorResponse("Voucher invalid or expired", ""))
		return
	}

	found, err := h.VoucherService.GetVoucherByCode(code)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Voucher is valid", found))
}

func (h *Handler) GetAvailableVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.VoucherService.GetAvailableVouchers()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Vouchers found", vouchers))
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req models.Voucher
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Voucher code is required", ""))
		return
	}
	if req.Quantity < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Quantity cannot be negative", ""))
		return
	}

	if err := h.VoucherService.CreateVoucher(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateVoucher %s: %v", req.Code, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not create voucher", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Voucher created", req))
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	voucherID, err := strconv.ParseInt(chi.URLParam(r, "voucherId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid voucher id", err.Error()))
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.VoucherService.UpdateVoucherQuantity(voucherID, req.Quantity); err != nil {
		if errors.Is(err, voucher.ErrVoucherNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Voucher not found", ""))
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not update voucher", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Voucher quantity updated", nil))
}

func (h *Handler) DisableVoucher(w http.ResponseWriter, r *http.Request) {
	voucherID, err := strconv.ParseInt(chi.URLParam(r, "voucherId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid voucher id", err.Error()))
		return
	}

	if !h.VoucherService.DisableVoucher(voucherID) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Voucher not found", ""))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Voucher disabled", nil))
}

func (h *Handler) GetUsageHistory(w http.ResponseWriter, r *http.Request) {
	voucherID, err := strconv.ParseInt(chi.URLParam(r, "voucherId"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid voucher id", err.Error()))
		return
	}

	usages, err := h.VoucherService.GetVoucherUsageHistory(voucherID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Usage history found", usages))
}
