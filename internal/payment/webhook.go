package payment

import (
	"errors"
	"fmt"
	"strconv"

	"ms-orders/internal/models"
	"ms-orders/internal/payment/storage"

	"github.com/spf13/cast"
)

// HandleNotification reconciles a gateway webhook with local payment state.
// The gateway treats any non-200 answer as delivery failure and retries, so
// this method never fails outward: every outcome, including a processing
// error, is folded into the {error:0, message:"ok", data:...} envelope.
func (s *PaymentService) HandleNotification(body map[string]interface{}) map[string]interface{} {
	if body == nil {
		return webhookEnvelope(nil)
	}
	raw, ok := body["data"].(map[string]interface{})
	if !ok {
		return webhookEnvelope(nil)
	}
	return webhookEnvelope(s.reconcile(raw))
}

func (s *PaymentService) reconcile(raw map[string]interface{}) (result map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			result = webhookFailure(fmt.Sprint(r))
		}
	}()

	// The payload is loosely typed: ints, floats, json numbers and numeric
	// strings all arrive here. Coercion failures are processing errors, not
	// transport errors.
	orderCode, err := cast.ToInt64E(raw["orderCode"])
	if err != nil {
		return webhookFailure(err.Error())
	}
	if rawAmount, ok := raw["amount"]; ok && rawAmount != nil {
		if _, err := cast.ToFloat64E(rawAmount); err != nil {
			return webhookFailure(err.Error())
		}
	}
	description := cast.ToString(raw["description"])

	// The order id embedded in the description wins over orderCode.
	orderID := orderCode
	if m := s.descPattern.FindStringSubmatch(description); m != nil {
		if id, perr := strconv.ParseInt(m[1], 10, 64); perr == nil {
			orderID = id
		}
	}

	payment, err := s.Store.GetPaymentByOrderID(orderID)
	if err != nil && !errors.Is(err, storage.ErrPaymentNotFound) {
		return webhookFailure(err.Error())
	}
	if payment == nil {
		if s.Logger != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("no payment for order %d", orderID))
		}
		return map[string]interface{}{"success": false, "message": "Payment not found"}
	}

	if payment.Status == models.PaymentPaid {
		// Redelivery of a settled payment changes nothing.
		if s.Logger != nil {
			s.Logger.LogPayment("WEBHOOK", payment.OrderID, "already paid, skipping")
		}
		return map[string]interface{}{"success": true}
	}

	// CANCELLED and EXPIRED are provisional: the gateway's word that money
	// moved overrides them.
	payment.Status = models.PaymentPaid
	if err := s.Store.UpdatePayment(payment); err != nil {
		return webhookFailure(err.Error())
	}

	order, err := s.Orders.GetOrderByID(payment.OrderID)
	if err != nil {
		return webhookFailure(err.Error())
	}
	if order != nil && order.Status != models.OrderPaid {
		order.Status = models.OrderPaid
		order.UpdatedAt = s.Now()
		if err := s.Orders.UpdateOrder(order); err != nil {
			return webhookFailure(err.Error())
		}
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishPaymentPaid(*payment); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish payment paid %d: %v", payment.PaymentID, err))
		}
	}

	if s.Logger != nil {
		s.Logger.LogPayment("WEBHOOK", payment.OrderID, "payment settled")
	}
	return map[string]interface{}{"success": true}
}

func webhookEnvelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"error":   0,
		"message": "ok",
		"data":    data,
	}
}

func webhookFailure(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}
