package payment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"ms-orders/internal/config"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/payment/payos"
	"ms-orders/internal/payment/storage"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrCreatePaymentLink wraps every failure of the link-creation flow so
// callers see one stable error.
var ErrCreatePaymentLink = errors.New("error creating payment link")

// PayOS caps the description length.
const maxDescriptionLen = 25

type Gateway interface {
	CreatePaymentLink(req payos.CreateLinkRequest) (*payos.CreateLinkResponse, error)
}

type OrderStore interface {
	GetOrderByID(id int64) (*models.Order, error)
	UpdateOrder(order *models.Order) error
}

type KafkaPublisher interface {
	PublishPaymentPaid(payment models.Payment) error
}

type PaymentService struct {
	Store   storage.Store
	Orders  OrderStore
	Gateway Gateway
	Kafka   KafkaPublisher
	Logger  *logger.Logger
	Config  config.PaymentConfig
	Now     func() time.Time

	descPattern *regexp.Regexp
}

func NewPaymentService(store storage.Store, orders OrderStore, gateway Gateway, kafka KafkaPublisher, cfg config.PaymentConfig, log *logger.Logger) *PaymentService {
	pattern, err := regexp.Compile(cfg.DescriptionPattern)
	if err != nil {
		pattern = regexp.MustCompile(`Order[ #]*(\d+)`)
		if log != nil {
			log.Warn("PAYMENT", fmt.Sprintf("invalid description pattern %q, using default", cfg.DescriptionPattern))
		}
	}
	return &PaymentService{
		Store:       store,
		Orders:      orders,
		Gateway:     gateway,
		Kafka:       kafka,
		Logger:      log,
		Config:      cfg,
		Now:         time.Now,
		descPattern: pattern,
	}
}

// CreatePaymentLinkForOrder asks the gateway for a hosted checkout link and
// records a PENDING payment. An order with an open PENDING payment gets that
// payment back unchanged; a PAID one gets a fresh link (re-registration after
// a superseded payment).
func (s *PaymentService) CreatePaymentLinkForOrder(order *models.Order) (*models.Payment, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order is required", ErrCreatePaymentLink)
	}
	if !order.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrCreatePaymentLink)
	}
	if order.Event == nil || order.Event.Title == "" {
		return nil, fmt.Errorf("%w: order has no event", ErrCreatePaymentLink)
	}

	existing, err := s.Store.GetPaymentByOrderID(order.OrderID)
	if err != nil && !errors.Is(err, storage.ErrPaymentNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrCreatePaymentLink, err)
	}
	if existing != nil && existing.Status == models.PaymentPending {
		if s.Logger != nil {
			s.Logger.LogPayment("REUSE", order.OrderID, fmt.Sprintf("returning open payment %d", existing.PaymentID))
		}
		return existing, nil
	}

	description := fmt.Sprintf("Order #%d", order.OrderID)
	if len(description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrCreatePaymentLink, maxDescriptionLen)
	}

	now := s.Now()
	orderCode := now.Unix()
	amount := order.TotalAmount.Round(0).IntPart()
	expiredAt := now.Add(s.Config.LinkExpiry)

	link, err := s.Gateway.CreatePaymentLink(payos.CreateLinkRequest{
		OrderCode:   orderCode,
		Amount:      amount,
		Description: description,
		Items: []payos.Item{{
			Name:     "Event Registration - " + order.Event.Title,
			Quantity: 1,
			Price:    amount,
		}},
		ReturnURL: s.Config.ReturnURL,
		CancelURL: s.Config.CancelURL,
		ExpiredAt: expiredAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreatePaymentLink, err)
	}

	qr := link.QRCode
	if qr == "" {
		if png, qerr := qrcode.Encode(link.CheckoutURL, qrcode.Medium, 256); qerr == nil {
			qr = base64.StdEncoding.EncodeToString(png)
		}
	}

	paymentLinkID := link.PaymentLinkID
	if paymentLinkID == "" {
		paymentLinkID = uuid.NewString()
	}

	payment := &models.Payment{
		OrderID:       order.OrderID,
		Status:        models.PaymentPending,
		Amount:        order.TotalAmount,
		Description:   description,
		OrderCode:     orderCode,
		PaymentLinkID: paymentLinkID,
		CheckoutURL:   link.CheckoutURL,
		QRCode:        qr,
		CreatedDate:   now,
		ExpiredAt:     expiredAt,
	}
	if err := s.Store.SavePayment(payment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreatePaymentLink, err)
	}

	if s.Logger != nil {
		s.Logger.LogPayment("LINK", order.OrderID, fmt.Sprintf("payment %d link %s", payment.PaymentID, paymentLinkID))
	}
	return payment, nil
}

func (s *PaymentService) GetPaymentByOrder(order *models.Order) (*models.Payment, error) {
	if order == nil {
		return nil, storage.ErrPaymentNotFound
	}
	return s.Store.GetPaymentByOrderID(order.OrderID)
}

func (s *PaymentService) GetPaymentByOrderID(orderID int64) (*models.Payment, error) {
	if orderID == 0 {
		return nil, storage.ErrPaymentNotFound
	}
	return s.Store.GetPaymentByOrderID(orderID)
}
