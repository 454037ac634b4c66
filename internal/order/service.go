package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/pricing"

	"github.com/shopspring/decimal"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrNoTicketType       = errors.New("order requires a ticket type")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTicketUnavailable  = errors.New("tickets are not available")
	ErrOrderNotFound      = errors.New("order not found")
)

type DBLayer interface {
	CreateOrder(order *models.Order) error
	GetOrderByID(id int64) (*models.Order, error)
	UpdateOrder(order *models.Order) error
	GetOrdersByCustomer(customerID int64) ([]models.Order, error)
	GetPendingOrderForEvent(customerID, eventID int64) (*models.Order, error)
	GetEventByID(id int64) (*models.Event, error)
	GetTicketTypeByID(id int64) (*models.TicketType, error)
	GetCustomerByAccountID(accountID int64) (*models.Customer, error)
}

type Reserver interface {
	EnsureCapacity(ticketTypeID int64, total int) error
	CanPurchaseTickets(ticketTypeID int64, quantity int) (bool, error)
	ReserveTickets(ticketTypeID int64, quantity int) error
	ReleaseTickets(ticketTypeID int64, quantity int) error
}

type VoucherApplier interface {
	ApplyVoucherToOrder(code string, order *models.Order) (*models.VoucherUsage, error)
}

type KafkaPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderCancelled(order models.Order) error
}

type OrderService struct {
	DB       DBLayer
	Tickets  Reserver
	Vouchers VoucherApplier
	Kafka    KafkaPublisher
	Pricing  *pricing.Engine
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewOrderService(db DBLayer, tickets Reserver, vouchers VoucherApplier, kafka KafkaPublisher, engine *pricing.Engine, log *logger.Logger) *OrderService {
	return &OrderService{
		DB:       db,
		Tickets:  tickets,
		Vouchers: vouchers,
		Kafka:    kafka,
		Pricing:  engine,
		Logger:   log,
		Now:      time.Now,
	}
}

// CreateOrderWithTicketType runs the full registration flow for one ticket.
// A failing voucher never fails the order: the code is best-effort and the
// order stands at full price when redemption does not work out.
func (s *OrderService) CreateOrderWithTicketType(req models.CreateOrderRequest, customer *models.Customer) (*models.Order, error) {
	// Step 1: Resolve the event
	event, err := s.DB.GetEventByID(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", req.EventID, err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	// Step 2: A ticket type is mandatory
	if req.TicketTypeID == nil {
		return nil, ErrNoTicketType
	}

	// Step 3: Resolve the ticket type
	ticketType, err := s.DB.GetTicketTypeByID(*req.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket type %d: %w", *req.TicketTypeID, err)
	}
	if ticketType == nil {
		return nil, ErrTicketTypeNotFound
	}

	// Step 4: Check remaining capacity. The counter is seeded from the
	// catalog quantity the first time a ticket type is seen.
	if err := s.Tickets.EnsureCapacity(ticketType.TicketTypeID, ticketType.TotalQuantity); err != nil {
		return nil, fmt.Errorf("capacity tracking failed: %w", err)
	}
	available, err := s.Tickets.CanPurchaseTickets(ticketType.TicketTypeID, 1)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if !available {
		return nil, ErrTicketUnavailable
	}

	// Step 5: Reserve the ticket
	if err := s.Tickets.ReserveTickets(ticketType.TicketTypeID, 1); err != nil {
		return nil, fmt.Errorf("ticket reservation failed: %w", err)
	}

	// Step 6: Price the order (voucher comes later, once the order exists)
	hostPercent := decimal.Zero
	if event.Host != nil {
		hostPercent = event.Host.HostDiscountPercent
	}
	quote, err := s.Pricing.Quote(ticketType.Price, hostPercent, decimal.Zero)
	if err != nil {
		s.release(ticketType.TicketTypeID)
		return nil, err
	}

	order := &models.Order{
		CustomerID:          customer.CustomerID,
		EventID:             event.EventID,
		TicketTypeID:        ticketType.TicketTypeID,
		ParticipantName:     req.ParticipantName,
		ParticipantEmail:    req.ParticipantEmail,
		OriginalPrice:       quote.OriginalPrice,
		HostDiscountPercent: quote.HostDiscountPercent,
		HostDiscountAmount:  quote.HostDiscountAmount,
		TotalAmount:         quote.TotalAmount,
		Status:              models.OrderPending,
		CreatedAt:           s.Now(),
	}
	if err := s.DB.CreateOrder(order); err != nil {
		s.release(ticketType.TicketTypeID)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Step 7: Best-effort voucher redemption
	if code := strings.TrimSpace(req.VoucherCode); code != "" {
		usage, err := s.Vouchers.ApplyVoucherToOrder(code, order)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("ORDER", fmt.Sprintf("voucher %q not applied to order %d: %v", code, order.OrderID, err))
			}
		} else {
			requote, qerr := s.Pricing.Quote(ticketType.Price, hostPercent, usage.DiscountApplied)
			if qerr != nil {
				if s.Logger != nil {
					s.Logger.Error("ORDER", fmt.Sprintf("repricing order %d after voucher: %v", order.OrderID, qerr))
				}
			} else {
				order.VoucherDiscountAmount = requote.VoucherDiscountAmount
				order.TotalAmount = requote.TotalAmount
				order.UpdatedAt = s.Now()
				if err := s.DB.UpdateOrder(order); err != nil {
					if s.Logger != nil {
						s.Logger.Error("ORDER", fmt.Sprintf("saving discounted order %d: %v", order.OrderID, err))
					}
				}
			}
		}
	}

	// Step 8: Publish order-created event
	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCreated(*order); err != nil {
			if s.Logger != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("publish order created %d: %v", order.OrderID, err))
			}
		}
	}

	if s.Logger != nil {
		s.Logger.LogOrder("CREATE", order.OrderID, fmt.Sprintf("total %s", order.TotalAmount.StringFixed(2)))
	}
	return order, nil
}

func (s *OrderService) release(ticketTypeID int64) {
	if err := s.Tickets.ReleaseTickets(ticketTypeID, 1); err != nil && s.Logger != nil {
		s.Logger.Error("ORDER", fmt.Sprintf("releasing reservation for ticket type %d: %v", ticketTypeID, err))
	}
}

func (s *OrderService) GetOrder(id int64) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetOrdersForCustomer(customerID int64) ([]models.Order, error) {
	return s.DB.GetOrdersByCustomer(customerID)
}

// HasCustomerRegisteredForEvent reports whether the customer already holds a
// paid order for the event. Pending orders do not count.
func (s *OrderService) HasCustomerRegisteredForEvent(customerID, eventID int64) (bool, error) {
	orders, err := s.DB.GetOrdersByCustomer(customerID)
	if err != nil {
		return false, err
	}
	for _, o := range orders {
		if o.EventID == eventID && o.Status == models.OrderPaid {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrderService) GetPendingOrderForEvent(customerID, eventID int64) (*models.Order, error) {
	return s.DB.GetPendingOrderForEvent(customerID, eventID)
}

func (s *OrderService) CancelOrder(id int64) error {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return fmt.Errorf("order %d lookup failed: %w", id, err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != models.OrderPending {
		return errors.New("cannot cancel a non-pending order")
	}

	order.Status = models.OrderCancelled
	order.UpdatedAt = s.Now()
	if err := s.DB.UpdateOrder(order); err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", id, err)
	}

	s.release(order.TicketTypeID)

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCancelled(*order); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish order cancelled %d: %v", id, err))
		}
	}
	return nil
}

func (s *OrderService) GetCustomerByAccountID(accountID int64) (*models.Customer, error) {
	return s.DB.GetCustomerByAccountID(accountID)
}
