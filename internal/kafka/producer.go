package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ms-orders/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) publish(key int64, value interface{}) error {
	msgBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(strconv.FormatInt(key, 10)),
			Value: msgBytes,
		},
	)
}

// PublishOrderCreated streams the order creation event to Kafka
func (p *Producer) PublishOrderCreated(order models.Order) error {
	return p.publish(order.OrderID, models.OrderEvent{
		Type:      "order_created",
		OrderID:   order.OrderID,
		Order:     &order,
		Timestamp: time.Now(),
	})
}

// PublishOrderCancelled streams the order cancellation event to Kafka
func (p *Producer) PublishOrderCancelled(order models.Order) error {
	return p.publish(order.OrderID, models.OrderEvent{
		Type:      "order_cancelled",
		OrderID:   order.OrderID,
		Order:     &order,
		Timestamp: time.Now(),
	})
}

// PublishPaymentPaid streams the settled payment event to Kafka
func (p *Producer) PublishPaymentPaid(payment models.Payment) error {
	return p.publish(payment.OrderID, models.PaymentEvent{
		Type:      "payment_paid",
		PaymentID: payment.PaymentID,
		OrderID:   payment.OrderID,
		Payment:   &payment,
		Timestamp: time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
