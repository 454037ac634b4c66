package reservation

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Redis tracks remaining ticket capacity per ticket type. The counter is the
// source of truth for availability between the catalog quantity and the sold
// tickets: reservations decrement it, cancellations increment it back.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

func capacityKey(ticketTypeID int64) string {
	return "ticket_capacity:" + strconv.FormatInt(ticketTypeID, 10)
}

// EnsureCapacity seeds the counter for a ticket type if it is not tracked
// yet. Existing counters are left alone.
func (r *Redis) EnsureCapacity(ticketTypeID int64, total int) error {
	_, err := r.Client.SetNX(context.Background(), capacityKey(ticketTypeID), total, 0).Result()
	return err
}

// CanPurchaseTickets reports whether enough capacity remains. An untracked
// ticket type has no capacity.
func (r *Redis) CanPurchaseTickets(ticketTypeID int64, quantity int) (bool, error) {
	val, err := r.Client.Get(context.Background(), capacityKey(ticketTypeID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	remaining, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("corrupt capacity counter for ticket type %d: %w", ticketTypeID, err)
	}
	return remaining >= quantity, nil
}

// ReserveTickets takes capacity. If the decrement overshoots because another
// buyer got there first, the capacity is restored and the reservation fails.
func (r *Redis) ReserveTickets(ticketTypeID int64, quantity int) error {
	ctx := context.Background()
	remaining, err := r.Client.DecrBy(ctx, capacityKey(ticketTypeID), int64(quantity)).Result()
	if err != nil {
		return err
	}
	if remaining < 0 {
		if _, err := r.Client.IncrBy(ctx, capacityKey(ticketTypeID), int64(quantity)).Result(); err != nil {
			r.Logger.Printf("RESERVATION: failed to restore capacity for ticket type %d: %v", ticketTypeID, err)
		}
		return fmt.Errorf("not enough capacity for ticket type %d", ticketTypeID)
	}
	return nil
}

// ReleaseTickets gives capacity back after a cancellation or rollback.
func (r *Redis) ReleaseTickets(ticketTypeID int64, quantity int) error {
	_, err := r.Client.IncrBy(context.Background(), capacityKey(ticketTypeID), int64(quantity)).Result()
	return err
}
