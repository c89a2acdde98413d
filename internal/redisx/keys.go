package redisx

import (
	"fmt"
	"time"
)

const (
	// Session cart: cart:{session_id} -> JSON cart
	KeyCart = "cart:%s"

	// Cached attempt status: order_status:{order_id} -> {"order_id": "...", "status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)

func CartKey(sessionID string) string { return fmt.Sprintf(KeyCart, sessionID) }

func OrderStatusKey(orderID string) string { return fmt.Sprintf(KeyOrderStatus, orderID) }

func DedupKey(service, eventID string) string { return fmt.Sprintf(KeyDedup, service, eventID) }
