package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	EventOrderPlaced  = "order.placed"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

type OrderEvent struct {
	Type           string `json:"type"`
	OrderID        uint   `json:"order_id"`
	UserID         uint   `json:"user_id"`
	DeliveryCrewID *uint  `json:"delivery_crew_id"`
	Status         bool   `json:"status"`
}

// OrderNotifier receives order changes after they are committed.
type OrderNotifier interface {
	Publish(OrderEvent)
}

type NopNotifier struct{}

func (NopNotifier) Publish(OrderEvent) {}

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "littlelemon_orders_placed_total",
		Help: "Orders created from carts.",
	})
	orderPlacementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "littlelemon_order_placement_failures_total",
		Help: "Order placements rolled back because of a server-side failure.",
	})
)
