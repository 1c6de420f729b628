package services

import (
	"littlelemon/entity"
	"littlelemon/pkg/apperr"
)

// Status moves one way: placed -> delivered. Setting the current value again is a no-op.
func checkStatusTransition(from, to bool) error {
	if from == entity.StatusDelivered && to == entity.StatusPlaced {
		return apperr.Validation("a delivered order cannot be reopened")
	}
	return nil
}

// statusGuard is the status the row must still hold when the update lands.
// A concurrent change between load and write makes the update miss.
func statusGuard(o *entity.Order, fields map[string]any) *bool {
	if _, ok := fields["status"]; !ok {
		return nil
	}
	from := o.Status
	return &from
}
