package repository

import (
	"context"
	"errors"

	"littlelemon/entity"
	"littlelemon/pkg/paginate"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var orderOrdering = map[string]string{
	"user_id":          "user_id",
	"delivery_crew_id": "delivery_crew_id",
	"status":           "status",
	"date":             "date",
	"total":            "total",
}

// OrderFilter scopes a listing. Nil fields do not filter.
type OrderFilter struct {
	UserID         *uint
	DeliveryCrewID *uint
	Status         *bool
	Date           string
	Ordering       string
}

type OrderRepository struct{ DB *gorm.DB }

func NewOrderRepository(db *gorm.DB) *OrderRepository { return &OrderRepository{DB: db} }

func withOrderDetail(q *gorm.DB) *gorm.DB {
	return q.Preload("User").Preload("DeliveryCrew").Preload("Items.MenuItem.Category")
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter, p paginate.Params) ([]entity.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&entity.Order{})
	if f.UserID != nil {
		q = q.Where("orders.user_id = ?", *f.UserID)
	}
	if f.DeliveryCrewID != nil {
		q = q.Where("orders.delivery_crew_id = ?", *f.DeliveryCrewID)
	}
	if f.Status != nil {
		q = q.Where("orders.status = ?", *f.Status)
	}
	if f.Date != "" {
		q = q.Where("orders.date = ?", f.Date)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []entity.Order
	err := withOrderDetail(applyOrdering(q, "orders", f.Ordering, orderOrdering)).
		Scopes(p.Scope).Find(&rows).Error
	return rows, total, err
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	return r.findByID(r.DB.WithContext(ctx), id)
}

func (r *OrderRepository) findByID(db *gorm.DB, id uint) (*entity.Order, error) {
	var o entity.Order
	if err := withOrderDetail(db).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts the order and its items within tx.
func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	items := o.Items
	o.Items = nil
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
	}
	o.Items = items
	return nil
}

// ErrStatusChanged reports that a guarded update found the order in another status.
var ErrStatusChanged = errors.New("order status changed")

// Update applies fields to the order. With a non-nil guard the row must still
// hold that status, otherwise nothing is written.
func (r *OrderRepository) Update(ctx context.Context, id uint, fields map[string]any, guard *bool) (*entity.Order, error) {
	var out *entity.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&entity.Order{}).Where("id = ?", id)
		if guard != nil {
			q = q.Where("status = ?", *guard)
		}
		res := q.Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&entity.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return gorm.ErrRecordNotFound
			}
			if guard != nil {
				return ErrStatusChanged
			}
		}
		o, err := r.findByID(tx, id)
		out = o
		return err
	})
	return out, err
}

// Delete removes the order and its items.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
