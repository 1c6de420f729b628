package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/policy"
	"littlelemon/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgPlaceFailed = "order could not be placed"

var errCartChanged = errors.New("cart changed during placement")

type OrderService struct {
	DB        *gorm.DB
	OrderRepo *repository.OrderRepository
	CartRepo  *repository.CartRepository
	UserRepo  *repository.UserRepository
	Notifier  OrderNotifier
	Log       zerolog.Logger
	Now       func() time.Time
}

func NewOrderService(db *gorm.DB, or *repository.OrderRepository, cr *repository.CartRepository,
	ur *repository.UserRepository, n OrderNotifier, log zerolog.Logger) *OrderService {
	if n == nil {
		n = NopNotifier{}
	}
	return &OrderService{DB: db, OrderRepo: or, CartRepo: cr, UserRepo: ur, Notifier: n, Log: log, Now: time.Now}
}

// Place turns the caller's cart into an order. Reading the cart, writing the
// order and its items, and deleting the cart lines happen in one transaction.
func (s *OrderService) Place(ctx context.Context, p policy.Principal) (*entity.Order, error) {
	if err := policy.RequireCustomer(p); err != nil {
		return nil, err
	}

	var orderID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := s.CartRepo.LockLines(tx, p.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.Validation("cart is empty")
		}

		o := BuildOrder(p.UserID, lines, s.Now())
		if err := s.OrderRepo.Create(tx, o); err != nil {
			return err
		}

		ids := make([]uint, len(lines))
		for i, l := range lines {
			ids[i] = l.ID
		}
		n, err := s.CartRepo.DeleteLines(tx, p.UserID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(lines)) {
			return errCartChanged
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return nil, err
		}
		orderPlacementFailures.Inc()
		s.logger(ctx).Error().Err(err).Uint("user_id", p.UserID).Str("action", "place_order").Msg(msgPlaceFailed)
		return nil, apperr.Internal(msgPlaceFailed, err)
	}

	ordersPlaced.Inc()
	o, err := s.OrderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order %d: %w", orderID, err)
	}
	s.publish(EventOrderPlaced, o)
	s.logger(ctx).Info().Uint("order_id", o.ID).Uint("user_id", p.UserID).Str("total", o.Total.String()).Msg("order placed")
	return o, nil
}

// BuildOrder snapshots cart lines into an unsaved order dated today (UTC).
func BuildOrder(userID uint, lines []entity.CartItem, now time.Time) *entity.Order {
	total := entity.NewMoney(decimal.Zero)
	items := make([]entity.OrderItem, 0, len(lines))
	for _, l := range lines {
		price := l.UnitPrice.Times(l.Quantity)
		items = append(items, entity.OrderItem{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Price:      price,
		})
		total = total.Plus(price)
	}
	return &entity.Order{
		UserID: userID,
		Status: entity.StatusPlaced,
		Total:  total,
		Date:   now.UTC().Format(entity.DateLayout),
		Items:  items,
	}
}

type OrderQuery struct {
	Status   *bool
	Date     string
	Ordering string
}

// ParseOrderQuery validates raw status/date filters. Ordering is passed through.
func ParseOrderQuery(status, date, ordering string) (OrderQuery, error) {
	q := OrderQuery{Ordering: ordering}
	if status != "" {
		v, ok := parseBoolString(status)
		if !ok {
			return q, apperr.Validation("status must be one of true, false, 1, 0, placed, delivered")
		}
		q.Status = &v
	}
	if date != "" {
		if _, err := time.Parse(entity.DateLayout, date); err != nil {
			return q, apperr.Validation("date must be formatted as YYYY-MM-DD")
		}
		q.Date = date
	}
	return q, nil
}

// List returns orders visible to the caller: all for managers, assigned ones
// for delivery crew, own ones for customers.
func (s *OrderService) List(ctx context.Context, p policy.Principal, q OrderQuery, page paginate.Params) ([]entity.Order, int64, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, 0, err
	}
	f := repository.OrderFilter{Status: q.Status, Date: q.Date, Ordering: q.Ordering}
	uid := p.UserID
	switch p.Role() {
	case policy.RoleManager:
	case policy.RoleDeliveryCrew:
		f.DeliveryCrewID = &uid
	case policy.RoleCustomer:
		f.UserID = &uid
	default:
		return nil, 0, apperr.PermissionDenied("You are not allowed to view orders")
	}
	return s.OrderRepo.List(ctx, f, page)
}

func (s *OrderService) Get(ctx context.Context, p policy.Principal, id uint) (*entity.Order, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if p.Role() == policy.RoleNone {
		return nil, apperr.PermissionDenied("You are not allowed to view orders")
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(p, o); err != nil {
		return nil, err
	}
	return o, nil
}

func canView(p policy.Principal, o *entity.Order) error {
	switch p.Role() {
	case policy.RoleManager:
		return nil
	case policy.RoleDeliveryCrew:
		if assignedTo(o, p.UserID) {
			return nil
		}
		return apperr.PermissionDenied("This order is not assigned to you")
	case policy.RoleCustomer:
		if o.UserID == p.UserID {
			return nil
		}
		return apperr.PermissionDenied("You can only view your own orders")
	}
	return apperr.PermissionDenied("You are not allowed to view orders")
}

func assignedTo(o *entity.Order, userID uint) bool {
	return o.DeliveryCrewID != nil && *o.DeliveryCrewID == userID
}

// OrderPatch is a partial update keyed by JSON field name.
type OrderPatch map[string]json.RawMessage

var (
	managerPatchFields = map[string]bool{"status": true, "delivery_crew_id": true}
	crewPatchFields    = map[string]bool{"status": true}
)

// Update applies a partial update. Managers may change status and
// delivery_crew_id; the assigned delivery crew member may change status only.
func (s *OrderService) Update(ctx context.Context, p policy.Principal, id uint, patch OrderPatch) (*entity.Order, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	role := p.Role()
	if role != policy.RoleManager && role != policy.RoleDeliveryCrew {
		return nil, apperr.PermissionDenied("Only managers or the assigned delivery crew can update orders")
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := managerPatchFields
	if role == policy.RoleDeliveryCrew {
		if !assignedTo(o, p.UserID) {
			return nil, apperr.PermissionDenied("This order is not assigned to you")
		}
		allowed = crewPatchFields
	}

	if len(patch) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	for _, field := range sortedKeys(patch) {
		if !allowed[field] {
			return nil, apperr.Validation("field %q cannot be updated", field)
		}
	}

	fields := map[string]any{}
	if raw, ok := patch["status"]; ok {
		v, ok := parseBoolJSON(raw)
		if !ok {
			return nil, apperr.Validation("status must be a boolean")
		}
		if err := checkStatusTransition(o.Status, v); err != nil {
			return nil, err
		}
		fields["status"] = v
	}
	if raw, ok := patch["delivery_crew_id"]; ok {
		crewID, err := s.resolveCrew(ctx, raw)
		if err != nil {
			return nil, err
		}
		fields["delivery_crew_id"] = crewID
	}

	updated, err := s.OrderRepo.Update(ctx, id, fields, statusGuard(o, fields))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order %d not found", id)
	}
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, apperr.Conflict("order %d status changed concurrently, reload and retry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	s.publish(EventOrderUpdated, updated)
	return updated, nil
}

// resolveCrew validates a delivery_crew_id value. JSON null unassigns.
func (s *OrderService) resolveCrew(ctx context.Context, raw json.RawMessage) (*uint, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var id uint
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return nil, apperr.Validation("delivery_crew_id must be a user id or null")
	}
	u, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("user %d does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if !policy.FromUser(u).InGroup(entity.GroupDeliveryCrew) {
		return nil, apperr.Validation("user %q is not a member of the delivery crew", u.Username)
	}
	return &id, nil
}

func (s *OrderService) Delete(ctx context.Context, p policy.Principal, id uint) error {
	if err := policy.RequireManager(p); err != nil {
		return err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	err = s.OrderRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("order %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.publish(EventOrderDeleted, o)
	return nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*entity.Order, error) {
	o, err := s.OrderRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return o, nil
}

// logger prefers the request-scoped logger carried by ctx.
func (s *OrderService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.Log
}

func (s *OrderService) publish(kind string, o *entity.Order) {
	s.Notifier.Publish(OrderEvent{
		Type:           kind,
		OrderID:        o.ID,
		UserID:         o.UserID,
		DeliveryCrewID: o.DeliveryCrewID,
		Status:         o.Status,
	})
}
