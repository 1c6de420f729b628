package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/policy"
	"littlelemon/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type OrderServiceSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	carts    *CartService
	orders   *OrderService
	notifier *recordingNotifier

	customer policy.Principal
	manager  policy.Principal
	crew     policy.Principal
	crew2    policy.Principal
	burger   entity.MenuItem
	fries    entity.MenuItem
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newTestDB(s.T())
	s.notifier = &recordingNotifier{}

	cartRepo := repository.NewCartRepository(s.db)
	s.carts = NewCartService(cartRepo, repository.NewMenuItemRepository(s.db))
	s.orders = NewOrderService(s.db, repository.NewOrderRepository(s.db), cartRepo,
		repository.NewUserRepository(s.db), s.notifier, zerolog.Nop())
	s.orders.Now = func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) }

	s.customer = makeUser(s.T(), s.db, "carol")
	s.manager = makeUser(s.T(), s.db, "mia", entity.GroupManager)
	s.crew = makeUser(s.T(), s.db, "dan", entity.GroupDeliveryCrew)
	s.crew2 = makeUser(s.T(), s.db, "deb", entity.GroupDeliveryCrew)
	s.burger = makeMenuItem(s.T(), s.db, "Burger", "9.99")
	s.fries = makeMenuItem(s.T(), s.db, "Fries", "3.35")
}

func (s *OrderServiceSuite) addToCart(p policy.Principal, item entity.MenuItem, qty int) {
	_, err := s.carts.Add(s.ctx, p, AddToCartIn{MenuItemID: item.ID, Quantity: qty})
	s.Require().NoError(err)
}

func (s *OrderServiceSuite) placeFor(p policy.Principal) *entity.Order {
	s.addToCart(p, s.burger, 2)
	o, err := s.orders.Place(s.ctx, p)
	s.Require().NoError(err)
	return o
}

func patch(fields map[string]any) OrderPatch {
	out := OrderPatch{}
	for k, v := range fields {
		b, _ := json.Marshal(v)
		out[k] = b
	}
	return out
}

func (s *OrderServiceSuite) TestPlaceScenario() {
	s.addToCart(s.customer, s.burger, 2)

	o, err := s.orders.Place(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Equal("19.98", o.Total.String())
	s.Equal(entity.StatusPlaced, o.Status)
	s.Nil(o.DeliveryCrewID)
	s.Equal("2024-03-09", o.Date)
	s.Require().Len(o.Items, 1)
	s.Equal("9.99", o.Items[0].UnitPrice.String())
	s.Equal(2, o.Items[0].Quantity)
	s.Equal("Burger", o.Items[0].MenuItem.Title)

	s.Zero(countRows(s.T(), s.db, &entity.CartItem{}))
	s.Require().Len(s.notifier.Events(), 1)
	s.Equal(EventOrderPlaced, s.notifier.Events()[0].Type)
}

func (s *OrderServiceSuite) TestPlaceSumsEveryLineExactly() {
	salad := makeMenuItem(s.T(), s.db, "Salad", "0.10")
	s.addToCart(s.customer, s.burger, 3)
	s.addToCart(s.customer, s.fries, 7)
	s.addToCart(s.customer, salad, 3)

	o, err := s.orders.Place(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Len(o.Items, 3)
	// 29.97 + 23.45 + 0.30
	s.Equal("53.72", o.Total.String())
	s.EqualValues(1, countRows(s.T(), s.db, &entity.Order{}))
	s.EqualValues(3, countRows(s.T(), s.db, &entity.OrderItem{}))

	n, err := s.carts.Clear(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *OrderServiceSuite) TestPlaceEmptyCart() {
	_, err := s.orders.Place(s.ctx, s.customer)
	s.True(apperr.Is(err, apperr.KindValidation))
	s.Zero(countRows(s.T(), s.db, &entity.Order{}))
	s.Empty(s.notifier.Events())
}

func (s *OrderServiceSuite) TestPlaceDeniedForNonCustomers() {
	both := makeUser(s.T(), s.db, "boss", entity.GroupManager, entity.GroupDeliveryCrew)
	root := makeSuperuser(s.T(), s.db, "root")
	for _, p := range []policy.Principal{s.manager, s.crew, both, root} {
		_, err := s.orders.Place(s.ctx, p)
		s.True(apperr.Is(err, apperr.KindPermissionDenied), p.Username)
	}
	s.Zero(countRows(s.T(), s.db, &entity.Order{}))
}

func (s *OrderServiceSuite) TestUnitPriceIsSnapshotAtAddTime() {
	s.addToCart(s.customer, s.burger, 1)
	s.Require().NoError(s.db.Model(&entity.MenuItem{}).Where("id = ?", s.burger.ID).
		Update("price", entity.MustMoney("12.50")).Error)

	o, err := s.orders.Place(s.ctx, s.customer)
	s.Require().NoError(err)
	s.Equal("9.99", o.Items[0].UnitPrice.String())
	s.Equal("9.99", o.Total.String())
}

func (s *OrderServiceSuite) TestConcurrentPlacementCreatesOneOrder() {
	s.addToCart(s.customer, s.burger, 1)
	s.addToCart(s.customer, s.fries, 1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.orders.Place(s.ctx, s.customer)
		}()
	}
	wg.Wait()

	// the second transaction waits for the first, then finds the cart empty
	var placed, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			placed++
		case apperr.Is(err, apperr.KindValidation):
			empty++
		default:
			s.Failf("unexpected placement error", "%v", err)
		}
	}
	s.Equal(1, placed)
	s.Equal(1, empty)
	s.EqualValues(1, countRows(s.T(), s.db, &entity.Order{}))
	s.EqualValues(2, countRows(s.T(), s.db, &entity.OrderItem{}))
	s.Zero(countRows(s.T(), s.db, &entity.CartItem{}))
}

func (s *OrderServiceSuite) TestManagerAssignsCrew() {
	o := s.placeFor(s.customer)

	updated, err := s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"delivery_crew_id": s.crew.UserID}))
	s.Require().NoError(err)
	s.Require().NotNil(updated.DeliveryCrewID)
	s.Equal(s.crew.UserID, *updated.DeliveryCrewID)
	s.Equal("dan", updated.DeliveryCrew.Username)

	updated, err = s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{"delivery_crew_id": json.RawMessage("null")})
	s.Require().NoError(err)
	s.Nil(updated.DeliveryCrewID)
}

func (s *OrderServiceSuite) TestManagerAssignNonCrewFails() {
	o := s.placeFor(s.customer)
	other := makeUser(s.T(), s.db, "otto")

	for _, target := range []uint{other.UserID, s.manager.UserID, 4242} {
		_, err := s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"delivery_crew_id": target}))
		s.True(apperr.Is(err, apperr.KindValidation), "target %d", target)
	}

	got, err := s.orders.Get(s.ctx, s.manager, o.ID)
	s.Require().NoError(err)
	s.Nil(got.DeliveryCrewID)
}

func (s *OrderServiceSuite) TestManagerCannotTouchOtherFields() {
	o := s.placeFor(s.customer)
	for _, field := range []string{"total", "date", "user_id", "items"} {
		_, err := s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"status": true, field: 1}))
		s.True(apperr.Is(err, apperr.KindValidation), field)
	}
	got, err := s.orders.Get(s.ctx, s.manager, o.ID)
	s.Require().NoError(err)
	s.Equal(entity.StatusPlaced, got.Status)

	_, err = s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{})
	s.True(apperr.Is(err, apperr.KindValidation))
}

func (s *OrderServiceSuite) TestDeliveryCrewPatchRules() {
	o := s.placeFor(s.customer)
	_, err := s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"delivery_crew_id": s.crew.UserID}))
	s.Require().NoError(err)

	_, err = s.orders.Update(s.ctx, s.crew2, o.ID, patch(map[string]any{"status": true}))
	s.True(apperr.Is(err, apperr.KindPermissionDenied), "non-assignee")

	_, err = s.orders.Update(s.ctx, s.crew, o.ID, patch(map[string]any{"delivery_crew_id": s.crew2.UserID}))
	s.True(apperr.Is(err, apperr.KindValidation), "assignee touching crew")

	updated, err := s.orders.Update(s.ctx, s.crew, o.ID, patch(map[string]any{"status": true}))
	s.Require().NoError(err)
	s.Equal(entity.StatusDelivered, updated.Status)

	_, err = s.orders.Update(s.ctx, s.crew, o.ID, patch(map[string]any{"status": false}))
	s.True(apperr.Is(err, apperr.KindValidation), "delivered is terminal")
}

func (s *OrderServiceSuite) TestCustomerCannotPatch() {
	o := s.placeFor(s.customer)
	_, err := s.orders.Update(s.ctx, s.customer, o.ID, patch(map[string]any{"status": true}))
	s.True(apperr.Is(err, apperr.KindPermissionDenied))
}

func (s *OrderServiceSuite) TestStatusAcceptsNumericBooleans() {
	o := s.placeFor(s.customer)
	updated, err := s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{"status": json.RawMessage("1")})
	s.Require().NoError(err)
	s.True(updated.Status)

	_, err = s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{"status": json.RawMessage(`"maybe"`)})
	s.True(apperr.Is(err, apperr.KindValidation))
}

func (s *OrderServiceSuite) TestStatusNullIsRejected() {
	o := s.placeFor(s.customer)
	_, err := s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{"status": json.RawMessage("null")})
	s.Require().Error(err)
	s.True(apperr.Is(err, apperr.KindValidation))
	s.Contains(err.Error(), "status must be a boolean")

	delivered, err := s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"status": true}))
	s.Require().NoError(err)
	s.True(delivered.Status)

	_, err = s.orders.Update(s.ctx, s.manager, o.ID, OrderPatch{"status": json.RawMessage(" null ")})
	s.Require().Error(err)
	s.Contains(err.Error(), "status must be a boolean")
	s.NotContains(err.Error(), "reopened")
}

func (s *OrderServiceSuite) TestGetAccess() {
	o := s.placeFor(s.customer)
	other := makeUser(s.T(), s.db, "otto")

	_, err := s.orders.Get(s.ctx, s.customer, o.ID)
	s.NoError(err)
	_, err = s.orders.Get(s.ctx, s.manager, o.ID)
	s.NoError(err)

	_, err = s.orders.Get(s.ctx, other, o.ID)
	s.True(apperr.Is(err, apperr.KindPermissionDenied))
	_, err = s.orders.Get(s.ctx, s.crew, o.ID)
	s.True(apperr.Is(err, apperr.KindPermissionDenied))

	_, err = s.orders.Update(s.ctx, s.manager, o.ID, patch(map[string]any{"delivery_crew_id": s.crew.UserID}))
	s.Require().NoError(err)
	_, err = s.orders.Get(s.ctx, s.crew, o.ID)
	s.NoError(err)

	_, err = s.orders.Get(s.ctx, s.customer, 999)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *OrderServiceSuite) TestListScopesByRole() {
	first := s.placeFor(s.customer)
	other := makeUser(s.T(), s.db, "otto")
	s.placeFor(other)
	_, err := s.orders.Update(s.ctx, s.manager, first.ID, patch(map[string]any{"delivery_crew_id": s.crew.UserID}))
	s.Require().NoError(err)

	page := paginate.Params{Page: 1, Size: 10}
	count := func(p policy.Principal) int64 {
		_, total, err := s.orders.List(s.ctx, p, OrderQuery{}, page)
		s.Require().NoError(err)
		return total
	}
	s.EqualValues(2, count(s.manager))
	s.EqualValues(1, count(s.customer))
	s.EqualValues(1, count(other))
	s.EqualValues(1, count(s.crew))
	s.EqualValues(0, count(s.crew2))

	_, _, err = s.orders.List(s.ctx, makeSuperuser(s.T(), s.db, "root"), OrderQuery{}, page)
	s.True(apperr.Is(err, apperr.KindPermissionDenied))
}

func (s *OrderServiceSuite) TestListFiltersAndOrdering() {
	a := s.placeFor(s.customer)
	s.addToCart(s.customer, s.fries, 1)
	b, err := s.orders.Place(s.ctx, s.customer)
	s.Require().NoError(err)
	_, err = s.orders.Update(s.ctx, s.manager, a.ID, patch(map[string]any{"status": true}))
	s.Require().NoError(err)

	page := paginate.Params{Page: 1, Size: 10}

	q, err := ParseOrderQuery("delivered", "", "")
	s.Require().NoError(err)
	rows, _, err := s.orders.List(s.ctx, s.manager, q, page)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(a.ID, rows[0].ID)

	q, err = ParseOrderQuery("", "2024-03-09", "total")
	s.Require().NoError(err)
	rows, _, err = s.orders.List(s.ctx, s.manager, q, page)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(b.ID, rows[0].ID, "3.35 sorts before 19.98")

	q, err = ParseOrderQuery("", "", "-total")
	s.Require().NoError(err)
	rows, _, err = s.orders.List(s.ctx, s.manager, q, page)
	s.Require().NoError(err)
	s.Equal(a.ID, rows[0].ID)

	q, err = ParseOrderQuery("", "", "items; DROP TABLE orders")
	s.Require().NoError(err)
	rows, _, err = s.orders.List(s.ctx, s.manager, q, page)
	s.Require().NoError(err)
	s.Equal(a.ID, rows[0].ID, "unknown ordering falls back to id")

	q, err = ParseOrderQuery("", "2024-03-10", "")
	s.Require().NoError(err)
	rows, _, err = s.orders.List(s.ctx, s.manager, q, page)
	s.Require().NoError(err)
	s.Empty(rows)

	_, err = ParseOrderQuery("shipped", "", "")
	s.True(apperr.Is(err, apperr.KindValidation))
	_, err = ParseOrderQuery("", "09/03/2024", "")
	s.True(apperr.Is(err, apperr.KindValidation))
}

func (s *OrderServiceSuite) TestDeleteManagerOnly() {
	o := s.placeFor(s.customer)

	s.True(apperr.Is(s.orders.Delete(s.ctx, s.customer, o.ID), apperr.KindPermissionDenied))
	s.True(apperr.Is(s.orders.Delete(s.ctx, s.crew, o.ID), apperr.KindPermissionDenied))

	s.Require().NoError(s.orders.Delete(s.ctx, s.manager, o.ID))
	s.Zero(countRows(s.T(), s.db, &entity.Order{}))
	s.Zero(countRows(s.T(), s.db, &entity.OrderItem{}))
	s.True(apperr.Is(s.orders.Delete(s.ctx, s.manager, o.ID), apperr.KindNotFound))

	events := s.notifier.Events()
	s.Equal(EventOrderDeleted, events[len(events)-1].Type)
}

func TestBuildOrder(t *testing.T) {
	lines := []entity.CartItem{
		{MenuItemID: 1, Quantity: 3, UnitPrice: entity.MustMoney("0.10")},
		{MenuItemID: 2, Quantity: 1, UnitPrice: entity.MustMoney("0.20")},
	}
	o := BuildOrder(7, lines, time.Date(2024, 1, 2, 0, 0, 0, 0, time.FixedZone("X", 3600)))
	if o.Total.String() != "0.50" {
		t.Fatalf("total = %s, want 0.50", o.Total)
	}
	if o.Date != "2024-01-01" {
		t.Fatalf("date = %s, want UTC date 2024-01-01", o.Date)
	}
	if len(o.Items) != 2 || o.Items[0].Price.String() != "0.30" {
		t.Fatalf("unexpected items %+v", o.Items)
	}
}
