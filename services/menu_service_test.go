package services

import (
	"context"
	"testing"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newMenuService(t *testing.T) (*MenuService, *CategoryService) {
	db := newTestDB(t)
	cats := repository.NewCategoryRepository(db)
	return NewMenuService(repository.NewMenuItemRepository(db), cats), NewCategoryService(cats)
}

func TestValidatePrice(t *testing.T) {
	cases := []struct {
		price string
		ok    bool
	}{
		{"9.99", true},
		{"0.01", true},
		{"9999.99", true},
		{"5.50", true},
		{"0", false},
		{"-1.00", false},
		{"1.999", false},
		{"10000", false},
	}
	for _, tc := range cases {
		err := ValidatePrice(entity.MustMoney(tc.price))
		if tc.ok {
			assert.NoError(t, err, tc.price)
		} else {
			assert.True(t, apperr.Is(err, apperr.KindValidation), tc.price)
		}
	}
}

func TestMenuServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	menu, cats := newMenuService(t)
	db := menu.MenuRepo.DB
	mgr := makeUser(t, db, "mia", entity.GroupManager)
	customer := makeUser(t, db, "carol")

	mains, err := cats.Create(ctx, mgr, CategoryIn{Title: "Mains"})
	require.NoError(t, err)
	desserts, err := cats.Create(ctx, mgr, CategoryIn{Title: "Desserts"})
	require.NoError(t, err)

	_, err = menu.Create(ctx, customer, MenuItemIn{Title: ptr("Soup"), Price: ptr(entity.MustMoney("4.00")), CategoryID: ptr(mains.ID)})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	_, err = menu.Create(ctx, mgr, MenuItemIn{Title: ptr("Soup")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = menu.Create(ctx, mgr, MenuItemIn{Title: ptr("Soup"), Price: ptr(entity.MustMoney("4.00")), CategoryID: ptr(uint(99))})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	soup, err := menu.Create(ctx, mgr, MenuItemIn{Title: ptr("Soup"), Price: ptr(entity.MustMoney("4.00")), CategoryID: ptr(mains.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Mains", soup.Category.Title)
	assert.False(t, soup.Featured)

	cake, err := menu.Create(ctx, mgr, MenuItemIn{Title: ptr("Cake"), Price: ptr(entity.MustMoney("6.50")), Featured: ptr(true), CategoryID: ptr(desserts.ID)})
	require.NoError(t, err)

	patched, err := menu.Update(ctx, mgr, soup.ID, MenuItemIn{Price: ptr(entity.MustMoney("4.25"))}, true)
	require.NoError(t, err)
	assert.Equal(t, "4.25", patched.Price.String())
	assert.Equal(t, "Soup", patched.Title)

	_, err = menu.Update(ctx, mgr, soup.ID, MenuItemIn{Price: ptr(entity.MustMoney("4.25"))}, false)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "PUT needs every field")

	replaced, err := menu.Update(ctx, mgr, cake.ID, MenuItemIn{Title: ptr("Tart"), Price: ptr(entity.MustMoney("7.00")), CategoryID: ptr(mains.ID)}, false)
	require.NoError(t, err)
	assert.False(t, replaced.Featured, "PUT resets omitted featured")
	assert.Equal(t, mains.ID, replaced.CategoryID)

	page := paginate.Params{Page: 1, Size: 10}
	f, err := ParseMenuQuery("", "mains", "", "", "-price")
	require.NoError(t, err)
	rows, total, err := menu.List(ctx, f, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Tart", rows[0].Title)

	f, err = ParseMenuQuery("", "", "", "OU", "title")
	require.NoError(t, err)
	rows, _, err = menu.List(ctx, f, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Soup", rows[0].Title)

	_, err = ParseMenuQuery("abc", "", "", "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, menu.Delete(ctx, mgr, soup.ID))
	_, err = menu.Get(ctx, soup.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(menu.Delete(ctx, mgr, soup.ID), apperr.KindNotFound))
}

func TestMenuDeleteGuardsOrderedItems(t *testing.T) {
	ctx := context.Background()
	menu, _ := newMenuService(t)
	db := menu.MenuRepo.DB
	mgr := makeUser(t, db, "mia", entity.GroupManager)
	customer := makeUser(t, db, "carol")
	burger := makeMenuItem(t, db, "Burger", "9.99")
	fries := makeMenuItem(t, db, "Fries", "2.00")

	require.NoError(t, db.Create(&entity.Order{UserID: customer.UserID, Total: entity.MustMoney("9.99"), Date: "2024-01-01",
		Items: []entity.OrderItem{{MenuItemID: burger.ID, Quantity: 1, UnitPrice: burger.Price, Price: burger.Price}}}).Error)
	require.NoError(t, db.Create(&entity.CartItem{UserID: customer.UserID, MenuItemID: fries.ID, Quantity: 1, UnitPrice: fries.Price, Price: fries.Price}).Error)

	assert.True(t, apperr.Is(menu.Delete(ctx, mgr, burger.ID), apperr.KindConflict))

	require.NoError(t, menu.Delete(ctx, mgr, fries.ID))
	assert.Zero(t, countRows(t, db, &entity.CartItem{}))
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	_, cats := newMenuService(t)
	db := cats.Repo.DB

	root := makeSuperuser(t, db, "root")
	crew := makeUser(t, db, "dan", entity.GroupDeliveryCrew)

	c, err := cats.Create(ctx, root, CategoryIn{Title: " Drinks "})
	require.NoError(t, err)
	assert.Equal(t, "Drinks", c.Title)

	_, err = cats.Create(ctx, root, CategoryIn{Title: "drinks"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = cats.Create(ctx, crew, CategoryIn{Title: "Snacks"})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

	_, err = cats.Create(ctx, root, CategoryIn{Title: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	rows, total, err := cats.List(ctx, paginate.Params{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Drinks", rows[0].Title)
}
