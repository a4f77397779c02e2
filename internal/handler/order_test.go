package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
	"github.com/jsbarre1/jwt-pizza/internal/model"
	"github.com/jsbarre1/jwt-pizza/internal/repository"
)

func testReceipts() *auth.ReceiptSigner {
	return auth.NewReceiptSigner(auth.StaticKey("receipt secret"))
}

func sampleOrder() model.Order {
	return model.Order{
		ID: 23, DinerID: 3, FranchiseID: 2, StoreID: 4,
		Items: []model.OrderItem{
			{MenuID: 1, Description: "Veggie", Price: 0.0038},
			{MenuID: 2, Description: "Pepperoni", Price: 0.0042},
		},
		Date: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestVerifyAcceptsSignedReceipt(t *testing.T) {
	receipts := testReceipts()
	h := NewOrderHandler(testConfig(), nil, nil, receipts, nil)

	raw, err := receipts.Sign(sampleOrder())
	require.NoError(t, err)

	rec := doJSON(t, h.Verify, http.MethodPost, "/api/order/verify",
		fmt.Sprintf(`{"jwt":%q}`, raw))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"order is valid"`)
	assert.Contains(t, rec.Body.String(), `"storeId":4`)
	assert.Contains(t, rec.Body.String(), `"Pepperoni"`)
}

func TestVerifyRejectsTamperedReceipt(t *testing.T) {
	receipts := testReceipts()
	h := NewOrderHandler(testConfig(), nil, nil, receipts, nil)

	raw, err := receipts.Sign(sampleOrder())
	require.NoError(t, err)
	tampered := []byte(raw)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	rec := doJSON(t, h.Verify, http.MethodPost, "/api/order/verify",
		fmt.Sprintf(`{"jwt":%q}`, string(tampered)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"message":"order is not valid","payload":{"error":"invalid receipt token"}}`,
		rec.Body.String())
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	other := auth.NewReceiptSigner(auth.StaticKey("someone else"))
	h := NewOrderHandler(testConfig(), nil, nil, testReceipts(), nil)

	raw, err := other.Sign(sampleOrder())
	require.NoError(t, err)

	rec := doJSON(t, h.Verify, http.MethodPost, "/api/order/verify",
		fmt.Sprintf(`{"jwt":%q}`, raw))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMenuCachesInRedis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewOrderHandler(testConfig(), repository.NewMenuRepo(db), nil, testReceipts(), rdb)

	mock.ExpectQuery("SELECT id, title, image, price, description FROM menu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "image", "price", "description"}).
			AddRow(1, "Veggie", "pizza1.png", 0.0038, "A garden of delight"))

	// First call hits the database and fills the cache.
	rec := doJSON(t, h.GetMenu, http.MethodGet, "/api/order/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Veggie"`)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Second call is served from the cache; no further queries.
	rec = doJSON(t, h.GetMenu, http.MethodGet, "/api/order/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Veggie"`)

	// The entry expires on its own.
	mr.FastForward(2 * menuCacheTTL)
	assert.False(t, mr.Exists(menuCacheKey))
}
