package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"emptio-backend/config"
	"emptio-backend/models"
	"emptio-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/orders", "", checkoutPayload("john@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Order placed successfully", body["message"])

	order := body["order"].(map[string]interface{})
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{5}$`), order["orderId"])
	assert.Equal(t, "placed", order["status"])
	assert.Equal(t, 150.0, order["totalAmount"])

	var stored models.Order
	require.NoError(t, config.DB.Preload("StatusHistory").First(&stored, "id = ?", order["id"]).Error)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, models.StatusPlaced, stored.StatusHistory[0].Status)
	assert.Equal(t, "Order placed successfully", stored.StatusHistory[0].Note)

	// card number must be stored masked
	require.NotNil(t, stored.PaymentInfo)
	assert.Equal(t, "**** **** **** 1234", stored.PaymentInfo.CardNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	r := setupServer(t)

	payload := checkoutPayload("john@example.com")
	payload["items"] = []map[string]interface{}{}
	w := doRequest(t, r, http.MethodPost, "/api/orders", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = checkoutPayload("john@example.com")
	payload["paymentMethod"] = "cheque"
	w = doRequest(t, r, http.MethodPost, "/api/orders", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid payment method")

	payload = checkoutPayload("not-an-email")
	w = doRequest(t, r, http.MethodPost, "/api/orders", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderByID(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	id := placeOrder(t, r, "john@example.com")

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "placed", body["status"])
	assert.Len(t, body["items"], 1)
	assert.Len(t, body["statusHistory"], 1)

	w = doRequest(t, r, http.MethodGet, "/api/orders/99999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserOrdersExcludesCancelledAndReturned(t *testing.T) {
	r := setupServer(t)
	user, token := createUser(t, models.RoleCustomer)

	now := time.Now().UTC()
	active := seedOrder(t, models.StatusShipped, user.Email, 100, now)
	seedOrder(t, models.StatusCancelled, user.Email, 50, now)
	seedOrder(t, models.StatusReturned, user.Email, 75, now)
	seedOrder(t, models.StatusPlaced, "someone-else@example.com", 30, now)

	w := doRequest(t, r, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, active.OrderID, orders[0].OrderID)
}

func TestGetGuestOrders(t *testing.T) {
	r := setupServer(t)

	now := time.Now().UTC()
	seedOrder(t, models.StatusPlaced, "guest@example.com", 60, now.Add(-time.Hour))
	seedOrder(t, models.StatusConfirmed, "guest@example.com", 80, now)
	seedOrder(t, models.StatusCancelled, "guest@example.com", 90, now)

	w := doRequest(t, r, http.MethodGet, "/api/orders/guest?email=guest@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	// newest first
	assert.Equal(t, models.StatusConfirmed, orders[0].Status)
	assert.Equal(t, models.StatusPlaced, orders[1].Status)

	w = doRequest(t, r, http.MethodGet, "/api/orders/guest", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email is required")
}

func TestCancelOrder(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	id := placeOrder(t, r, "john@example.com")

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", id), token,
		map[string]string{"reason": "Changed my mind"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Order cancelled successfully", body["message"])

	order := body["order"].(map[string]interface{})
	assert.Equal(t, "cancelled", order["status"])
	assert.Equal(t, "Changed my mind", order["cancellationReason"])

	history := order["statusHistory"].([]interface{})
	require.Len(t, history, 2)
	last := history[1].(map[string]interface{})
	assert.Equal(t, "cancelled", last["status"])
	assert.Equal(t, "Changed my mind", last["note"])
}

func TestCancelOrderDefaultReason(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	id := placeOrder(t, r, "john@example.com")

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order := decodeBody(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "Cancelled by user", order["cancellationReason"])
}

func TestCancelOrderRejectedAfterShipping(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	for _, status := range []models.OrderStatus{
		models.StatusShipped, models.StatusOutForDelivery, models.StatusDelivered,
	} {
		order := seedOrder(t, status, "john@example.com", 100, time.Now().UTC())

		w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", order.ID), token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "status %q", status)
		assert.Contains(t, w.Body.String(), "Order cannot be cancelled at this stage")

		// a rejected cancellation must leave the order untouched
		var reloaded models.Order
		require.NoError(t, config.DB.Preload("StatusHistory").First(&reloaded, order.ID).Error)
		assert.Equal(t, status, reloaded.Status)
		assert.Len(t, reloaded.StatusHistory, 1)
		assert.Nil(t, reloaded.CancellationReason)
	}
}

func TestRequestReturn(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	order := seedOrder(t, models.StatusDelivered, "john@example.com", 100, time.Now().UTC())

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/return", order.ID), token,
		map[string]string{"reason": "Wrong size"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Return request submitted successfully", body["message"])

	resp := body["order"].(map[string]interface{})
	assert.Equal(t, "returned", resp["status"])
	assert.Equal(t, "Wrong size", resp["returnReason"])
	assert.NotNil(t, resp["returnRequestedAt"])
}

func TestRequestReturnOnlyWhenDelivered(t *testing.T) {
	r := setupServer(t)
	_, token := createUser(t, models.RoleCustomer)

	order := seedOrder(t, models.StatusShipped, "john@example.com", 100, time.Now().UTC())

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/return", order.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Order must be delivered to request return")

	var reloaded models.Order
	require.NoError(t, config.DB.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.StatusShipped, reloaded.Status)
}

func TestTransitionsSucceedWhenEmailDeliveryFails(t *testing.T) {
	r := setupServer(t)
	_, admin := createUser(t, models.RoleAdmin)

	prev := services.SetSender(failingSender{})
	defer services.SetSender(prev)

	id := placeOrder(t, r, "john@example.com")

	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", id), admin,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Order
	require.NoError(t, config.DB.First(&reloaded, id).Error)
	assert.Equal(t, models.StatusConfirmed, reloaded.Status)
}

type failingSender struct{}

func (failingSender) Send(string, string, string) error {
	return errors.New("smtp unreachable")
}

func TestGetOrderLifecycle(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/orders/lifecycle", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["lifecycle"], 7)
	assert.Equal(t, "placed", body["defaultStatus"])
	assert.Equal(t, 5.0, body["deliveryLeadDays"])
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPut, "/api/orders/1/cancel", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// status updates are admin-only
	_, customer := createUser(t, models.RoleCustomer)
	w = doRequest(t, r, http.MethodPut, "/api/orders/1/status", customer,
		map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
