package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	orders   []map[string]any
	keys     []string
	failNext int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	mux.HandleFunc("GET /api/restaurants/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id != "r1" && id != "r2" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Restaurant not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"_id": id, "name": "Place " + id, "deliveryFee": 50, "deliveryTime": "30-40 min",
				"menuItems": []map[string]any{
					{"_id": id + "-burger", "restaurant": id, "name": "Burger", "price": 250, "isAvailable": true},
					{"_id": id + "-soup", "restaurant": id, "name": "Soup", "price": 120, "isAvailable": false},
				},
			},
		})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok-1",
			"user":    map[string]any{"_id": "u1", "name": "Sam", "email": "sam@example.com"},
		})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authorized, no token"})
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad body"})
			return
		}
		f.mu.Lock()
		f.keys = append(f.keys, r.Header.Get("Idempotency-Key"))
		if f.failNext > 0 {
			f.failNext--
			f.mu.Unlock()
			writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "message": "Upstream timed out"})
			return
		}
		f.orders = append(f.orders, body)
		f.mu.Unlock()

		body["_id"] = "o1"
		body["status"] = "pending"
		body["estimatedDeliveryTime"] = "30-40 min"
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": body})
	})
	return mux
}

func setupCLI(t *testing.T) (*fakeAPI, *miniredis.Miniredis) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)

	t.Setenv("API_URL", srv.URL+"/api")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("CART_CONFLICT_POLICY", "reject")
	t.Setenv("LOG_LEVEL", "error")
	return api, mr
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"foodcart"}, args...))
	return out.String(), err
}

func TestCLI_CartSurvivesBetweenRuns(t *testing.T) {
	_, mr := setupCLI(t)

	out, err := run(t, "cart", "add", "--qty", "2", "r1", "r1-burger")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Burger to cart (2 items, Rs. 550.00)")
	assert.True(t, mr.Exists("foodcart:cart"))
	assert.True(t, mr.Exists("foodcart:cartRestaurant"))

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Place r1")
	assert.Contains(t, out, "Subtotal:     Rs. 500.00")
	assert.Contains(t, out, "Total:        Rs. 550.00")
}

func TestCLI_OtherRestaurantIsRejectedUnlessReplaced(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "cart", "add", "r1", "r1-burger")
	require.NoError(t, err)

	_, err = run(t, "cart", "add", "r2", "r2-burger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--replace")

	_, err = run(t, "cart", "add", "--replace", "r2", "r2-missing")
	require.ErrorIs(t, err, errMenuItemMissing)

	out, err := run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Place r1")

	_, err = run(t, "cart", "add", "--replace", "r2", "r2-burger")
	require.NoError(t, err)

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Place r2")
	assert.NotContains(t, out, "r1-burger")
}

func TestCLI_UnavailableItem(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "cart", "add", "r1", "r1-soup")
	assert.ErrorIs(t, err, errItemUnavailable)

	_, err = run(t, "cart", "add", "r1", "nope")
	assert.ErrorIs(t, err, errMenuItemMissing)
}

func TestCLI_UpdateAndRemove(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "cart", "add", "r1", "r1-burger")
	require.NoError(t, err)

	out, err := run(t, "cart", "update", "r1-burger", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtotal:     Rs. 750.00")

	_, err = run(t, "cart", "update", "r1-burger", "abc")
	require.Error(t, err)

	out, err = run(t, "cart", "remove", "r1-burger")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCLI_CheckoutPlacesOrderAndEmptiesCart(t *testing.T) {
	api, mr := setupCLI(t)

	_, err := run(t, "cart", "add", "--qty", "2", "r1", "r1-burger")
	require.NoError(t, err)

	_, err = run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore")
	require.Error(t, err, "checkout needs a signed-in user")

	out, err := run(t, "login", "--email", "sam@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Sam")

	out, err = run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore")
	require.NoError(t, err)
	assert.Contains(t, out, "Order ID: o1")
	assert.Contains(t, out, "Total:    Rs. 550.00")

	api.mu.Lock()
	require.Len(t, api.orders, 1)
	order := api.orders[0]
	assert.NotEmpty(t, api.keys[0])
	api.mu.Unlock()
	assert.Equal(t, "r1", order["restaurant"])
	assert.Equal(t, "cash", order["paymentMethod"])
	assert.EqualValues(t, 550, order["totalAmount"])
	addr := order["deliveryAddress"].(map[string]any)
	assert.Equal(t, "Pakistan", addr["country"])

	assert.False(t, mr.Exists("foodcart:cart"))
	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCLI_CheckoutValidation(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "login", "--email", "sam@example.com", "--password", "secret")
	require.NoError(t, err)

	_, err = run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")

	_, err = run(t, "cart", "add", "r1", "r1-burger")
	require.NoError(t, err)

	_, err = run(t, "checkout", "--street", "1 Mall Road")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery address")

	_, err = run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore", "--payment", "bitcoin")
	require.Error(t, err)
}

func TestCLI_Logout(t *testing.T) {
	_, mr := setupCLI(t)

	_, err := run(t, "login", "--email", "sam@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.True(t, mr.Exists("foodcart:userToken"))

	_, err = run(t, "logout")
	require.NoError(t, err)
	assert.False(t, mr.Exists("foodcart:userToken"))
	assert.False(t, mr.Exists("foodcart:userData"))
}

func TestCLI_CheckoutRetryInLaterRunReusesKey(t *testing.T) {
	api, mr := setupCLI(t)
	api.failNext = 1

	_, err := run(t, "login", "--email", "sam@example.com", "--password", "secret")
	require.NoError(t, err)
	_, err = run(t, "cart", "add", "r1", "r1-burger")
	require.NoError(t, err)

	_, err = run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upstream timed out")
	assert.True(t, mr.Exists("foodcart:pendingOrder"))

	out, err := run(t, "checkout", "--street", "1 Mall Road", "--city", "Lahore")
	require.NoError(t, err)
	assert.Contains(t, out, "Order ID: o1")

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.keys, 2)
	assert.Equal(t, api.keys[0], api.keys[1])
	assert.Len(t, api.orders, 1)
	assert.False(t, mr.Exists("foodcart:pendingOrder"))
}
