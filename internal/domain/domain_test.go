package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_DecodesStringAndObject(t *testing.T) {
	var cats []Category
	err := json.Unmarshal([]byte(`["Pizza", {"name": "BBQ", "icon": "🍖"}]`), &cats)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	assert.Equal(t, "Pizza", cats[0].Name)
	assert.Nil(t, cats[0].Icon)
	assert.Equal(t, "BBQ", cats[1].Name)
	require.NotNil(t, cats[1].Icon)
	assert.Equal(t, "🍖", *cats[1].Icon)
}

func TestCategory_RejectsNamelessObject(t *testing.T) {
	var c Category
	err := json.Unmarshal([]byte(`{"icon": "x"}`), &c)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestMenuItem_RestaurantReference(t *testing.T) {
	var byID MenuItem
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m1","restaurant":"r1","name":"Zinger","price":450}`), &byID))
	assert.Equal(t, "r1", byID.RestaurantID)
	assert.Equal(t, "Zinger", byID.Name)
	assert.Equal(t, 450.0, byID.Price)

	var populated MenuItem
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m2","restaurant":{"_id":"r2","name":"Savour"}}`), &populated))
	assert.Equal(t, "r2", populated.RestaurantID)
	assert.Equal(t, "m2", populated.ID)
}

func TestComputeTotals(t *testing.T) {
	lines := []LineItem{
		{ItemID: "a", UnitPrice: 100, Quantity: 2},
		{ItemID: "b", UnitPrice: 50, Quantity: 1},
	}
	totals := ComputeTotals(lines, 50, 0)

	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 50.0, totals.DeliveryFee)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 300.0, totals.Total)
}

func TestComputeTotals_NoFloatDrift(t *testing.T) {
	lines := []OrderItem{{Price: 0.1, Quantity: 3}, {Price: 0.2, Quantity: 1}}
	totals := ComputeTotals(lines, 0, 0)
	assert.Equal(t, 0.5, totals.Subtotal)
	assert.True(t, SameAmount(0.5, totals.Total))
}

func TestRemoteError_IsRejection(t *testing.T) {
	var err error = &RemoteError{StatusCode: 404, Message: "Restaurant not found"}
	assert.ErrorIs(t, err, ErrRemoteRejection)
	assert.NotErrorIs(t, err, ErrNetworkFailure)
	assert.Contains(t, err.Error(), "Restaurant not found")
}

func TestRestaurant_Ref(t *testing.T) {
	r := Restaurant{ID: "r1", Name: "Savour", Logo: "l.png", DeliveryFee: 50, DeliveryTime: "30-40 min", Rating: 4.5}
	assert.Equal(t, RestaurantRef{ID: "r1", Name: "Savour", Logo: "l.png", DeliveryFee: 50, DeliveryTime: "30-40 min"}, r.Ref())
}

func TestOrder_PopulatedReferences(t *testing.T) {
	body := `{
		"_id": "o1",
		"user": {"_id": "u1", "name": "Ayesha"},
		"restaurant": {"_id": "r1", "name": "Savour Foods", "logo": "savour.png"},
		"items": [{"menuItem": {"_id": "m1", "name": "Pulao"}, "name": "Pulao", "quantity": 2, "price": 100}],
		"status": "Pending",
		"totalAmount": 250
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, "r1", o.RestaurantID)
	assert.Equal(t, "Savour Foods", o.RestaurantName)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "m1", o.Items[0].MenuItem)
	assert.Equal(t, OrderStatusPending, o.Status)

	var plain Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"o2","user":"u2","restaurant":"r2","items":[{"menuItem":"m2","quantity":1}]}`), &plain))
	assert.Equal(t, "r2", plain.RestaurantID)
	assert.Empty(t, plain.RestaurantName)
	assert.Equal(t, "m2", plain.Items[0].MenuItem)
}
