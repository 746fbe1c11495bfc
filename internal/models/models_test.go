package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanvo/bookverse-api/internal/models"
)

func TestParseDateRejectsNonCalendarDates(t *testing.T) {
	_, err := models.ParseDate("2024-02-31")
	assert.Error(t, err, "Feb 31 must not normalize to March 2")

	_, err = models.ParseDate("2024-2-3")
	assert.Error(t, err, "layout must be strict")

	d, err := models.ParseDate("2024-02-29")
	require.NoError(t, err, "leap day is a real date")
	assert.Equal(t, "2024-02-29", d.String())
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := models.ParseDate("1936-10-01")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1936-10-01"`, string(b))

	var back models.Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to models.OrderStatus }{
		{models.OrderPending, models.OrderProcessing},
		{models.OrderPending, models.OrderCancelled},
		{models.OrderProcessing, models.OrderDelivered},
		{models.OrderProcessing, models.OrderCancelled},
		{models.OrderDelivered, models.OrderReturned},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to models.OrderStatus }{
		{models.OrderPending, models.OrderDelivered},
		{models.OrderDelivered, models.OrderPending},
		{models.OrderCancelled, models.OrderProcessing},
		{models.OrderReturned, models.OrderDelivered},
		{models.OrderPending, models.OrderPending},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s must be rejected", tc.from, tc.to)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, models.OrderPending.Valid())
	assert.False(t, models.OrderStatus("SHIPPED").Valid())
	assert.False(t, models.OrderStatus("").Valid())
}
