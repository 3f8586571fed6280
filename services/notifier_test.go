package services

import (
	"context"
	"errors"
	"testing"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBNotifier(t *testing.T) {
	db := setupTestDB(t)
	notifier := NewDBNotifier(db)
	orderID := uint(7)

	require.NoError(t, notifier.Notify(context.Background(), Notice{
		Kind: models.NotificationNewOrder, OrderID: &orderID, Title: "New order", Message: "New dine in order",
	}))
	require.NoError(t, notifier.Notify(context.Background(), Notice{
		Kind: models.NotificationOrderStatus, OrderID: &orderID, Recipients: []uint{1, 2}, Message: "Order is now ready",
	}))

	var rows []models.Notification
	require.NoError(t, db.Order("id asc").Find(&rows).Error)
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].UserID)
	require.NotNil(t, rows[0].Title)
	assert.Equal(t, "New order", *rows[0].Title)
	assert.Equal(t, uint(1), *rows[1].UserID)
	assert.Equal(t, uint(2), *rows[2].UserID)
	assert.Nil(t, rows[2].Title)
	assert.False(t, rows[2].IsRead)
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, Notice) error { return errors.New("smtp down") }

type failingBroadcaster struct{}

func (failingBroadcaster) Publish(context.Context, string, interface{}) error {
	return errors.New("redis down")
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	setupTestDB(t)
	d := NewDispatcher(failingNotifier{}, failingBroadcaster{}, "")
	d.Notify(Notice{Kind: models.NotificationNewOrder})
	d.Broadcast()
	d.Wait()
	assert.Equal(t, "orders", d.topic)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Notify(Notice{})
		d.Broadcast()
	})
}
