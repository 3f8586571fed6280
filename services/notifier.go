package services

import (
	"context"
	"sync"
	"time"

	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notice is one notification. No recipients means it is addressed to all staff.
type Notice struct {
	Kind       string
	OrderID    *uint
	Recipients []uint
	Title      string
	Message    string
}

type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// Broadcaster is the shared "something changed" channel. kds.Hub and kds.RedisPublisher implement it.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// DBNotifier stores notifications in the notifications table.
type DBNotifier struct {
	db *gorm.DB
}

func NewDBNotifier(db *gorm.DB) *DBNotifier {
	return &DBNotifier{db: db}
}

func (n *DBNotifier) Notify(ctx context.Context, notice Notice) error {
	var title *string
	if notice.Title != "" {
		t := notice.Title
		title = &t
	}

	rows := make([]models.Notification, 0, len(notice.Recipients)+1)
	if len(notice.Recipients) == 0 {
		rows = append(rows, models.Notification{Kind: notice.Kind, OrderID: notice.OrderID, Title: title, Message: notice.Message})
	}
	for _, id := range notice.Recipients {
		userID := id
		rows = append(rows, models.Notification{Kind: notice.Kind, UserID: &userID, OrderID: notice.OrderID, Title: title, Message: notice.Message})
	}
	return n.db.WithContext(ctx).Create(&rows).Error
}

// Dispatcher runs notifications and broadcasts in the background, after the caller has committed.
type Dispatcher struct {
	notifier    Notifier
	broadcaster Broadcaster
	topic       string
	timeout     time.Duration
	wg          sync.WaitGroup
}

func NewDispatcher(notifier Notifier, broadcaster Broadcaster, topic string) *Dispatcher {
	if topic == "" {
		topic = "orders"
	}
	return &Dispatcher{notifier: notifier, broadcaster: broadcaster, topic: topic, timeout: 10 * time.Second}
}

func (d *Dispatcher) Notify(notice Notice) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, notice); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"kind": notice.Kind}).Errorf("notification failed: %v", err)
		}
	}()
}

// Broadcast announces that orders changed. Subscribers re-fetch, so the payload carries no data.
func (d *Dispatcher) Broadcast() {
	if d == nil || d.broadcaster == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.broadcaster.Publish(ctx, d.topic, map[string]bool{"success": true}); err != nil {
			utils.ErrorLogger.WithField("topic", d.topic).Errorf("broadcast failed: %v", err)
		}
	}()
}

// Wait blocks until every dispatched task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
