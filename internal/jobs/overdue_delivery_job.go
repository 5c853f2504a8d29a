package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DelayedDeliveryNotice is the payload published to an order's topic when the
// order is still out for delivery past its estimated delivery time.
type DelayedDeliveryNotice struct {
	Type                  string    `json:"type"`
	OrderID               string    `json:"orderId"`
	AgentID               *string   `json:"agentId,omitempty"`
	EstimatedDeliveryTime time.Time `json:"estimatedDeliveryTime"`
}

// NewDelayedDeliveryNotice derives the notice from an overdue order snapshot.
func NewDelayedDeliveryNotice(aggregate *order.Order) DelayedDeliveryNotice {
	notice := DelayedDeliveryNotice{
		Type:    "delivery_delayed",
		OrderID: aggregate.ID().String(),
	}
	if agentID := aggregate.AssignedAgent(); agentID != nil {
		id := agentID.String()
		notice.AgentID = &id
	}
	if eta := aggregate.EstimatedDeliveryTime(); eta != nil {
		notice.EstimatedDeliveryTime = *eta
	}
	return notice
}

// OverdueDeliveryJob periodically flags deliveries running late. Every 30
// seconds it scans for out-for-delivery orders past their estimate and
// publishes a delay notice to each order's topic, so tracking customers are
// told without polling.
//
// The scan is read-only and the notices are best-effort: an order that stays
// overdue is re-announced on every cycle, which doubles as a refresh for
// subscribers that joined after the first notice.
type OverdueDeliveryJob struct {
	orderStore  ports.OrderStore
	broadcaster ports.Broadcaster
	cron        *cron.Cron
	logger      *slog.Logger
}

// NewOverdueDeliveryJob creates the job over the given store and broadcast
// sink.
func NewOverdueDeliveryJob(
	orderStore ports.OrderStore,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) *OverdueDeliveryJob {
	return &OverdueDeliveryJob{
		orderStore:  orderStore,
		broadcaster: broadcaster,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger.With("component", "overdue_delivery_job"),
	}
}

// Start schedules the scan to run every 30 seconds.
func (j *OverdueDeliveryJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		j.runOnce(context.Background())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Overdue delivery job started (running every 30 seconds)")
	return nil
}

// Stop stops the scheduled scan.
func (j *OverdueDeliveryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Overdue delivery job stopped")
}

// runOnce performs one scan. A failed publish is logged and the scan moves on
// to the next overdue order.
func (j *OverdueDeliveryJob) runOnce(ctx context.Context) {
	overdue, err := j.orderStore.FindOverdueOutForDelivery(ctx, time.Now().UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "Overdue delivery scan failed", "error", err)
		return
	}

	for _, aggregate := range overdue {
		notice := NewDelayedDeliveryNotice(aggregate)
		if err := j.broadcaster.Publish("order:"+notice.OrderID, notice); err != nil {
			j.logger.ErrorContext(ctx, "Delayed delivery notice publish failed",
				"order_id", notice.OrderID, "error", err)
		}
	}
}
