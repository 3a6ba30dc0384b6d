package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderNotifier records order lifecycle events in the application log. It is
// the hook where confirmation emails or fulfilment feeds attach.
type OrderNotifier struct {
	logger *zap.Logger
}

func NewOrderNotifier(logger *zap.Logger) *OrderNotifier {
	return &OrderNotifier{logger: logger.Named("orders")}
}

func (n *OrderNotifier) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderPaymentStatusChanged,
	}
}

func (n *OrderNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		n.logger.Info("order placed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("user_id", e.UserID.String()),
			zap.String("total", e.TotalAmount.StringFixed(2)+" "+string(e.Currency)),
			zap.String("payment_mode", string(e.PaymentMode)),
			zap.Int("lines", e.LineCount),
		)
	case *order.OrderStatusChangedEvent:
		n.logger.Info("order status changed",
			zap.String("order_number", e.OrderNumber),
			zap.String("from", string(e.OldStatus)),
			zap.String("to", string(e.NewStatus)),
			zap.String("reason", e.Reason),
		)
	case *order.OrderPaymentStatusChangedEvent:
		n.logger.Info("order payment status changed",
			zap.String("order_number", e.OrderNumber),
			zap.String("from", string(e.OldStatus)),
			zap.String("to", string(e.NewStatus)),
		)
	default:
		n.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*OrderNotifier)(nil)
