package ports

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
)

// ChangePublisher hands committed order changes to the dispatch layer. Publish never
// blocks on delivery and never fails the caller: delivery is best effort.
type ChangePublisher interface {
	Publish(ctx context.Context, change order.Change)
}
