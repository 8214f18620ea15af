package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// TopicResolver computes the topics a change is published to: the customer topic, the
// vendor and vendor-owner topics of every vendor referenced by the items, and the
// order topic.
type TopicResolver struct {
	vendors ports.VendorDirectory
	logger  *slog.Logger
}

func NewTopicResolver(vendors ports.VendorDirectory, logger *slog.Logger) *TopicResolver {
	return &TopicResolver{
		vendors: vendors,
		logger:  logger.With("component", "dispatch-topics"),
	}
}

// Topics never fails: a vendor reference that cannot be resolved still gets its own
// vendor topic, and lookup errors are logged.
func (r *TopicResolver) Topics(ctx context.Context, change order.Change) []Topic {
	seen := make(map[Topic]struct{})
	out := make([]Topic, 0, 2+2*len(change.VendorRefs))
	add := func(t Topic) {
		if t.IsEmpty() {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	add(CustomerTopic(change.CustomerID))
	for _, ref := range change.VendorRefs {
		v, err := r.vendors.FindByRef(ctx, ref)
		if err != nil {
			if !errors.Is(err, errs.ErrObjectNotFound) {
				r.logger.Error("failed to resolve vendor reference", "vendorRef", ref, "error", err)
			}
			add(VendorTopic(ref))
			continue
		}
		add(VendorTopic(v.ID().Identity()))
		add(VendorOwnerTopic(v.OwnerID()))
	}
	add(OrderTopic(change.OrderID.Identity()))

	return out
}

// HomeTopics returns the topics an authenticated principal is subscribed to on
// connect: its customer topic, the vendor and vendor-owner topics of the vendor it
// owns, and the vendor topics of every roster it is on.
func (r *TopicResolver) HomeTopics(ctx context.Context, principal kernel.Identity) ([]Topic, error) {
	topics := make([]Topic, 0, 3)
	if t := CustomerTopic(principal); !t.IsEmpty() {
		topics = append(topics, t)
	}

	owned, err := r.vendors.GetByOwner(ctx, principal)
	switch {
	case err == nil:
		topics = append(topics, VendorTopic(owned.ID().Identity()), VendorOwnerTopic(owned.OwnerID()))
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, err
	}

	rostered, err := r.vendors.ListByRosterMember(ctx, principal)
	if err != nil {
		return nil, err
	}
	for _, v := range rostered {
		t := VendorTopic(v.ID().Identity())
		if !slices.Contains(topics, t) {
			topics = append(topics, t)
		}
	}
	return topics, nil
}
