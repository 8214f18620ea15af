package order

import (
	"time"

	"foodmarket/internal/core/domain/model/kernel"
)

// DeliveryLocation is the latest position reported for an order. Only the most
// recent sample is kept.
type DeliveryLocation struct {
	point      kernel.GeoPoint
	reportedBy kernel.Identity
	sampledAt  time.Time
}

func NewDeliveryLocation(point kernel.GeoPoint, reportedBy kernel.Identity, sampledAt time.Time) (DeliveryLocation, error) {
	if err := point.Validate(); err != nil {
		return DeliveryLocation{}, err
	}
	return DeliveryLocation{point: point, reportedBy: reportedBy, sampledAt: sampledAt.UTC()}, nil
}

func (l DeliveryLocation) Point() kernel.GeoPoint {
	return l.point
}

func (l DeliveryLocation) ReportedBy() kernel.Identity {
	return l.reportedBy
}

func (l DeliveryLocation) SampledAt() time.Time {
	return l.sampledAt
}
