// Package dispatch fans committed order changes out to topic subscribers.
//
// The Broker keeps the topic membership table and delivers events to buffered
// subscriber channels without ever blocking. The Notifier sits between the command
// handlers and the Broker: it accepts changes without blocking the caller, resolves
// the topics of each change on a worker goroutine and hands the events to the Broker
// and to any external sinks.
//
// Delivery is best effort and at most once. Nothing is buffered for subscribers that
// are not connected.
package dispatch

import (
	"strings"

	"foodmarket/internal/core/domain/model/kernel"
)

// Topic names a subscription channel, e.g. "order:<id>".
type Topic string

const (
	customerPrefix    = "customer:"
	vendorPrefix      = "vendor:"
	vendorOwnerPrefix = "vendor-owner:"
	orderPrefix       = "order:"
)

// CustomerTopic carries changes to orders placed by the customer.
func CustomerTopic(customer kernel.Identity) Topic {
	return topic(customerPrefix, customer)
}

// VendorTopic carries changes to orders that reference the vendor record.
func VendorTopic(vendorRecord kernel.Identity) Topic {
	return topic(vendorPrefix, vendorRecord)
}

// VendorOwnerTopic carries changes to orders of the vendor owned by owner.
func VendorOwnerTopic(owner kernel.Identity) Topic {
	return topic(vendorOwnerPrefix, owner)
}

// OrderTopic is joined explicitly by clients tracking one order.
func OrderTopic(orderID kernel.Identity) Topic {
	return topic(orderPrefix, orderID)
}

// ParseOrderTopic accepts either a bare order id or a full "order:<id>" topic, as sent
// with join and leave messages. It returns "" for anything unusable.
func ParseOrderTopic(raw string) Topic {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, orderPrefix)
	return OrderTopic(kernel.NewIdentity(raw))
}

func (t Topic) String() string {
	return string(t)
}

func (t Topic) IsEmpty() bool {
	return t == ""
}

// topic builds prefix+canonical id. An empty canonical id yields the empty topic,
// which is never joined nor published to.
func topic(prefix string, id kernel.Identity) Topic {
	key := id.Canonical()
	if key == "" {
		return ""
	}
	return Topic(prefix + key)
}
