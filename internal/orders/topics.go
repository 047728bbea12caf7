package orders

const (
	TopicOrderCreated       = "pos.order.created"
	TopicOrderStatusChanged = "pos.order.status_changed"

	// message headers, readable without decoding the envelope
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

func Topics() []string {
	return []string{TopicOrderCreated, TopicOrderStatusChanged}
}

// Partition key = order id, so events of one order stay in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
