package orders

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderCancelled     = "order.cancelled"
)

// Partition key = order number, so events for one order stay ordered.
func PartitionKey(orderNumber string) []byte { return []byte(orderNumber) }
