package fulfillment

const (
	TopicPaymentConfirmed = "payment.confirmed"
	TopicOrderPaid        = "order.paid"
	TopicOrderRejected    = "order.rejected"
)

// Partition key = order_id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
