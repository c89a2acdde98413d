package payments

const (
	TopicOrderCreated     = "checkout.order.created"
	TopicPaymentVerified  = "checkout.payment.verified"
	TopicPaymentRejected  = "checkout.payment.rejected"
	TopicPaymentAbandoned = "checkout.payment.abandoned"
)

// Topics lists every topic the checkout service publishes to.
var Topics = []string{TopicOrderCreated, TopicPaymentVerified, TopicPaymentRejected, TopicPaymentAbandoned}

// Partition key = order_id, so all events of one attempt stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
