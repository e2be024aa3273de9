package domain

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed:  {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentAccount PaymentMethod = "account"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentAccount
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Cash-on-delivery orders wait for settlement; account orders are invoiced
// against the credit line immediately.
func PaymentStatusFor(m PaymentMethod) PaymentStatus {
	if m == PaymentAccount {
		return PaymentCompleted
	}
	return PaymentPending
}
