package types

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderCreem  PaymentProvider = "creem"
	PaymentProviderInner  PaymentProvider = "inner"
)

// PaymentType classifies a recorded payment by its billing cycle.
type PaymentType string

const (
	PaymentTypeSubscriptionCreate  PaymentType = "subscription_create"
	PaymentTypeSubscriptionRenewal PaymentType = "subscription_renewal"
	PaymentTypeOneTime             PaymentType = "one_time"
)

func (t PaymentType) IsSubscription() bool {
	return t == PaymentTypeSubscriptionCreate || t == PaymentTypeSubscriptionRenewal
}

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type OrderType string

const (
	OrderTypeSubscription  OrderType = "subscription"
	OrderTypeCreditPackage OrderType = "credit_package"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusExpired  OrderStatus = "expired"
	OrderStatusRefunded OrderStatus = "refunded"
)

// Terminal reports whether no further transition is modeled from the status.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Usable reports whether the subscription grants access in this status.
func (s SubscriptionStatus) Usable() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}
