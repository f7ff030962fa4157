package usecase

import "time"

// Published to Kafka whenever a staff action transitions an order.
type OrderStatusChangedMsg struct {
	OrderID string    `json:"orderId"`
	UserID  string    `json:"userId,omitempty"`
	Status  string    `json:"status"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

// Published to RabbitMQ when money was captured but the order write failed.
// Everything an operator needs for manual reconciliation is in the payload.
type ReconcileAlertMsg struct {
	IntentID         string    `json:"intentId"`
	SettlementRef    string    `json:"settlementRef"`
	UserID           string    `json:"userId,omitempty"`
	UserEmail        string    `json:"userEmail"`
	AmountMinorUnits int64     `json:"amountMinorUnits"`
	Currency         string    `json:"currency"`
	Reason           string    `json:"reason"`
	At               time.Time `json:"at"`
}
