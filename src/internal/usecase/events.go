package usecase

import "payment-service/src/internal/model"

// PaymentEvents is what usecases need from the kafka gateway.
type PaymentEvents interface {
	SendTransactionCompleted(event *model.TransactionEvent) error
	SendSettlementCreated(event *model.SettlementEvent) error
	SendPayoutProcessed(event *model.PayoutEvent) error
}
