package messaging

import (
	"payment-service/src/internal/model"
	kafka "payment-service/src/pkg/kafka/confluent"
	"payment-service/src/pkg/log"
)

type PaymentProducer struct {
	TransactionCompletedProducer Producer[*model.TransactionEvent]
	SettlementCreatedProducer    Producer[*model.SettlementEvent]
	PayoutProcessedProducer      Producer[*model.PayoutEvent]
	enabled                      bool
}

func NewPaymentProducer(producer kafka.Producer, log log.Log) *PaymentProducer {
	return &PaymentProducer{
		TransactionCompletedProducer: Producer[*model.TransactionEvent]{
			Producer: producer,
			Topic:    "wallet-transaction-completed",
			Log:      log,
		},
		SettlementCreatedProducer: Producer[*model.SettlementEvent]{
			Producer: producer,
			Topic:    "settlement-created",
			Log:      log,
		},
		PayoutProcessedProducer: Producer[*model.PayoutEvent]{
			Producer: producer,
			Topic:    "payout-processed",
			Log:      log,
		},
		enabled: producer != nil,
	}
}

func (p *PaymentProducer) SendTransactionCompleted(event *model.TransactionEvent) error {
	if !p.enabled {
		return nil
	}
	return p.TransactionCompletedProducer.Send(event)
}

func (p *PaymentProducer) SendSettlementCreated(event *model.SettlementEvent) error {
	if !p.enabled {
		return nil
	}
	return p.SettlementCreatedProducer.Send(event)
}

func (p *PaymentProducer) SendPayoutProcessed(event *model.PayoutEvent) error {
	if !p.enabled {
		return nil
	}
	return p.PayoutProcessedProducer.Send(event)
}
