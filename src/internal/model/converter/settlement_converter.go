package converter

import (
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
)

func SettlementToResponse(s *entity.Settlement) *model.SettlementResponse {
	return &model.SettlementResponse{
		ID:          s.ID,
		DriverID:    s.DriverID,
		Amount:      s.Amount,
		Fee:         s.Fee,
		NetAmount:   s.NetAmount,
		Period:      string(s.Period),
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Status:      string(s.Status),
		Reference:   s.Reference,
		PaidAt:      s.PaidAt,
	}
}

func SettlementToEvent(s *entity.Settlement) *model.SettlementEvent {
	return &model.SettlementEvent{
		ID:          s.ID,
		DriverID:    s.DriverID,
		NetAmount:   s.NetAmount,
		Period:      string(s.Period),
		PeriodStart: s.PeriodStart,
		Reference:   s.Reference,
	}
}

func SettlementToPayoutEvent(s *entity.Settlement, paymentRef string) *model.PayoutEvent {
	return &model.PayoutEvent{
		SettlementID:     s.ID,
		DriverID:         s.DriverID,
		NetAmount:        s.NetAmount,
		Status:           string(s.Status),
		PaymentReference: paymentRef,
		At:               time.Now().UTC(),
	}
}
