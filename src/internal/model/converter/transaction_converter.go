package converter

import (
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
)

func TransactionToResponse(tx *entity.Transaction) *model.TransactionResponse {
	return &model.TransactionResponse{
		ID:            tx.ID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		NetAmount:     tx.NetAmount,
		Status:        string(tx.Status),
		PaymentMethod: tx.PaymentMethod,
		Reference:     tx.Reference,
		CreatedAt:     tx.CreatedAt,
	}
}

func TransactionToEvent(tx *entity.Transaction, source string) *model.TransactionEvent {
	return &model.TransactionEvent{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Type:      string(tx.Type),
		Status:    string(tx.Status),
		Amount:    tx.Amount,
		NetAmount: tx.NetAmount,
		Reference: tx.Reference,
		Source:    source,
		At:        time.Now().UTC(),
	}
}

func WalletToBalanceResponse(w *entity.Wallet) *model.BalanceResponse {
	return &model.BalanceResponse{
		UserID:      w.UserID,
		Balance:     w.Balance,
		Currency:    w.Currency,
		LastTopUpAt: w.LastTopUpAt,
	}
}
