package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model/converter"
	"payment-service/src/internal/repository"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"
)

type SettleOutcome string

const (
	SettleOutcomeCompleted      SettleOutcome = "COMPLETED"
	SettleOutcomeFailed         SettleOutcome = "FAILED"
	SettleOutcomeAlreadyHandled SettleOutcome = "ALREADY_HANDLED"
	SettleOutcomeStillPending   SettleOutcome = "STILL_PENDING"
)

// Settler applies a gateway-reported status to a pending transaction. The
// webhook ingestor and the reconciliation poller both go through here, so the
// conditional claim decides which of the two racing paths mutates the wallet:
// never both.
type Settler struct {
	Log                   log.Log
	TransactionRepository repository.TransactionStore
	WalletRepository      repository.WalletStore
	PaymentProducer       PaymentEvents
}

func NewSettler(
	logger log.Log,
	transactionRepository repository.TransactionStore,
	walletRepository repository.WalletStore,
	paymentProducer PaymentEvents,
) *Settler {
	return &Settler{
		Log:                   logger,
		TransactionRepository: transactionRepository,
		WalletRepository:      walletRepository,
		PaymentProducer:       paymentProducer,
	}
}

func (s *Settler) Apply(ctx context.Context, tx *entity.Transaction, gatewayStatus, source string) (SettleOutcome, error) {
	if tx.Status.IsTerminal() {
		return SettleOutcomeAlreadyHandled, nil
	}

	switch {
	case paygate.IsSuccessStatus(gatewayStatus):
		return s.complete(ctx, tx, source)

	case paygate.IsFailureStatus(gatewayStatus):
		claimed, err := s.TransactionRepository.Claim(ctx, tx.ID, entity.TransactionStatusPending, entity.TransactionStatusFailed)
		if err != nil {
			return "", err
		}
		if !claimed {
			s.Log.Info("settler", "lost claim race, transaction already handled", source, tx.Reference)
			return SettleOutcomeAlreadyHandled, nil
		}
		s.Log.Info("settler", fmt.Sprintf("transaction failed at gateway with status %s", gatewayStatus), source, tx.Reference)
		return SettleOutcomeFailed, nil

	default:
		meta, _ := json.Marshal(map[string]string{
			"gateway_status": gatewayStatus,
			"seen_at":        time.Now().UTC().Format(time.RFC3339),
			"source":         source,
		})
		if err := s.TransactionRepository.UpdateMetadata(ctx, tx.ID, string(meta)); err != nil {
			return "", err
		}
		return SettleOutcomeStillPending, nil
	}
}

func (s *Settler) complete(ctx context.Context, tx *entity.Transaction, source string) (SettleOutcome, error) {
	claimed, err := s.TransactionRepository.Claim(ctx, tx.ID, entity.TransactionStatusPending, entity.TransactionStatusCompleted)
	if err != nil {
		return "", err
	}
	if !claimed {
		// The other path (webhook vs poller) won; that is the expected outcome
		// of the race, not an error.
		s.Log.Info("settler", "lost claim race, transaction already handled", source, tx.Reference)
		return SettleOutcomeAlreadyHandled, nil
	}

	if _, err := s.WalletRepository.GetOrCreate(ctx, tx.UserID); err != nil {
		s.revert(ctx, tx, source, err)
		return "", err
	}

	var creditErr error
	if tx.Type == entity.TransactionTypeTopUp {
		creditErr = s.WalletRepository.CreditTopUp(ctx, tx.UserID, tx.NetAmount)
	} else {
		creditErr = s.WalletRepository.Credit(ctx, tx.UserID, tx.NetAmount)
	}
	if creditErr != nil {
		s.revert(ctx, tx, source, creditErr)
		return "", creditErr
	}

	tx.Status = entity.TransactionStatusCompleted
	event := converter.TransactionToEvent(tx, source)
	if err := s.PaymentProducer.SendTransactionCompleted(event); err != nil {
		s.Log.Error("settler", fmt.Sprintf("failed to publish transaction completed event: %v", err), source, tx.Reference)
	}

	return SettleOutcomeCompleted, nil
}

// revert compensates a won claim whose wallet credit failed. Flipping the row
// back to PENDING reopens a short window in which another caller can re-claim
// before this write lands; that window is an accepted risk of the two-step
// protocol and every occurrence is logged.
func (s *Settler) revert(ctx context.Context, tx *entity.Transaction, source string, cause error) {
	reverted, err := s.TransactionRepository.Claim(ctx, tx.ID, entity.TransactionStatusCompleted, entity.TransactionStatusPending)
	if err != nil || !reverted {
		s.Log.Error("settler",
			fmt.Sprintf("CREDIT FAILED AND REVERT DID NOT LAND (revert err: %v), transaction needs manual review", err),
			source, tx.Reference)
		return
	}
	s.Log.Error("settler",
		fmt.Sprintf("wallet credit failed, transaction reverted to PENDING for retry: %v", cause),
		source, utils.ConvertString(tx))
}
