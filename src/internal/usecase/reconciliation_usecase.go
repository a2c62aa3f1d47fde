package usecase

import (
	"context"
	"fmt"

	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"
	"payment-service/src/internal/repository"
	httpError "payment-service/src/pkg/http-error"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/hibiken/asynq"
)

// ReconciliationUseCase re-queries the gateway for every transaction still
// PENDING with a poll handle, recovering confirmations whose webhooks were
// lost. It runs the same settle path as the webhook ingestor, so the two can
// race safely.
type ReconciliationUseCase struct {
	Log                   log.Log
	TransactionRepository repository.TransactionStore
	Gateway               paygate.Gateway
	Settler               *Settler
}

func NewReconciliationUseCase(
	logger log.Log,
	transactionRepository repository.TransactionStore,
	gateway paygate.Gateway,
	settler *Settler,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		Log:                   logger,
		TransactionRepository: transactionRepository,
		Gateway:               gateway,
		Settler:               settler,
	}
}

func (c *ReconciliationUseCase) Run(ctx context.Context) utils.Result {
	var result utils.Result

	pending, err := c.TransactionRepository.FindPendingExternal(ctx)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = fmt.Sprintf("failed to list pending transactions: %v", err)
		result.Error = errObj
		c.Log.Error("reconciliation-usecase", errObj.Message, "Run", "")
		return result
	}

	summary := model.ReconciliationSummary{Checked: len(pending)}
	for i := range pending {
		tx := &pending[i]

		status, err := c.Gateway.ChargeStatus(ctx, *tx.ExternalRef)
		if err != nil {
			// Unreachable gateway leaves the row PENDING; the next pass
			// retries. A timeout is never treated as success.
			summary.Errors++
			c.Log.Error("reconciliation-usecase", fmt.Sprintf("status poll failed: %v", err), "Run", tx.Reference)
			continue
		}

		outcome, err := c.Settler.Apply(ctx, tx, status.Status, "reconciliation")
		if err != nil {
			summary.Errors++
			c.Log.Error("reconciliation-usecase", fmt.Sprintf("settle failed: %v", err), "Run", tx.Reference)
			continue
		}

		switch outcome {
		case SettleOutcomeCompleted:
			summary.Completed++
		case SettleOutcomeFailed:
			summary.Failed++
		case SettleOutcomeStillPending:
			summary.StillPending++
		}
	}

	c.Log.Info("reconciliation-usecase",
		fmt.Sprintf("pass done: %d checked, %d completed, %d failed, %d still pending, %d errors",
			summary.Checked, summary.Completed, summary.Failed, summary.StillPending, summary.Errors),
		"Run", "")
	result.Data = summary

	return result
}

// HandleReconcileTask is the asynq entry point for the scheduled pass.
func (c *ReconciliationUseCase) HandleReconcileTask(ctx context.Context, t *asynq.Task) error {
	result := c.Run(ctx)
	return result.Error
}
