package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"
	httpError "payment-service/src/pkg/http-error"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "test-secret"

func newWebhookFixture(t *testing.T) (*WebhookUseCase, *fakeTransactionStore, *fakeWalletStore, *fakeEvents) {
	t.Helper()

	cfg := viper.New()
	cfg.Set("paygate.webhook_secret", testWebhookSecret)
	cfg.Set("app.env", "production")

	txStore := newFakeTransactionStore()
	walletStore := newFakeWalletStore()
	events := &fakeEvents{}
	settler := NewSettler(newTestLogger(), txStore, walletStore, events)
	uc := NewWebhookUseCase(newTestLogger(), validator.New(), txStore, settler, cfg)

	return uc, txStore, walletStore, events
}

func pendingTopUp(t *testing.T, txStore *fakeTransactionStore, walletStore *fakeWalletStore, userID, reference string, amount decimal.Decimal) *entity.Transaction {
	t.Helper()

	_, err := walletStore.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)

	extRef := "EXT-" + reference
	tx := &entity.Transaction{
		ID:            "TX-" + reference,
		UserID:        userID,
		Type:          entity.TransactionTypeTopUp,
		Amount:        amount,
		Fee:           decimal.Zero,
		NetAmount:     amount,
		Status:        entity.TransactionStatusPending,
		PaymentMethod: "GATEWAY",
		Reference:     reference,
		ExternalRef:   &extRef,
	}
	require.NoError(t, txStore.Create(context.Background(), tx))
	return tx
}

func signedWebhook(reference, status string, amount decimal.Decimal) *model.WebhookRequest {
	extRef := "EXT-" + reference
	amountStr := amount.String()
	return &model.WebhookRequest{
		Reference:         reference,
		ExternalReference: extRef,
		Amount:            amountStr,
		Status:            status,
		Hash:              paygate.Signature(reference, extRef, amountStr, status, testWebhookSecret),
	}
}

func TestIngestRejectsBadSignature(t *testing.T) {
	uc, txStore, walletStore, _ := newWebhookFixture(t)
	amount := decimal.NewFromInt(10)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	request := signedWebhook(tx.Reference, "success", amount)
	request.Hash = "deadbeef"

	result := uc.Ingest(context.Background(), request)
	require.Error(t, result.Error)

	var commonErr *httpError.CommonError
	require.True(t, errors.As(result.Error, &commonErr))
	assert.Equal(t, 401, commonErr.Code)
	assert.Equal(t, entity.TransactionStatusPending, txStore.status(tx.ID))
	assert.True(t, walletStore.balance("user-1").IsZero())
}

func TestIngestSignatureBypassOutsideProduction(t *testing.T) {
	uc, txStore, walletStore, _ := newWebhookFixture(t)
	uc.Config.Set("app.env", "development")
	uc.Config.Set("paygate.skip_signature_check", true)

	amount := decimal.NewFromInt(10)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	request := signedWebhook(tx.Reference, "success", amount)
	request.Hash = "deadbeef"

	result := uc.Ingest(context.Background(), request)
	require.NoError(t, result.Error)
	assert.Equal(t, SettleOutcomeCompleted, result.Data)
}

func TestIngestBypassNeverAppliesInProduction(t *testing.T) {
	uc, txStore, walletStore, _ := newWebhookFixture(t)
	uc.Config.Set("paygate.skip_signature_check", true)

	amount := decimal.NewFromInt(10)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	request := signedWebhook(tx.Reference, "success", amount)
	request.Hash = "deadbeef"

	result := uc.Ingest(context.Background(), request)
	require.Error(t, result.Error)
	assert.Equal(t, entity.TransactionStatusPending, txStore.status(tx.ID))
}

func TestIngestCreditsWalletExactlyOnce(t *testing.T) {
	uc, txStore, walletStore, events := newWebhookFixture(t)
	amount := decimal.RequireFromString("10.00")
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	result := uc.Ingest(context.Background(), signedWebhook(tx.Reference, "success", amount))
	require.NoError(t, result.Error)
	assert.Equal(t, SettleOutcomeCompleted, result.Data)
	assert.True(t, walletStore.balance("user-1").Equal(amount))
	assert.Equal(t, entity.TransactionStatusCompleted, txStore.status(tx.ID))
	assert.Equal(t, 1, events.transactionCount())

	// Redelivery of the same confirmation must be a no-op.
	result = uc.Ingest(context.Background(), signedWebhook(tx.Reference, "success", amount))
	require.NoError(t, result.Error)
	assert.Equal(t, SettleOutcomeAlreadyHandled, result.Data)
	assert.True(t, walletStore.balance("user-1").Equal(amount))
	assert.Equal(t, 1, events.transactionCount())
}

func TestIngestFailureStatusNeverCredits(t *testing.T) {
	uc, txStore, walletStore, _ := newWebhookFixture(t)
	amount := decimal.NewFromInt(25)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	result := uc.Ingest(context.Background(), signedWebhook(tx.Reference, "failed", amount))
	require.NoError(t, result.Error)
	assert.Equal(t, SettleOutcomeFailed, result.Data)
	assert.Equal(t, entity.TransactionStatusFailed, txStore.status(tx.ID))
	assert.True(t, walletStore.balance("user-1").IsZero())
}

func TestIngestUnknownStatusStaysPending(t *testing.T) {
	uc, txStore, walletStore, _ := newWebhookFixture(t)
	amount := decimal.NewFromInt(5)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	result := uc.Ingest(context.Background(), signedWebhook(tx.Reference, "on_hold", amount))
	require.NoError(t, result.Error)
	assert.Equal(t, SettleOutcomeStillPending, result.Data)
	assert.Equal(t, entity.TransactionStatusPending, txStore.status(tx.ID))

	stored, err := txStore.FindByID(context.Background(), tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Metadata)
	assert.Contains(t, *stored.Metadata, "on_hold")
}

func TestIngestUnknownReference(t *testing.T) {
	uc, _, _, _ := newWebhookFixture(t)

	result := uc.Ingest(context.Background(), signedWebhook("TOPUP-ghost", "success", decimal.NewFromInt(1)))
	require.Error(t, result.Error)

	var commonErr *httpError.CommonError
	require.True(t, errors.As(result.Error, &commonErr))
	assert.Equal(t, 404, commonErr.Code)
}

func TestIngestRevertsClaimWhenCreditFails(t *testing.T) {
	uc, txStore, walletStore, events := newWebhookFixture(t)
	amount := decimal.NewFromInt(10)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)
	walletStore.creditErr = errors.New("db gone")

	result := uc.Ingest(context.Background(), signedWebhook(tx.Reference, "success", amount))
	require.Error(t, result.Error)

	// The claim was compensated: the row is PENDING again, nothing was
	// credited, nothing was published.
	assert.Equal(t, entity.TransactionStatusPending, txStore.status(tx.ID))
	assert.True(t, walletStore.balance("user-1").IsZero())
	assert.Equal(t, 0, events.transactionCount())

	// After the fault clears a redelivery completes normally.
	walletStore.creditErr = nil
	result = uc.Ingest(context.Background(), signedWebhook(tx.Reference, "success", amount))
	require.NoError(t, result.Error)
	assert.True(t, walletStore.balance("user-1").Equal(amount))
}

func TestWebhookAndPollerRaceCreditOnce(t *testing.T) {
	uc, txStore, walletStore, events := newWebhookFixture(t)
	amount := decimal.NewFromInt(10)
	tx := pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", amount)

	gateway := &fakeGateway{
		chargeStatusFn: func(ctx context.Context, externalRef string) (*paygate.StatusResponse, error) {
			return &paygate.StatusResponse{ExternalRef: externalRef, Status: "success"}, nil
		},
	}
	poller := NewReconciliationUseCase(newTestLogger(), txStore, gateway, uc.Settler)

	const attempts = 8
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			uc.Ingest(context.Background(), signedWebhook(tx.Reference, "success", amount))
		}()
		go func() {
			defer wg.Done()
			poller.Run(context.Background())
		}()
	}
	wg.Wait()

	assert.True(t, walletStore.balance("user-1").Equal(amount),
		"racing webhook and poller deliveries must credit exactly once, got %s", walletStore.balance("user-1"))
	assert.Equal(t, entity.TransactionStatusCompleted, txStore.status(tx.ID))
	assert.Equal(t, 1, events.transactionCount())
}
