package usecase

import (
	"context"
	"errors"
	"testing"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalletFixture(gateway paygate.Gateway) (*WalletUseCase, *fakeTransactionStore, *fakeWalletStore) {
	txStore := newFakeTransactionStore()
	walletStore := newFakeWalletStore()
	uc := NewWalletUseCase(newTestLogger(), validator.New(), walletStore, txStore, gateway, viper.New())
	return uc, txStore, walletStore
}

func TestTopUpCreatesPendingTransaction(t *testing.T) {
	uc, txStore, walletStore := newWalletFixture(&fakeGateway{})

	result := uc.TopUp(context.Background(), &model.TopUpRequest{
		UserID:        "user-1",
		Amount:        decimal.RequireFromString("10.00"),
		PaymentMethod: "GATEWAY",
	})
	require.NoError(t, result.Error)

	response, ok := result.Data.(*model.TopUpResponse)
	require.True(t, ok)
	assert.Equal(t, string(entity.TransactionStatusPending), response.Status)
	assert.NotEmpty(t, response.CheckoutURL)
	assert.NotEmpty(t, response.ExternalRef)

	// No money moves at initiation time.
	assert.True(t, walletStore.balance("user-1").IsZero())

	tx, err := txStore.FindByReference(context.Background(), response.Reference)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, tx.Status)
	require.NotNil(t, tx.ExternalRef)
	assert.Equal(t, response.ExternalRef, *tx.ExternalRef)
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	uc, _, _ := newWalletFixture(&fakeGateway{})

	result := uc.TopUp(context.Background(), &model.TopUpRequest{
		UserID:        "user-1",
		Amount:        decimal.NewFromInt(-5),
		PaymentMethod: "GATEWAY",
	})
	require.Error(t, result.Error)
}

func TestTopUpGatewayDownFailsTheRow(t *testing.T) {
	gateway := &fakeGateway{
		createChargeFn: func(ctx context.Context, req *paygate.ChargeRequest) (*paygate.ChargeResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	uc, txStore, walletStore := newWalletFixture(gateway)

	result := uc.TopUp(context.Background(), &model.TopUpRequest{
		UserID:        "user-1",
		Amount:        decimal.NewFromInt(10),
		PaymentMethod: "GATEWAY",
	})
	require.Error(t, result.Error)

	// The user sees an explicit FAILED row rather than a stuck PENDING one.
	txs, err := txStore.ListByUser(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionStatusFailed, txs[0].Status)
	assert.True(t, walletStore.balance("user-1").IsZero())
}

func TestTopUpLifecycleConservation(t *testing.T) {
	txStore := newFakeTransactionStore()
	walletStore := newFakeWalletStore()
	events := &fakeEvents{}
	settler := NewSettler(newTestLogger(), txStore, walletStore, events)

	cfg := viper.New()
	cfg.Set("paygate.webhook_secret", testWebhookSecret)
	cfg.Set("app.env", "production")

	walletUC := NewWalletUseCase(newTestLogger(), validator.New(), walletStore, txStore, &fakeGateway{}, viper.New())
	webhookUC := NewWebhookUseCase(newTestLogger(), validator.New(), txStore, settler, cfg)

	amount := decimal.RequireFromString("10.00")
	topUpResult := walletUC.TopUp(context.Background(), &model.TopUpRequest{
		UserID:        "user-1",
		Amount:        amount,
		PaymentMethod: "GATEWAY",
	})
	require.NoError(t, topUpResult.Error)
	response := topUpResult.Data.(*model.TopUpResponse)

	extRef := response.ExternalRef
	amountStr := amount.String()
	ingestResult := webhookUC.Ingest(context.Background(), &model.WebhookRequest{
		Reference:         response.Reference,
		ExternalReference: extRef,
		Amount:            amountStr,
		Status:            "success",
		Hash:              paygate.Signature(response.Reference, extRef, amountStr, "success", testWebhookSecret),
	})
	require.NoError(t, ingestResult.Error)

	// $0 wallet plus a $10 confirmed top-up is exactly $10.
	assert.True(t, walletStore.balance("user-1").Equal(amount))

	balanceResult := walletUC.GetBalance(context.Background(), "user-1")
	require.NoError(t, balanceResult.Error)
	balance := balanceResult.Data.(*model.BalanceResponse)
	assert.True(t, balance.Balance.Equal(amount))
	assert.NotNil(t, balance.LastTopUpAt)
}

func TestListTransactionsClampsLimit(t *testing.T) {
	uc, txStore, walletStore := newWalletFixture(&fakeGateway{})
	pendingTopUp(t, txStore, walletStore, "user-1", "TOPUP-1", decimal.NewFromInt(1))

	result := uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{
		UserID: "user-1",
		Limit:  100000,
		Offset: -3,
	})
	require.NoError(t, result.Error)

	responses, ok := result.Data.([]*model.TransactionResponse)
	require.True(t, ok)
	assert.Len(t, responses, 1)
}
