package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/gateway/paygate"
	"payment-service/src/internal/model"
	"payment-service/src/internal/repository"
	"payment-service/src/pkg/log"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func newTestLogger() log.Log {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return log.Log{AppName: "test", LogLevel: 3, Logger: l}
}

// newTestRedis returns a client pointing nowhere; cache calls fail and the
// code under test must treat that as non-fatal.
func newTestRedis() redis.UniversalClient {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 10 * time.Millisecond})
}

type fakeWalletStore struct {
	mu        sync.Mutex
	wallets   map[string]*entity.Wallet
	creditErr error
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{wallets: map[string]*entity.Wallet{}}
}

func (s *fakeWalletStore) GetOrCreate(ctx context.Context, userID string) (*entity.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		w = &entity.Wallet{ID: "W-" + userID, UserID: userID, Balance: decimal.Zero, Currency: "USD"}
		s.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

func (s *fakeWalletStore) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	return s.add(userID, amount, false)
}

func (s *fakeWalletStore) CreditTopUp(ctx context.Context, userID string, amount decimal.Decimal) error {
	return s.add(userID, amount, true)
}

func (s *fakeWalletStore) add(userID string, amount decimal.Decimal, topUp bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditErr != nil {
		return s.creditErr
	}
	w, ok := s.wallets[userID]
	if !ok {
		return repository.ErrNotFound
	}
	w.Balance = w.Balance.Add(amount)
	if topUp {
		now := time.Now().UTC()
		w.LastTopUpAt = &now
	}
	return nil
}

func (s *fakeWalletStore) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if w.Balance.LessThan(amount) {
		return repository.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

func (s *fakeWalletStore) balance(userID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[userID]; ok {
		return w.Balance
	}
	return decimal.Zero
}

type fakeTransactionStore struct {
	mu  sync.Mutex
	byID map[string]*entity.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{byID: map[string]*entity.Transaction{}}
}

func (s *fakeTransactionStore) Create(ctx context.Context, tx *entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Reference == tx.Reference {
			return repository.ErrDuplicateReference
		}
	}
	cp := *tx
	cp.CreatedAt = time.Now().UTC()
	s.byID[tx.ID] = &cp
	return nil
}

func (s *fakeTransactionStore) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *fakeTransactionStore) FindByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.byID {
		if tx.Reference == reference {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeTransactionStore) Claim(ctx context.Context, id string, from, to entity.TransactionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byID[id]
	if !ok || tx.Status != from {
		return false, nil
	}
	tx.Status = to
	return true, nil
}

func (s *fakeTransactionStore) SetExternalRef(ctx context.Context, id, externalRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	tx.ExternalRef = &externalRef
	return nil
}

func (s *fakeTransactionStore) UpdateMetadata(ctx context.Context, id, metadata string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	tx.Metadata = &metadata
	return nil
}

func (s *fakeTransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Transaction
	for _, tx := range s.byID {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) FindPendingExternal(ctx context.Context) ([]entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Transaction
	for _, tx := range s.byID {
		if tx.Status == entity.TransactionStatusPending && tx.ExternalRef != nil && *tx.ExternalRef != "" {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) status(id string) entity.TransactionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id].Status
}

type fakeQrStore struct {
	mu       sync.Mutex
	byCode   map[string]*entity.QrPaymentSession
	wallets  *fakeWalletStore
	drivers  *fakeDriverStore
	legs     []entity.Transaction
}

func newFakeQrStore(wallets *fakeWalletStore, drivers *fakeDriverStore) *fakeQrStore {
	return &fakeQrStore{byCode: map[string]*entity.QrPaymentSession{}, wallets: wallets, drivers: drivers}
}

func (s *fakeQrStore) Create(ctx context.Context, session *entity.QrPaymentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.byCode[session.QrCode] = &cp
	return nil
}

func (s *fakeQrStore) FindByCode(ctx context.Context, code string) (*entity.QrPaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byCode[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *fakeQrStore) Redeem(ctx context.Context, session *entity.QrPaymentSession, payerID string, debitLeg, creditLeg *entity.Transaction) error {
	s.mu.Lock()
	stored, ok := s.byCode[session.QrCode]
	if !ok {
		s.mu.Unlock()
		return repository.ErrNotFound
	}
	if stored.IsUsed {
		s.mu.Unlock()
		return repository.ErrAlreadyUsed
	}
	stored.IsUsed = true
	s.mu.Unlock()

	if err := s.wallets.Debit(ctx, payerID, stored.Amount); err != nil {
		s.mu.Lock()
		stored.IsUsed = false
		s.mu.Unlock()
		return err
	}
	if err := s.wallets.Credit(ctx, stored.DriverID, stored.Amount); err != nil {
		return err
	}

	s.mu.Lock()
	now := time.Now().UTC()
	stored.UsedBy = &payerID
	stored.UsedAt = &now
	s.legs = append(s.legs, *debitLeg, *creditLeg)
	s.mu.Unlock()

	s.drivers.addEarnings(stored.DriverID, stored.Amount)
	return nil
}

func (s *fakeQrStore) legCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.legs)
}

type fakeSettlementStore struct {
	mu    sync.Mutex
	byID  map[string]*entity.Settlement
	keys  map[string]bool
}

func newFakeSettlementStore() *fakeSettlementStore {
	return &fakeSettlementStore{byID: map[string]*entity.Settlement{}, keys: map[string]bool{}}
}

func settlementKey(s *entity.Settlement) string {
	return fmt.Sprintf("%s|%s|%s", s.DriverID, s.Period, s.PeriodStart.Format(time.RFC3339))
}

func (s *fakeSettlementStore) Create(ctx context.Context, settlement *entity.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := settlementKey(settlement)
	if s.keys[key] {
		return repository.ErrDuplicateSettlement
	}
	s.keys[key] = true
	cp := *settlement
	s.byID[settlement.ID] = &cp
	return nil
}

func (s *fakeSettlementStore) FindByID(ctx context.Context, id string) (*entity.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settlement, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *settlement
	return &cp, nil
}

func (s *fakeSettlementStore) Claim(ctx context.Context, id string, from, to entity.SettlementStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settlement, ok := s.byID[id]
	if !ok || settlement.Status != from {
		return false, nil
	}
	settlement.Status = to
	return true, nil
}

func (s *fakeSettlementStore) SetOutcome(ctx context.Context, id string, status entity.SettlementStatus, paymentRef, failReason *string, paidAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settlement, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	settlement.Status = status
	settlement.PaymentRef = paymentRef
	settlement.FailReason = failReason
	settlement.PaidAt = paidAt
	return nil
}

func (s *fakeSettlementStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

type fakeRideStore struct {
	totals map[string]decimal.Decimal
	counts map[string]int
}

func newFakeRideStore() *fakeRideStore {
	return &fakeRideStore{totals: map[string]decimal.Decimal{}, counts: map[string]int{}}
}

func (s *fakeRideStore) SumCompletedFares(ctx context.Context, driverID string, start, end time.Time) (decimal.Decimal, int, error) {
	total, ok := s.totals[driverID]
	if !ok {
		return decimal.Zero, 0, nil
	}
	return total, s.counts[driverID], nil
}

type fakeDriverStore struct {
	mu      sync.Mutex
	byID    map[string]*entity.Driver
}

func newFakeDriverStore() *fakeDriverStore {
	return &fakeDriverStore{byID: map[string]*entity.Driver{}}
}

func (s *fakeDriverStore) put(d *entity.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[d.DriverID] = d
}

func (s *fakeDriverStore) FindByID(ctx context.Context, driverID string) (*entity.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDriverStore) FindVerified(ctx context.Context) ([]entity.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Driver
	for _, d := range s.byID {
		if d.IsVerified {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDriverStore) addEarnings(driverID string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.byID[driverID]; ok {
		d.TotalEarnings = d.TotalEarnings.Add(amount)
	}
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []entity.AuditLog
}

func (s *fakeAuditStore) Append(ctx context.Context, log *entity.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *log)
	return nil
}

func (s *fakeAuditStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeGateway struct {
	createChargeFn func(ctx context.Context, req *paygate.ChargeRequest) (*paygate.ChargeResponse, error)
	chargeStatusFn func(ctx context.Context, externalRef string) (*paygate.StatusResponse, error)
	sendPayoutFn   func(ctx context.Context, req *paygate.PayoutRequest) (*paygate.PayoutResponse, error)
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req *paygate.ChargeRequest) (*paygate.ChargeResponse, error) {
	if g.createChargeFn == nil {
		return &paygate.ChargeResponse{ExternalRef: "EXT-" + req.Reference, Status: "pending", CheckoutURL: "https://pay.example/" + req.Reference}, nil
	}
	return g.createChargeFn(ctx, req)
}

func (g *fakeGateway) ChargeStatus(ctx context.Context, externalRef string) (*paygate.StatusResponse, error) {
	if g.chargeStatusFn == nil {
		return &paygate.StatusResponse{ExternalRef: externalRef, Status: "pending"}, nil
	}
	return g.chargeStatusFn(ctx, externalRef)
}

func (g *fakeGateway) SendPayout(ctx context.Context, req *paygate.PayoutRequest) (*paygate.PayoutResponse, error) {
	if g.sendPayoutFn == nil {
		return &paygate.PayoutResponse{TransactionID: "GW-" + req.Reference, Status: "completed"}, nil
	}
	return g.sendPayoutFn(ctx, req)
}

type fakeEvents struct {
	mu           sync.Mutex
	transactions []*model.TransactionEvent
	settlements  []*model.SettlementEvent
	payouts      []*model.PayoutEvent
}

func (f *fakeEvents) SendTransactionCompleted(event *model.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, event)
	return nil
}

func (f *fakeEvents) SendSettlementCreated(event *model.SettlementEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settlements = append(f.settlements, event)
	return nil
}

func (f *fakeEvents) SendPayoutProcessed(event *model.PayoutEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payouts = append(f.payouts, event)
	return nil
}

func (f *fakeEvents) transactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactions)
}
