// internal/service/fake_store_test.go
package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"
	"fintrack/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeState is everything the fake store persists.
type fakeState struct {
	nextID       int64
	wallets      map[int64]domain.Wallet
	transactions map[int64]domain.Transaction
	movements    map[int64]domain.Movement
	categories   map[int64]domain.Category
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		nextID:       s.nextID,
		wallets:      make(map[int64]domain.Wallet, len(s.wallets)),
		transactions: make(map[int64]domain.Transaction, len(s.transactions)),
		movements:    make(map[int64]domain.Movement, len(s.movements)),
		categories:   make(map[int64]domain.Category, len(s.categories)),
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	return c
}

// fakeStore is an in-memory implementation of the wallet, transaction and
// category repositories. One unit of work may be open at a time; rolling
// it back before commit restores the state captured at begin.
type fakeStore struct {
	mu       sync.Mutex
	state    fakeState
	snapshot *fakeState

	// fail, when set, is consulted before every write. A non-nil result is
	// returned from that write.
	fail func(op string, arg interface{}) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{
		nextID:       100,
		wallets:      map[int64]domain.Wallet{},
		transactions: map[int64]domain.Transaction{},
		movements:    map[int64]domain.Movement{},
		categories:   map[int64]domain.Category{},
	}}
}

func (s *fakeStore) id() int64 {
	s.state.nextID++
	return s.state.nextID
}

func (s *fakeStore) check(op string, arg interface{}) error {
	if s.fail == nil {
		return nil
	}
	return s.fail(op, arg)
}

// fakeTx is the unit-of-work handle handed out by beginTx.
type fakeTx struct {
	MockDBExecutor
	store *fakeStore
	done  bool
}

func (t *fakeTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.snapshot = nil
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	if t.store.snapshot != nil {
		t.store.state = *t.store.snapshot
		t.store.snapshot = nil
	}
	t.store.mu.Unlock()
	return nil
}

func (s *fakeStore) beginTx(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.clone()
	s.snapshot = &snap
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) runner() *TxRunner {
	return NewTxRunner(nil, s.beginTx, db.CommitTx, db.RollbackTx)
}

// --- repository.WalletRepository ---

func (s *fakeStore) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateWallet", wallet); err != nil {
		return err
	}
	wallet.ID = s.id()
	s.state.wallets[wallet.ID] = *wallet
	return nil
}

func (s *fakeStore) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.wallets[id]
	if !ok {
		return nil, util.ErrWalletNotFound
	}
	return &w, nil
}

func (s *fakeStore) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	return s.GetWalletByID(ctx, q, id)
}

func (s *fakeStore) ListWalletsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Wallet{}
	for _, w := range s.state.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) UpdateWalletName(ctx context.Context, q repository.DBExecutor, walletID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateWalletName", walletID); err != nil {
		return err
	}
	w, ok := s.state.wallets[walletID]
	if !ok {
		return util.ErrWalletNotFound
	}
	w.Name = name
	s.state.wallets[walletID] = w
	return nil
}

func (s *fakeStore) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateWalletBalance", walletID); err != nil {
		return err
	}
	w, ok := s.state.wallets[walletID]
	if !ok {
		return util.ErrWalletNotFound
	}
	w.Balance = w.Balance.Add(delta)
	s.state.wallets[walletID] = w
	return nil
}

func (s *fakeStore) DeleteWallet(ctx context.Context, q repository.DBExecutor, walletID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.wallets[walletID]; !ok {
		return util.ErrWalletNotFound
	}
	delete(s.state.wallets, walletID)
	for id, m := range s.state.movements {
		if m.WalletID == walletID {
			delete(s.state.movements, id)
		}
	}
	return nil
}

func (s *fakeStore) ListBalanceDrifts(ctx context.Context, q repository.DBExecutor) ([]domain.BalanceDrift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var drifts []domain.BalanceDrift
	for _, w := range s.state.wallets {
		ledger := s.ledgerBalanceLocked(w.ID)
		if !ledger.Equal(w.Balance) {
			drifts = append(drifts, domain.BalanceDrift{WalletID: w.ID, UserID: w.UserID, StoredBalance: w.Balance, LedgerBalance: ledger})
		}
	}
	return drifts, nil
}

func (s *fakeStore) ledgerBalanceLocked(walletID int64) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range s.state.movements {
		if m.WalletID == walletID {
			sum = sum.Add(m.SignedAmount())
		}
	}
	return sum
}

// --- repository.TransactionRepository ---

func (s *fakeStore) CreateTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateTransaction", tx); err != nil {
		return err
	}
	tx.ID = s.id()
	stored := *tx
	stored.Movements = nil
	stored.Category = nil
	s.state.transactions[tx.ID] = stored
	return nil
}

func (s *fakeStore) UpdateTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateTransaction", tx); err != nil {
		return err
	}
	if _, ok := s.state.transactions[tx.ID]; !ok {
		return util.ErrTransactionNotFound
	}
	stored := *tx
	stored.Movements = nil
	stored.Category = nil
	s.state.transactions[tx.ID] = stored
	return nil
}

func (s *fakeStore) DeleteTransaction(ctx context.Context, q repository.DBExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteTransaction", id); err != nil {
		return err
	}
	if _, ok := s.state.transactions[id]; !ok {
		return util.ErrTransactionNotFound
	}
	delete(s.state.transactions, id)
	for mid, m := range s.state.movements {
		if m.TransactionID == id {
			delete(s.state.movements, mid)
		}
	}
	return nil
}

func (s *fakeStore) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.state.transactions[id]
	if !ok {
		return nil, util.ErrTransactionNotFound
	}
	s.hydrateLocked(&tx)
	return &tx, nil
}

func (s *fakeStore) GetTransactionByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	return s.GetTransactionByID(ctx, q, id)
}

func (s *fakeStore) hydrateLocked(tx *domain.Transaction) {
	tx.Movements = nil
	for _, m := range s.state.movements {
		if m.TransactionID == tx.ID {
			if w, ok := s.state.wallets[m.WalletID]; ok {
				m.Wallet = &w
			}
			tx.Movements = append(tx.Movements, m)
		}
	}
	sort.Slice(tx.Movements, func(i, j int) bool { return tx.Movements[i].ID < tx.Movements[j].ID })
	if tx.CategoryID != nil {
		if c, ok := s.state.categories[*tx.CategoryID]; ok {
			tx.Category = &c
		}
	}
}

func (s *fakeStore) ListTransactions(ctx context.Context, q repository.DBExecutor, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.Transaction
	for _, tx := range s.state.transactions {
		if tx.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && tx.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !tx.CreatedAt.Before(*filter.To) {
			continue
		}
		s.hydrateLocked(&tx)
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]domain.Transaction{}, matched[start:end]...), total, nil
}

func (s *fakeStore) CreateMovement(ctx context.Context, q repository.DBExecutor, m *domain.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateMovement", m); err != nil {
		return err
	}
	if _, ok := s.state.wallets[m.WalletID]; !ok {
		return util.ErrWalletNotFound
	}
	m.ID = s.id()
	stored := *m
	stored.Wallet = nil
	s.state.movements[m.ID] = stored
	return nil
}

func (s *fakeStore) DeleteMovementsByTransactionID(ctx context.Context, q repository.DBExecutor, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteMovementsByTransactionID", transactionID); err != nil {
		return err
	}
	for id, m := range s.state.movements {
		if m.TransactionID == transactionID {
			delete(s.state.movements, id)
		}
	}
	return nil
}

// --- repository.CategoryRepository ---

func (s *fakeStore) CreateCategory(ctx context.Context, q repository.DBExecutor, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateCategory", c); err != nil {
		return err
	}
	c.ID = s.id()
	s.state.categories[c.ID] = *c
	return nil
}

func (s *fakeStore) GetCategoryByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.categories[id]
	if !ok {
		return nil, util.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *fakeStore) FindCategoryByName(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, name string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.categories {
		if c.UserID == userID && c.Type == txType && strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, util.ErrCategoryNotFound
}

func (s *fakeStore) ListCategories(ctx context.Context, q repository.DBExecutor, filter repository.CategoryFilter) ([]domain.Category, int64, error) {
	return nil, 0, errNotSupported
}

func (s *fakeStore) UpdateCategory(ctx context.Context, q repository.DBExecutor, c *domain.Category) error {
	return errNotSupported
}

func (s *fakeStore) DeleteCategory(ctx context.Context, q repository.DBExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.categories, id)
	return nil
}

func (s *fakeStore) ListTransactionTypes(ctx context.Context, q repository.DBExecutor) ([]domain.TransactionTypeRecord, error) {
	return nil, errNotSupported
}

// --- helpers ---

func (s *fakeStore) balance(t *testing.T, walletID int64) decimal.Decimal {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.wallets[walletID]
	require.True(t, ok, "wallet %d missing", walletID)
	return w.Balance
}

func (s *fakeStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.transactions)
}

// requireConsistent fails unless every wallet balance equals the signed sum
// of its movements and no unit of work is left open.
func (s *fakeStore) requireConsistent(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Nil(t, s.snapshot, "unit of work left open")
	for _, w := range s.state.wallets {
		ledger := s.ledgerBalanceLocked(w.ID)
		require.Truef(t, ledger.Equal(w.Balance), "wallet %d: stored %s, movements %s", w.ID, w.Balance, ledger)
	}
}
