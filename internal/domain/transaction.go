// internal/domain/transaction.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the type of a financial transaction.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Persisted ids of the seeded transaction_types rows.
const (
	transactionTypeIncomeID   int16 = 1
	transactionTypeExpenseID  int16 = 2
	transactionTypeTransferID int16 = 3
)

// ID returns the persisted id of the type, or 0 for an unknown type.
func (t TransactionType) ID() int16 {
	switch t {
	case TransactionTypeIncome:
		return transactionTypeIncomeID
	case TransactionTypeExpense:
		return transactionTypeExpenseID
	case TransactionTypeTransfer:
		return transactionTypeTransferID
	}
	return 0
}

// Name is the display name stored in transaction_types.
func (t TransactionType) Name() string {
	switch t {
	case TransactionTypeIncome:
		return "Income"
	case TransactionTypeExpense:
		return "Expense"
	case TransactionTypeTransfer:
		return "Transfer"
	}
	return ""
}

// Valid reports whether t is one of the three known types.
func (t TransactionType) Valid() bool { return t.ID() != 0 }

// MarshalJSON renders the type as {"id": n, "name": "..."}.
func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(TransactionTypeRecord{ID: t.ID(), Name: t.Name()})
}

// TransactionTypeFromID maps a persisted id back to the enumeration.
func TransactionTypeFromID(id int16) (TransactionType, error) {
	switch id {
	case transactionTypeIncomeID:
		return TransactionTypeIncome, nil
	case transactionTypeExpenseID:
		return TransactionTypeExpense, nil
	case transactionTypeTransferID:
		return TransactionTypeTransfer, nil
	}
	return "", fmt.Errorf("unknown transaction type id %d", id)
}

// TransactionTypeRecord is a row of the transaction_types table.
type TransactionTypeRecord struct {
	ID   int16  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Transaction represents a ledger entry owned by a user. Its effect on
// wallet balances is carried by its Movements.
type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Type       TransactionType `json:"transactionType"`
	CategoryID *int64          `json:"transactionCategoryId"`
	Amount     decimal.Decimal `json:"amount"`
	AdminFee   decimal.Decimal `json:"adminFee"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	Category  *Category  `json:"transactionCategory,omitempty"`
	Movements []Movement `json:"transactionWallets,omitempty"`
}

// NewTransaction creates a new Transaction instance. A zero createdAt means now.
func NewTransaction(userID int64, txType TransactionType, categoryID int64, amount, adminFee decimal.Decimal, createdAt time.Time) *Transaction {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	return &Transaction{
		UserID:     userID,
		Type:       txType,
		CategoryID: &categoryID,
		Amount:     amount,
		AdminFee:   adminFee,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  now,
	}
}

// IsIncome reports whether the transaction credits its source wallet.
func (t *Transaction) IsIncome() bool { return t.Type == TransactionTypeIncome }

// IsTransfer reports whether the transaction moves money between wallets.
func (t *Transaction) IsTransfer() bool { return t.Type == TransactionTypeTransfer }

// SourceAmount is the magnitude moved on the source wallet: amount plus the
// admin fee for transfers, the plain amount otherwise.
func (t *Transaction) SourceAmount() decimal.Decimal {
	if t.IsTransfer() {
		return t.Amount.Add(t.AdminFee)
	}
	return t.Amount
}

// SourceWalletID returns the wallet the transaction was booked against,
// derived from its movements. For transfers that is the outgoing side.
func (t *Transaction) SourceWalletID() (int64, bool) {
	for _, m := range t.Movements {
		if !t.IsTransfer() || !m.IsIncoming {
			return m.WalletID, true
		}
	}
	return 0, false
}

// TargetWalletID returns the receiving wallet of a transfer, if any.
func (t *Transaction) TargetWalletID() (int64, bool) {
	if !t.IsTransfer() {
		return 0, false
	}
	for _, m := range t.Movements {
		if m.IsIncoming {
			return m.WalletID, true
		}
	}
	return 0, false
}

// Movement links one Transaction to one Wallet. Amount is always the
// non-negative magnitude; IsIncoming carries the direction.
type Movement struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID int64           `db:"transaction_id" json:"transactionId"`
	WalletID      int64           `db:"wallet_id" json:"walletId"`
	IsIncoming    bool            `db:"is_incoming" json:"isIncoming"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`

	Wallet *Wallet `db:"-" json:"wallet,omitempty"`
}

// SignedAmount is the movement's contribution to its wallet's balance.
func (m Movement) SignedAmount() decimal.Decimal {
	if m.IsIncoming {
		return m.Amount
	}
	return m.Amount.Neg()
}
