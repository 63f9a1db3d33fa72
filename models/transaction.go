package models

import "time"

// TransactionType represents the ledger entry types matching the ENUM in the DB.
type TransactionType string

const (
	TransactionDeposit          TransactionType = "deposit"
	TransactionWithdraw         TransactionType = "withdraw"
	TransactionTransferSent     TransactionType = "transfer_sent"
	TransactionTransferReceived TransactionType = "transfer_received"
	TransactionTournamentFee    TransactionType = "tournament_fee"
	TransactionTournamentPrize  TransactionType = "tournament_prize"
	TransactionAdminDeduction   TransactionType = "admin_deduction"
	TransactionAdminAddition    TransactionType = "admin_addition"
)

// Transaction is an append-only ledger record. Balance is the wallet balance
// snapshot after this transaction was applied. Records are immutable once
// created; the canonical read order is created_at descending.
type Transaction struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	Type            TransactionType `json:"type"`
	Amount          float64         `json:"amount"`
	Balance         float64         `json:"balance"`
	Description     string          `json:"description"`
	RelatedUserID   *int            `json:"related_user_id,omitempty"`
	RelatedUserName *string         `json:"related_user_name,omitempty"`
	TournamentID    *int            `json:"tournament_id,omitempty"`
	TournamentName  *string         `json:"tournament_name,omitempty"`
	BankDetails     *string         `json:"bank_details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
