package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

const MethodTypeBankTransfer = "BANK_TRANSFER"

var ErrUnknownMethod = errors.New("unknown payment method")

// Account is a manual transfer destination customers pay into.
type Account struct {
	Method        string   `json:"method"`
	Type          string   `json:"type"`
	AccountNumber string   `json:"accountNumber"`
	AccountHolder string   `json:"accountHolder"`
	Instructions  []string `json:"instructions,omitempty"`
}

// Quote optionally fills amount and reference placeholders in instructions.
type Quote struct {
	Amount    *decimal.Decimal
	Reference string
}
