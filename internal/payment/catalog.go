package payment

import (
	"sort"
	"strings"
)

// Catalog holds the configured transfer accounts keyed by upper-case method.
type Catalog struct {
	accounts map[string]Account
	order    []string
}

// NewCatalog builds a catalog from METHOD -> account number pairs.
func NewCatalog(accounts map[string]string, holder string) *Catalog {
	c := &Catalog{accounts: make(map[string]Account, len(accounts))}

	for method, number := range accounts {
		key := strings.ToUpper(strings.TrimSpace(method))
		if key == "" {
			continue
		}
		c.accounts[key] = Account{
			Method:        key,
			Type:          MethodTypeBankTransfer,
			AccountNumber: strings.TrimSpace(number),
			AccountHolder: holder,
		}
		c.order = append(c.order, key)
	}
	sort.Strings(c.order)

	return c
}

// Validate resolves method case-insensitively to its canonical name.
func (c *Catalog) Validate(method string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(method))
	if _, ok := c.accounts[key]; !ok {
		return "", ErrUnknownMethod
	}
	return key, nil
}

// RequiresProof reports whether checkout must carry a payment proof for
// method. Every configured method is a manual transfer, so it always does.
func (c *Catalog) RequiresProof(method string) bool {
	acc, ok := c.accounts[strings.ToUpper(strings.TrimSpace(method))]
	return !ok || acc.Type == MethodTypeBankTransfer
}

// Methods lists every account with instructions rendered for q.
func (c *Catalog) Methods(q Quote) []Account {
	out := make([]Account, 0, len(c.order))
	for _, key := range c.order {
		acc := c.accounts[key]

		vars := InstructionVars{
			"method":         acc.Method,
			"account_number": acc.AccountNumber,
			"account_holder": acc.AccountHolder,
		}
		if q.Amount != nil {
			vars["amount"] = FormatIDR(*q.Amount)
		}
		if q.Reference != "" {
			vars["reference"] = q.Reference
		}

		acc.Instructions = InjectVariables(GetInstructions(acc.Type), vars)
		out = append(out, acc)
	}
	return out
}
