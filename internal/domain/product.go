package domain

import "github.com/shopspring/decimal"

// Product is a sellable item. StockQuantity is mutated only through the
// inventory ledger's reserve/release operations and admin edits.
type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}
