package economy

import "fmt"

// Transaction is the outcome of the most recent order for a resource.
type Transaction struct {
	Price  Money
	Status OrderStatus
}

// Wallet is an agent's balance plus its last transaction per resource.
// The last transaction is all the market memory an agent keeps.
type Wallet struct {
	balance Money
	last    map[Resource]Transaction
}

// NewWallet returns a wallet holding m.
func NewWallet(m Money) *Wallet {
	return &Wallet{balance: m, last: make(map[Resource]Transaction)}
}

// Balance returns the free (unlocked) balance.
func (w *Wallet) Balance() Money { return w.balance }

// Deposit adds m to the balance.
func (w *Wallet) Deposit(m Money) {
	w.balance = w.balance.Add(m)
}

// Withdraw removes m from the balance, failing with ErrNegativeBalance.
func (w *Wallet) Withdraw(m Money) error {
	next, err := w.balance.Remove(m)
	if err != nil {
		return err
	}
	w.balance = next
	return nil
}

// Empty removes and returns the whole balance.
func (w *Wallet) Empty() Money {
	m := w.balance
	w.balance = Money{}
	return m
}

// RegisterTransaction overwrites the last transaction for r.
func (w *Wallet) RegisterTransaction(r Resource, price Money, status OrderStatus) error {
	if status == StatusUnprocessed {
		return fmt.Errorf("%w: %s at %s", ErrInvalidTransactionStatus, r, price)
	}
	if w.last == nil {
		w.last = make(map[Resource]Transaction)
	}
	w.last[r] = Transaction{Price: price, Status: status}
	return nil
}

// RegisterOrder records a finished order as the last transaction.
func (w *Wallet) RegisterOrder(o *Order) error {
	return w.RegisterTransaction(o.Resource, o.Price, o.Status())
}

// LastTransaction returns the latest transaction for r; ok is false when
// the wallet has never traded r.
func (w *Wallet) LastTransaction(r Resource) (tx Transaction, ok bool) {
	tx, ok = w.last[r]
	return tx, ok
}
