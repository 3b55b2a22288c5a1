// Package money provides an exact decimal amount for prices and totals.
//
// Amounts are backed by github.com/cockroachdb/apd/v3. Floating point is
// never used for arithmetic: a cart total is always the exact sum of
// price*quantity over its items.
//
// Amount values are immutable. Every operation writes into a fresh Amount
// and never modifies its operands, so Amounts may be copied freely.
package money
