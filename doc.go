// Package portfolio tracks a personal stock portfolio as a set of daily
// time series reconciled against a transaction log.
//
// The ledger keeps one series of aggregate dollar values for the whole
// portfolio and one series of raw per-share quotes for each asset ever
// traded. Committing a transaction patches the suffix of both series
// from the transaction date forward, so a buy or sell recorded days
// late still lands on the right part of history. Every committed
// transaction can be undone by applying its inverse.
//
// Market data comes through the Gateway interface, backed by Yahoo
// Finance, and the whole state persists as three line-oriented record
// streams rewritten atomically on save.
package portfolio
