// Package payments provides a small payments engine that turns an ordered sequence of
// client transactions into the final state of every client account.
//
// The core functionalities include:
//   - Transactions: deposits, withdrawals, disputes, resolves and chargebacks, parsed from
//     textual records or CSV files, with amounts kept exact to 4 fractional digits.
//   - Ledger: the per-client state machine. Disputes move funds from available to held,
//     resolves move them back, chargebacks withdraw them and lock the account for good.
//   - Engine: a fixed pool of workers, each owning the clients with
//     client%workers == index. Transactions of a client are always applied in input
//     order, and no state is shared between workers.
//   - Results: collected as a single slice with Engine.Run, or received worker by worker
//     with Engine.Stream.
//
// Invalid business operations (a dispute of an unknown transaction, a withdrawal above
// the available funds, anything on a locked account) are ignored and logged. Malformed
// input aborts the run with a *ParseError.
//
// This package is the foundation of the `pay` command line tool.
package payments
