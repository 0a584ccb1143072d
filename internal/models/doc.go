// Package models defines the core domain models for Spiltzee.
//
// # Model Overview
//
//   - User: a registered account (profile row in the hosted backend)
//   - Expense: a personal expense owned by one user
//   - Group: a named collection of members who share expenses
//   - GroupMember: one user's membership in a group
//   - GroupExpense: a shared expense paid by one member of a group
//   - Split: one member's assigned share of a GroupExpense total
//   - Settlement: a recorded payment between two members clearing debt
//
// Balances are deliberately NOT a stored model: a member's net position is
// derived on demand from GroupExpense + Split + Settlement sets (see the
// calculator package). Persisting balances would create a second source of
// truth that can drift from the rows it was computed from.
//
// # Design Principles
//
//  1. **Rows, not objects**: every model maps 1:1 onto a table in the hosted
//     backend; JSON tags are the column names.
//  2. **Decimal money**: all amounts are shopspring decimals, never float64,
//     so accumulation across many rows cannot drift.
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
