// Package domain contains the core entities of the practice engine:
// content items with their variant-specific payloads, per-learner
// scheduling records, practice sessions, and evaluation results.
//
// Entities validate themselves and carry no persistence or transport
// concerns; those live in the store and api packages respectively.
package domain
