// Package repository contains the data-access layer: one repo per table over
// the shared dual-dialect backend, hand-written SQL with ? placeholders
// (rebound for Postgres by the backend), and sentinel errors that handlers
// translate into HTTP statuses.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrMobileExists is returned when a unique mobile number is already taken.
// Handlers translate it into 400 (registration) or 409 (customer records).
var ErrMobileExists = errors.New("mobile number already registered")

// ErrConflict is returned when an operation cannot proceed due to existing
// state, such as paying an already-paid due or drawing stock below zero.
// Handlers translate it into 409.
var ErrConflict = errors.New("conflict")
