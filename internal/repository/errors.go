// Package repository contains data access logic separated from HTTP handlers.
// This file defines sentinel errors shared across repositories so that
// handlers can distinguish failure scenarios: ErrNotFound covers lookups
// scoped by (id, owner) that match nothing, which deliberately does not
// reveal whether the row exists under another owner.
package repository

import "errors"

// ErrNotFound is returned when a row cannot be found within the caller's
// ownership scope. Handlers translate this into a 404 for reads and
// updates; delete handlers treat it as a no-op instead.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email that is
// already registered. Handlers translate this into a 409.
var ErrEmailExists = errors.New("email already exists")
