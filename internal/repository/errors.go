// Package repository provides the MySQL-backed persistence of the
// service: user accounts, refresh tokens, the venue catalog and the
// booking lifecycle audit log. Sentinel errors defined here let
// handlers distinguish failure scenarios without inspecting SQL
// error strings.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
