// Package sqlite persists FROC runs and their summary curves in SQLite.
//
// The schema is managed by golang-migrate from migrations embedded in the
// binary, so a fresh database file is brought up to date on Open.
package sqlite
