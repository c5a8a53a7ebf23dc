// Package database opens the local SQLite file shared by the web session
// store, the CLI credential store and the task queue.
//
// Only a key/value settings table is managed through GORM; books, users and
// favorites live in the remote catalog API.
package database
