// Package storage persists records, subscriptions, balance-sheet items and
// net-worth snapshots. The engine packages never touch a Store: handlers load
// inputs before engine calls and write results back after.
package storage

import "finlens/internal/models"

// Store is the persistence boundary.
type Store interface {
	Records() ([]models.Record, error)
	AddRecords(records []models.Record) error
	RemoveRecords(ids []string) (int, error)

	Subscriptions() ([]models.Subscription, error)
	SaveSubscription(sub models.Subscription) error

	Assets() ([]models.Asset, error)
	SaveAsset(asset models.Asset) error
	Liabilities() ([]models.Liability, error)
	SaveLiability(liability models.Liability) error

	// Snapshots are keyed by date: saving over an existing date replaces
	// that snapshot. Snapshots() returns them date-ascending.
	Snapshots() ([]models.NetWorthSnapshot, error)
	SaveSnapshot(snap models.NetWorthSnapshot) error

	Close() error
}
