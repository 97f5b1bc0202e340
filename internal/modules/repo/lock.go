package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func isPostgres(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "postgres"
}

// forUpdate locks the selected rows until the transaction ends. SQLite has a
// single writer and no row locks, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if isPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockUserHours serializes daily-cap checks of one user for the rest of the transaction.
func lockUserHours(tx *gorm.DB, userID uuid.UUID) error {
	if !isPostgres(tx) {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "hour_entries:"+userID.String()).Error
}
