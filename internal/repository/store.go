package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db        *gorm.DB
	Users     *UserRepository
	Children  *ChildRepository
	Vaccines  *VaccineRepository
	Doses     *DoseRepository
	Reminders *ReminderRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepository(db),
		Children:  NewChildRepository(db),
		Vaccines:  NewVaccineRepository(db),
		Doses:     NewDoseRepository(db),
		Reminders: NewReminderRepository(db),
	}
}

// Transaction runs fn against repositories bound to a single transaction.
// Any error returned by fn rolls the whole unit back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
