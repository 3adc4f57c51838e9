package store

import (
	coredatabase "github.com/m3rciful/cinebot/core/database"
)

// Migrate brings the schema up to date for cfg. It is safe to run on every start.
func Migrate(cfg coredatabase.Config) error {
	return coredatabase.RunMigrations(cfg)
}

// Open migrates and connects in that order.
func Open(cfg coredatabase.Config) (*Store, error) {
	if err := Migrate(cfg); err != nil {
		return nil, err
	}
	db, err := coredatabase.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}
