package storage

import (
	"github.com/ramonehamilton/card-binder/internal/storage/repository"
)

// Service groups the repositories built on one database.
type Service struct {
	db *DB
	kv repository.KeyValueRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db: db,
		kv: repository.NewKeyValueRepository(db.Conn()),
	}
}

// KeyValue returns the key/value repository.
func (s *Service) KeyValue() repository.KeyValueRepository {
	return s.kv
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
