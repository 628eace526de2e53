package dummydb

import (
	"github.com/edureach/backend/core/contact"
)

var contactPKCount int

type contactRepository struct {
	db *contactTable
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) CreateMessage(m contact.Message) (contact.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	contactPKCount++
	m.ID = contactPKCount
	repo.db.table[m.ID] = &m
	return m, nil
}
