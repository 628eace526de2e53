package pgrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core/contact"
)

type contactRepository struct {
	db *sqlx.DB
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db *sqlx.DB) contact.Repository {
	return &contactRepository{db: db}
}

func (repo *contactRepository) CreateMessage(m contact.Message) (contact.Message, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO contact_log (name, email, message, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.Name, m.Email, m.Body, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return contact.Message{}, errors.Wrap(err, "creating contact message")
	}
	return m, nil
}
