// Package contact handles the public "reach us" form: messages are stored and
// forwarded to the site operators' inbox.
package contact

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/edureach/backend/core"
)

type (
	Message struct {
		ID        int       `json:"id" db:"id"`
		Name      string    `json:"name" db:"name"`
		Email     string    `json:"email" db:"email"`
		Body      string    `json:"message" db:"message"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	NewMessage struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Body  string `json:"message" validate:"required"`
	}

	Repository interface {
		CreateMessage(m Message) (Message, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Submit records the message and forwards it to the operators' inbox.
func (svc *Service) Submit(nm NewMessage) (Message, error) {
	m, err := svc.repo.CreateMessage(Message{
		Name:      core.CleanString(nm.Name),
		Email:     core.CleanString(nm.Email, true /* lower */),
		Body:      nm.Body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.conf.FromEmailAddress()},
		Subject: fmt.Sprintf("EduReach contact form: %s", m.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", m.Name, m.Email, m.Body),
	})
	return m, nil
}
