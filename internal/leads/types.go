// Package leads persists qualified visitor leads captured by the chatbot.
package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	SourceChatbot = "chatbot"
	StatusNew     = "new"
)

// referenceAlphabet avoids characters that are easy to misread aloud.
const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

var ErrInvalidRecord = errors.New("lead record is missing contact details")

// Record is an immutable lead as handed to storage.
type Record struct {
	ID               string    `json:"id"`
	Reference        string    `json:"reference"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	PropertyInterest string    `json:"propertyInterest,omitempty"`
	Budget           string    `json:"budget,omitempty"`
	Timeline         string    `json:"timeline,omitempty"`
	Message          string    `json:"message,omitempty"`
	Bedrooms         int       `json:"bedrooms,omitempty"`
	Location         string    `json:"location,omitempty"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store saves a lead and returns its reference code.
type Store interface {
	Save(ctx context.Context, r Record) (string, error)
	Close() error
}

// Lister is implemented by stores that can read leads back, newest first.
type Lister interface {
	List(ctx context.Context, limit int) ([]Record, error)
}

// NewReference returns a short code a visitor can quote to an agent.
func NewReference() (string, error) {
	code, err := gonanoid.Generate(referenceAlphabet, 8)
	if err != nil {
		return "", err
	}
	return "RB-" + code, nil
}

// prepare fills server-assigned fields and rejects records without contact
// details.
func prepare(r Record) (Record, error) {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Phone) == "" {
		return Record{}, ErrInvalidRecord
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Reference == "" {
		ref, err := NewReference()
		if err != nil {
			return Record{}, err
		}
		r.Reference = ref
	}
	if r.Source == "" {
		r.Source = SourceChatbot
	}
	if r.Status == "" {
		r.Status = StatusNew
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r, nil
}
