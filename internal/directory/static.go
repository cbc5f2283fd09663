package directory

import (
	"context"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/models"
)

// Static is a map-backed directory for tests and local development.
type Static struct {
	contacts map[string]models.Contact
}

func NewStatic(contacts ...models.Contact) *Static {
	m := make(map[string]models.Contact, len(contacts))
	for _, c := range contacts {
		m[c.ID] = c
	}
	return &Static{contacts: m}
}

func (s *Static) Resolve(_ context.Context, ref models.RecipientRef) (*models.Contact, error) {
	if ref.ID == "" {
		return nil, apperr.Validationf("empty recipient id")
	}
	c, ok := s.contacts[ref.ID]
	if !ok {
		return nil, apperr.NotFoundf("recipient %s", ref.ID)
	}
	if ref.Kind != "" && c.Kind != ref.Kind {
		return nil, apperr.NotFoundf("recipient %s", ref.ID)
	}
	return &c, nil
}
