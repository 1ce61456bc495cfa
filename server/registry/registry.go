package registry

import (
	"errors"

	"github.com/jagaapp/jaga/server/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("no account resolvable for this operation")
	ErrContactNotFound  = errors.New("contact not found")
)

// ContactInput carries the caller-supplied fields for a new contact; the
// registry owns id generation.
type ContactInput struct {
	Name               string `json:"name" validate:"required"`
	PhoneNumber        string `json:"phone_number"`
	Address            string `json:"address"`
	Relationship       string `json:"relationship"`
	ImageRef           string `json:"image_ref"`
	IsEmergencyContact bool   `json:"is_emergency_contact"`
	NotificationToken  string `json:"notification_token"`
	LinkedAccountID    *uint  `json:"linked_account_id"`
}

// Registry is the single canonical contact store for an account. Every
// operation takes the owning account explicitly; there is no ambient
// session state.
type Registry struct {
	logg *zap.SugaredLogger
}

func NewRegistry(logg *zap.SugaredLogger) *Registry {
	return &Registry{logg: logg}
}

func (r *Registry) List(accountID uint) ([]models.Contact, error) {
	if accountID == 0 {
		return nil, ErrNotAuthenticated
	}

	return models.ContactsFor(accountID)
}

func (r *Registry) Add(accountID uint, input ContactInput) (*models.Contact, error) {
	if accountID == 0 {
		return nil, ErrNotAuthenticated
	}

	contact := models.Contact{
		Name:               input.Name,
		PhoneNumber:        input.PhoneNumber,
		Address:            input.Address,
		Relationship:       input.Relationship,
		ImageRef:           input.ImageRef,
		IsEmergencyContact: input.IsEmergencyContact,
		NotificationToken:  input.NotificationToken,
		LinkedAccountID:    input.LinkedAccountID,
		AccountID:          accountID,
	}

	if err := models.CreateContact(&contact); err != nil {
		return nil, err
	}

	return &contact, nil
}

// Update merges the supplied fields into the existing record; anything not
// supplied is left untouched. Unknown fields are dropped, not rejected.
func (r *Registry) Update(accountID uint, id string, fields map[string]interface{}) (*models.Contact, error) {
	if accountID == 0 {
		return nil, ErrNotAuthenticated
	}

	for field := range fields {
		if !models.ContactUpdatableFields[field] {
			delete(fields, field)
		}
	}

	exists, err := models.UpdateContact(accountID, id, fields)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrContactNotFound
	}

	return models.FindContact(accountID, id)
}

// Remove deletes the record & reports whether one existed. Removing a
// non-existent id is not an error.
func (r *Registry) Remove(accountID uint, id string) (bool, error) {
	if accountID == 0 {
		return false, ErrNotAuthenticated
	}

	return models.DeleteContact(accountID, id)
}

// EmergencyContacts returns the live fan-out set for an escalation. Storage
// errors are recovered here so a broken read degrades to "nobody to notify"
// instead of failing the incident flow.
func (r *Registry) EmergencyContacts(accountID uint) []models.Contact {
	if accountID == 0 {
		return []models.Contact{}
	}

	contacts, err := models.EmergencyContactsFor(accountID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logg.Errorf("EmergencyContacts: %v", err)
		return []models.Contact{}
	}

	return r.resolveLinkedTokens(contacts)
}

// ContactsWithToken filters the account's contacts down to the ones that
// can currently receive a push message.
func (r *Registry) ContactsWithToken(accountID uint) []models.Contact {
	contacts, err := r.List(accountID)
	if err != nil {
		r.logg.Errorf("ContactsWithToken: %v", err)
		return []models.Contact{}
	}

	reachable := []models.Contact{}
	for _, contact := range r.resolveLinkedTokens(contacts) {
		if contact.NotificationToken != "" {
			reachable = append(reachable, contact)
		}
	}

	return reachable
}

// resolveLinkedTokens overlays the freshest account token onto contacts
// that are linked to another jaga account, so a rotated device token never
// leaves a linked contact unreachable.
func (r *Registry) resolveLinkedTokens(contacts []models.Contact) []models.Contact {
	linkedIDs := []uint{}
	for _, contact := range contacts {
		if contact.LinkedAccountID != nil {
			linkedIDs = append(linkedIDs, *contact.LinkedAccountID)
		}
	}

	if len(linkedIDs) == 0 {
		return contacts
	}

	tokens, err := models.TokensForAccounts(linkedIDs)
	if err != nil {
		r.logg.Errorf("resolveLinkedTokens: %v", err)
		return contacts
	}

	for i, contact := range contacts {
		if contact.LinkedAccountID == nil {
			continue
		}
		if token, ok := tokens[*contact.LinkedAccountID]; ok && token != "" {
			contacts[i].NotificationToken = token
		}
	}

	return contacts
}
