package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactUpdatableFields is the canonical set of fields a partial update
// may touch. Anything else in the payload is discarded by the caller.
var ContactUpdatableFields = map[string]bool{
	"name":                 true,
	"phone_number":         true,
	"address":              true,
	"relationship":         true,
	"image_ref":            true,
	"is_emergency_contact": true,
	"notification_token":   true,
	"linked_account_id":    true,
}

// Contact is a family member registered by an account holder. A contact
// with no NotificationToken is valid, it just cannot be reached until a
// token shows up(either directly or through LinkedAccountID).
type Contact struct {
	ID                 string    `json:"id" gorm:"primarykey"`
	Name               string    `json:"name" validate:"required"`
	PhoneNumber        string    `json:"phone_number"`
	Address            string    `json:"address"`
	Relationship       string    `json:"relationship"`
	ImageRef           string    `json:"image_ref"`
	IsEmergencyContact bool      `json:"is_emergency_contact"`
	NotificationToken  string    `json:"notification_token,omitempty"`
	LinkedAccountID    *uint     `json:"linked_account_id,omitempty"`
	AccountID          uint      `json:"account_id" gorm:"not null;index"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

func (contact *Contact) BeforeCreate(tx *gorm.DB) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	return nil
}

func CreateContact(contact *Contact) error {
	return db.Create(contact).Error
}

func ContactsFor(accountID uint) ([]Contact, error) {
	contacts := []Contact{}
	err := db.Limit(500).Find(&contacts, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func FindContact(accountID uint, id string) (*Contact, error) {
	contact := Contact{}
	err := db.First(&contact, "id = ? AND account_id = ?", id, accountID).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

func UpdateContact(accountID uint, id string, data map[string]interface{}) (bool, error) {
	res := db.Model(&Contact{}).Where("id = ? AND account_id = ?", id, accountID).Updates(data)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

// DeleteContact removes the record & reports whether one existed, so
// removing an already-removed contact stays idempotent.
func DeleteContact(accountID uint, id string) (bool, error) {
	res := db.Where("account_id = ?", accountID).Delete(&Contact{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func EmergencyContactsFor(accountID uint) ([]Contact, error) {
	contacts := []Contact{}
	err := db.Where("account_id = ? AND is_emergency_contact = ?", accountID, true).Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}
