package models

import (
	"fmt"

	"github.com/jagaapp/jaga/server/auth"
)

var (
	allFieldsExceptPassword = []string{"id",
		"first_name",
		"last_name",
		"phone_number",
		"email",
		"language",
		"created_at",
		"updated_at",
	}

	userUpdatableFields = []string{"first_name",
		"last_name",
		"phone_number",
		"language",
		"password",
	}
)

type User struct {
	BaseModel
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required,e164" gorm:"not null;unique"`
	Email       string    `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password    string    `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	Language    string    `json:"language" gorm:"default:en"`
	Contacts    []Contact `json:"contacts,omitempty" gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(userUpdatableFields).Updates(data).Error
}

func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	return db.Create(user).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error
	if err != nil {
		return "", err
	}

	return user.Password, nil
}

func DeleteUser(id interface{}) error {
	return db.Delete(&User{}, id).Error
}
