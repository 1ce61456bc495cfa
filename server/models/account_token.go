package models

import (
	"errors"

	"gorm.io/gorm"
)

// AccountToken is an account's own current push-delivery token. At most
// one row exists per account; writes are last-write-wins.
type AccountToken struct {
	BaseModel
	AccountID uint   `json:"account_id" gorm:"not null;unique"`
	Token     string `json:"token" gorm:"not null"`
}

func SaveAccountToken(accountID uint, token string) error {
	res := db.Model(&AccountToken{}).Where("account_id = ?", accountID).Update("token", token)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return db.Create(&AccountToken{AccountID: accountID, Token: token}).Error
	}

	return nil
}

func FindAccountToken(accountID uint) (*AccountToken, error) {
	accountToken := AccountToken{}
	err := db.First(&accountToken, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}

	return &accountToken, nil
}

// TokensForAccounts resolves the freshest token for each of the given
// accounts. Accounts without a token are simply absent from the result.
func TokensForAccounts(accountIDs []uint) (map[uint]string, error) {
	tokens := map[uint]string{}
	if len(accountIDs) == 0 {
		return tokens, nil
	}

	accountTokens := []AccountToken{}
	err := db.Where("account_id IN ?", accountIDs).Find(&accountTokens).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for _, accountToken := range accountTokens {
		tokens[accountToken.AccountID] = accountToken.Token
	}

	return tokens, nil
}
