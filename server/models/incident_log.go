package models

import "time"

// IncidentLog records the outcome of a resolved escalation. The live
// incident itself never touches the database; this is an audit trail only.
type IncidentLog struct {
	BaseModel
	AccountID     uint      `json:"account_id" gorm:"not null;index"`
	Category      string    `json:"category"`
	Label         string    `json:"label"`
	Outcome       string    `json:"outcome"`
	StartedAt     time.Time `json:"started_at"`
	ResolvedAt    time.Time `json:"resolved_at"`
	NotifiedCount int       `json:"notified_count"`
}

func CreateIncidentLog(entry *IncidentLog) error {
	return db.Create(entry).Error
}

func IncidentLogsFor(accountID uint) ([]IncidentLog, error) {
	logs := []IncidentLog{}
	err := db.Order("resolved_at desc").Limit(100).Find(&logs, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}
