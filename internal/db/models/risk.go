package models

import "time"

// RiskLevel is a 1-5 scale used for both severity and likelihood.
type RiskLevel int

// Risk represents an entry in the risk register.
type Risk struct {
	ID             uint      `gorm:"primaryKey"`
	Title          string    `gorm:"size:255;not null"`
	Description    string    `gorm:"type:text"`
	Category       string    `gorm:"size:100"`
	Owner          string    `gorm:"size:100"`
	Severity       RiskLevel `gorm:"not null;default:1"`
	Likelihood     RiskLevel `gorm:"not null;default:1"`
	BusinessUnitID *uint     `gorm:"index"`
	Mitigation     string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for the Risk model.
func (Risk) TableName() string {
	return "risks"
}

// Rating is the severity times likelihood product used for ranking.
func (r *Risk) Rating() int {
	return int(r.Severity) * int(r.Likelihood)
}
