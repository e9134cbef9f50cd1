package models

import "time"

// Consumption period statuses.
const (
	PeriodOpen   = "OPEN"
	PeriodBilled = "BILLED"
)

// Organization carries billing settings for a group owned by a user.
// Billing tables are migrated but no request path reads or writes them yet.
type Organization struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	Name               string              `json:"name" gorm:"not null"`
	OwnerID            uint                `json:"owner_id" gorm:"index;not null"`
	BillingRatio       float64             `json:"billing_ratio" gorm:"default:1.2"`
	Config             *OrganizationConfig `json:"config,omitempty"`
	ConsumptionPeriods []ConsumptionPeriod `json:"consumption_periods,omitempty"`
}

// OrganizationConfig holds the provider credential of an organization.
type OrganizationConfig struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	OrganizationID uint   `json:"organization_id" gorm:"uniqueIndex;not null"`
	OpenAIAPIKey   string `json:"-" gorm:"column:openai_api_key;not null"`
}

// ConsumptionPeriod bounds a set of consumption items.
type ConsumptionPeriod struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	OrganizationID   uint              `json:"organization_id" gorm:"index;not null"`
	StartedAt        time.Time         `json:"started_at" gorm:"not null"`
	EndedAt          *time.Time        `json:"ended_at"`
	Status           string            `json:"status" gorm:"size:16;not null;default:OPEN"`
	ConsumptionItems []ConsumptionItem `json:"consumption_items,omitempty"`
}

// ConsumptionItem is a single billable amount.
type ConsumptionItem struct {
	ID                  uint    `json:"id" gorm:"primaryKey"`
	ConsumptionPeriodID uint    `json:"consumption_period_id" gorm:"index;not null"`
	Description         string  `json:"description" gorm:"type:text;not null"`
	Amount              float64 `json:"amount" gorm:"not null"`
}

// ModelSetting is a per-user key/value preference.
type ModelSetting struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"uniqueIndex:idx_user_setting;not null"`
	SettingName  string `json:"setting_name" gorm:"uniqueIndex:idx_user_setting;not null"`
	SettingValue string `json:"setting_value" gorm:"type:text;not null"`
}
