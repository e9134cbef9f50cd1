package models

import "gorm.io/datatypes"

// ModelRef selects the upstream model of a completion request.
type ModelRef struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// ExternalModel describes a model reported by a provider listing.
// Raw keeps the provider's own payload for the client.
type ExternalModel struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	OwnedBy string         `json:"owned_by"`
	Size    int64          `json:"size,omitempty"`
	Raw     datatypes.JSON `json:"raw,omitempty"`
}

// All lists every table managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Token{},
		&Conversation{},
		&Message{},
		&Audio{},
		&Organization{},
		&OrganizationConfig{},
		&ConsumptionPeriod{},
		&ConsumptionItem{},
		&ModelSetting{},
	}
}
