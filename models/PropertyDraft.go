package models

import "time"

// PropertyDraft is an in-progress property record accumulated across
// the multi-step onboarding flow. Drafts live in the key-value store,
// not in Postgres; a draft becomes a Property on submit and is
// discarded afterwards.
type PropertyDraft struct {
	ID           string         `json:"id"`
	PropertyData map[string]any `json:"propertyData"`
	CurrentStep  int            `json:"currentStep"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
