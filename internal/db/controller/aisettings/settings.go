// Package aisettings stores the LLM provider settings for auto-mapping
// jobs as a JSON blob in the settings table.
package aisettings

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/controller/setting"
)

const (
	// SettingKeyAI is the key used to store the AI provider settings.
	SettingKeyAI = "ai_provider"
)

type (
	// Settings represents the external LLM provider configuration.
	// Model uses "provider:model" notation; the API key itself is read
	// from the environment by the ai package, never stored here.
	Settings struct {
		Model          string `form:"model"            json:"model"          validate:"required"`
		TimeoutSeconds int    `form:"timeout_seconds"  json:"timeoutSeconds" validate:"min=0"`
		MaxTokens      int    `form:"max_tokens"       json:"maxTokens"      validate:"min=0"`
	}
)

// Load loads the AI provider settings from the database.
func (s *Settings) Load(db *gorm.DB) error {
	row, err := setting.Get(db, SettingKeyAI)
	if err != nil {
		return err
	}

	return json.Unmarshal(row.Value, s)
}

// Save saves the AI provider settings to the database.
func (s *Settings) Save(db *gorm.DB) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = setting.Set(db, SettingKeyAI, data)

	return err
}
