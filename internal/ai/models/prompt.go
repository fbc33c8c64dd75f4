package models

import "time"

// RavenBotAIPrompt is the GORM model for raven_bot_ai_prompts table
type RavenBotAIPrompt struct {
	Name      string    `gorm:"primaryKey;type:varchar(36)"`
	Prompt    string    `gorm:"type:text;not null"`
	IsGlobal  bool      `gorm:"not null;default:false;index"`
	RavenBot  string    `gorm:"type:varchar(255);index"`
	Owner     string    `gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name
func (RavenBotAIPrompt) TableName() string {
	return "raven_bot_ai_prompts"
}
