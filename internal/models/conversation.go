package models

import "time"

// Sender identifies who produced a conversation entry
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// ConversationEntry is one line of the chat log
type ConversationEntry struct {
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TrainedPattern is a user-supplied (trigger, response) override checked before built-in replies.
// Response may contain the {userName} placeholder.
type TrainedPattern struct {
	Trigger  string `json:"trigger" yaml:"trigger" validate:"required,max=200"`
	Response string `json:"response" yaml:"response" validate:"required,max=2000"`
}

// UserNamePlaceholder is substituted with the user's display name in trained responses
const UserNamePlaceholder = "{userName}"

// Usage tracks screen time for one calendar date
type Usage struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
	Warned  bool   `json:"warned"`
}
