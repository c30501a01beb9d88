package models

// Default settings values
const (
	DefaultTimezone               = "America/Chicago"
	DefaultReminderAdvanceMinutes = 5
	DefaultDailyLimitHours        = 2.0
)

// Settings holds the user's process-wide preferences.
// Timezone is a display label only; no conversion is performed.
type Settings struct {
	UserName               string  `json:"user_name" yaml:"user_name" validate:"max=100"`
	Timezone               string  `json:"timezone" yaml:"timezone" validate:"max=64"`
	EnableNotifications    bool    `json:"enable_notifications" yaml:"enable_notifications"`
	EnableSound            bool    `json:"enable_sound" yaml:"enable_sound"`
	EnableVoiceResponse    bool    `json:"enable_voice_response" yaml:"enable_voice_response"`
	ReminderAdvanceMinutes int     `json:"reminder_advance_minutes" yaml:"reminder_advance_minutes" validate:"min=0,max=1440"`
	EnableScreenTimeLimit  bool    `json:"enable_screen_time_limit" yaml:"enable_screen_time_limit"`
	DailyLimitHours        float64 `json:"daily_limit_hours" yaml:"daily_limit_hours" validate:"gt=0,lte=24"`
	EnableWakeLock         bool    `json:"enable_wake_lock" yaml:"enable_wake_lock"`
	EnableAlarm            bool    `json:"enable_alarm" yaml:"enable_alarm"`
}

// DefaultSettings returns the settings a fresh installation starts with
func DefaultSettings() Settings {
	return Settings{
		Timezone:               DefaultTimezone,
		EnableNotifications:    true,
		EnableSound:            true,
		ReminderAdvanceMinutes: DefaultReminderAdvanceMinutes,
		DailyLimitHours:        DefaultDailyLimitHours,
	}
}

// DisplayName returns the user's name, or "there" when it is not set
func (s Settings) DisplayName() string {
	if s.UserName == "" {
		return "there"
	}
	return s.UserName
}

// HeartbeatEnabled reports whether the extra high-frequency reminder tick should run
func (s Settings) HeartbeatEnabled() bool {
	return s.EnableAlarm || s.EnableWakeLock
}
