package agent

import (
	"context"
	"fmt"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/responder"
	"github.com/benvon/daily-agent/internal/validation"
	"go.uber.org/zap"
)

// SaveSettings validates and stores settings, then posts a confirmation
func (a *Agent) SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	settings.UserName = validation.SanitizeText(settings.UserName)
	settings.Timezone = validation.SanitizeText(settings.Timezone)
	if err := validation.Validate.Struct(settings); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Settings = settings
	if !settings.EnableAlarm {
		a.alarm.Stop()
	}
	a.post(settingsSavedMessage)
	a.persist(ctx)

	a.logger.Info("settings_saved",
		zap.Bool("notifications", settings.EnableNotifications),
		zap.Bool("voice", settings.EnableVoiceResponse),
		zap.Bool("alarm", settings.EnableAlarm),
		zap.Int("reminder_advance_minutes", settings.ReminderAdvanceMinutes))
	return settings, nil
}

// AddPattern appends a trained pattern. Triggers are matched literally and need not be unique.
func (a *Agent) AddPattern(ctx context.Context, trigger, response string) (models.TrainedPattern, error) {
	pattern := models.TrainedPattern{
		Trigger:  validation.SanitizeText(trigger),
		Response: validation.SanitizeText(response),
	}
	if err := validation.Validate.Struct(pattern); err != nil {
		return models.TrainedPattern{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if _, err := responder.TriggerPattern(pattern.Trigger); err != nil {
		return models.TrainedPattern{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Patterns = append(a.state.Patterns, pattern)
	a.post(fmt.Sprintf("I've learned a new pattern! Now when you say \"%s\", I'll know what to do.", pattern.Trigger))
	a.persist(ctx)
	return pattern, nil
}

// DeletePattern removes the pattern at index
func (a *Agent) DeletePattern(ctx context.Context, index int) (models.TrainedPattern, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.state.Patterns) {
		return models.TrainedPattern{}, fmt.Errorf("%w: index %d", ErrPatternNotFound, index)
	}
	removed := a.state.Patterns[index]
	a.state.Patterns = append(a.state.Patterns[:index:index], a.state.Patterns[index+1:]...)
	a.persist(ctx)
	return removed, nil
}

// Patterns returns the trained patterns in match order
func (a *Agent) Patterns() []models.TrainedPattern {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.TrainedPattern(nil), a.state.Patterns...)
}
