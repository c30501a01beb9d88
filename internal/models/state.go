package models

// Logical names under which the state collections are persisted
const (
	StateKeyTasks        = "tasks"
	StateKeySettings     = "settings"
	StateKeyConversation = "conversation"
	StateKeyPatterns     = "patterns"
	StateKeyUsage        = "usage"
)

// StateKeys lists every logical name in persistence order
var StateKeys = []string{StateKeyTasks, StateKeySettings, StateKeyConversation, StateKeyPatterns, StateKeyUsage}

// State is the whole persisted application state
type State struct {
	Tasks        []*Task             `json:"tasks"`
	Settings     Settings            `json:"settings"`
	Conversation []ConversationEntry `json:"conversation"`
	Patterns     []TrainedPattern    `json:"patterns"`
	Usage        Usage               `json:"usage"`
}

// NewState returns an empty state with default settings
func NewState() *State {
	return &State{
		Tasks:        []*Task{},
		Settings:     DefaultSettings(),
		Conversation: []ConversationEntry{},
		Patterns:     []TrainedPattern{},
	}
}

// Normalize replaces nil collections with empty ones and fills missing bookkeeping maps
func (s *State) Normalize() {
	if s.Tasks == nil {
		s.Tasks = []*Task{}
	}
	for _, task := range s.Tasks {
		if task.RemindersSent == nil {
			task.RemindersSent = make(map[string]string)
		}
		if len(task.Days) == 0 {
			task.Days = []string{DayToday}
		}
	}
	if s.Conversation == nil {
		s.Conversation = []ConversationEntry{}
	}
	if s.Patterns == nil {
		s.Patterns = []TrainedPattern{}
	}
	if s.Settings.DailyLimitHours <= 0 {
		s.Settings.DailyLimitHours = DefaultDailyLimitHours
	}
	if s.Settings.ReminderAdvanceMinutes < 0 {
		s.Settings.ReminderAdvanceMinutes = 0
	}
}
