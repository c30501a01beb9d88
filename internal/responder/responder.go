// Package responder picks the agent's reply to a chat message from an ordered list of intents.
package responder

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/nlp"
	"github.com/benvon/daily-agent/internal/store"
)

// Intent names the rule that produced a reply
type Intent string

const (
	IntentConfirm       Intent = "confirm"
	IntentTrained       Intent = "trained_pattern"
	IntentGreeting      Intent = "greeting"
	IntentCreateTask    Intent = "create_task"
	IntentScheduleQuery Intent = "schedule_query"
	IntentTimeQuery     Intent = "time_query"
	IntentSmallTalk     Intent = "small_talk"
	IntentRoutine       Intent = "routine"
	IntentHelp          Intent = "help"
	IntentDefault       Intent = "default"
)

// Action is the side effect the caller must apply after a reply
type Action string

const (
	ActionNone       Action = "none"
	ActionOpenForm   Action = "open_form"
	ActionSaveForm   Action = "save_form"
	ActionCancelForm Action = "cancel_form"
)

// Request is everything the generator looks at to pick a reply
type Request struct {
	Text       string
	FormOpen   bool
	TodayTasks []*models.Task
	Patterns   []models.TrainedPattern
	Settings   models.Settings
	Now        time.Time
}

// Reply is the generated response
type Reply struct {
	Text   string
	Intent Intent
	Action Action
	// Draft is set when Action is ActionOpenForm
	Draft *models.TaskDraft
}

// Chooser returns an index in [0, n)
type Chooser func(n int) int

var (
	affirmativePattern   = regexp.MustCompile(`\b(yes|ok|okay|fine|good|looks good|save|do it|correct|yep|yeah|yup|sure)\b`)
	negativePattern      = regexp.MustCompile(`\b(no|wait|stop|change|cancel)\b`)
	greetingPattern      = regexp.MustCompile(`\b(hi|hello|hey|greetings|morning|afternoon|evening)\b`)
	createPattern        = regexp.MustCompile(`\b(add|create|new|remind|set|schedule)\b`)
	scheduleQueryPattern = regexp.MustCompile(`\b(schedule|tasks|agenda|today|to do|doing)\b`)
	timeQueryPattern     = regexp.MustCompile(`\b(time|clock|date|day)\b`)
	howAreYouPattern     = regexp.MustCompile(`\b(how are you|how's it going|how you doing)\b`)
	thanksPattern        = regexp.MustCompile(`\b(thanks|thank you|thx|cheers)\b`)
	routinePattern       = regexp.MustCompile(`\b(every|daily|weekly|always)\b`)
)

const helpText = "I'm Lokha, your personal assistant. Here's what I can do:\n" +
	"• Manage your schedule and set reminders\n" +
	"• Learn your daily routines\n" +
	"• Track your productivity stats\n" +
	"• Keep you organized via voice or text!\n\n" +
	"Just tell me what's on your mind."

type rule struct {
	intent Intent
	match  func(g *Generator, req Request, lower string) (Reply, bool)
}

// rules are evaluated in order; the first match wins
var rules = []rule{
	{IntentConfirm, (*Generator).confirm},
	{IntentTrained, (*Generator).trained},
	{IntentGreeting, (*Generator).greeting},
	{IntentCreateTask, (*Generator).createTask},
	{IntentScheduleQuery, (*Generator).scheduleQuery},
	{IntentTimeQuery, (*Generator).timeQuery},
	{IntentSmallTalk, (*Generator).smallTalk},
	{IntentRoutine, (*Generator).routine},
	{IntentHelp, (*Generator).help},
	{IntentDefault, (*Generator).fallback},
}

// IntentOrder returns the intents in the order they are tried
func IntentOrder() []Intent {
	out := make([]Intent, len(rules))
	for i, r := range rules {
		out[i] = r.intent
	}
	return out
}

// Generator produces replies. It holds no state besides its chooser.
type Generator struct {
	choose Chooser
}

// NewGenerator creates a generator. A nil chooser picks uniformly at random.
func NewGenerator(choose Chooser) *Generator {
	if choose == nil {
		choose = rand.IntN
	}
	return &Generator{choose: choose}
}

// Generate returns the reply for req. It always returns a reply.
func (g *Generator) Generate(req Request) Reply {
	lower := strings.ToLower(req.Text)
	for _, r := range rules {
		if reply, ok := r.match(g, req, lower); ok {
			reply.Intent = r.intent
			if reply.Action == "" {
				reply.Action = ActionNone
			}
			return reply
		}
	}
	// unreachable: the default rule always matches
	return Reply{Intent: IntentDefault, Action: ActionNone}
}

func (g *Generator) pick(candidates []string) string {
	i := g.choose(len(candidates))
	if i < 0 || i >= len(candidates) {
		i = 0
	}
	return candidates[i]
}

func (g *Generator) confirm(req Request, lower string) (Reply, bool) {
	if !req.FormOpen {
		return Reply{}, false
	}
	if affirmativePattern.MatchString(lower) {
		return Reply{Text: "Done! I've saved that to your schedule. What's next?", Action: ActionSaveForm}, true
	}
	if negativePattern.MatchString(lower) {
		return Reply{Text: "No problem. I've cancelled that for you.", Action: ActionCancelForm}, true
	}
	return Reply{}, false
}

// TriggerPattern compiles a trained trigger into its whole-word, case-insensitive matcher.
// The trigger is taken literally.
func TriggerPattern(trigger string) (*regexp.Regexp, error) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil, fmt.Errorf("trigger must not be empty")
	}
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(trigger) + `\b`)
}

func (g *Generator) trained(req Request, lower string) (Reply, bool) {
	name := req.Settings.DisplayName()
	for _, pattern := range req.Patterns {
		re, err := TriggerPattern(pattern.Trigger)
		if err != nil {
			continue
		}
		if re.MatchString(lower) {
			return Reply{Text: strings.Replace(pattern.Response, models.UserNamePlaceholder, name, 1)}, true
		}
	}
	return Reply{}, false
}

// TimeGreeting returns the greeting label for the hour of now
func TimeGreeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

func (g *Generator) greeting(req Request, lower string) (Reply, bool) {
	if !greetingPattern.MatchString(lower) {
		return Reply{}, false
	}
	name := req.Settings.DisplayName()
	return Reply{Text: g.pick([]string{
		fmt.Sprintf("%s, %s! How can I help you today?", TimeGreeting(req.Now), name),
		fmt.Sprintf("Hi %s! I'm ready to help you manage your day.", name),
		"Hey! Hope you're having a productive day so far. What can I do for you?",
		"Hello! Ready to conquer your schedule?",
	})}, true
}

func (g *Generator) createTask(req Request, lower string) (Reply, bool) {
	if !createPattern.MatchString(lower) {
		return Reply{}, false
	}

	info := nlp.Extract(req.Text)
	draft := models.NewTaskDraft(info.Title, info.Time)

	if info.Empty() {
		return Reply{
			Text:   fmt.Sprintf("Of course! I've opened the task form. Tell me what \"%s\" needs to get done!", req.Settings.DisplayName()),
			Action: ActionOpenForm,
			Draft:  draft,
		}, true
	}

	text := "I've prepared that for you! "
	switch {
	case info.Title != "" && info.Time != "":
		text += fmt.Sprintf("Scheduled \"%s\" at %s. Does this look right?", info.Title, info.Time)
	case info.Time != "":
		text += fmt.Sprintf("I set the time to %s. What's the task name?", info.Time)
	default:
		text += fmt.Sprintf("I've started the form. When should I remind you about \"%s\"?", info.Title)
	}
	return Reply{Text: text, Action: ActionOpenForm, Draft: draft}, true
}

func (g *Generator) scheduleQuery(req Request, lower string) (Reply, bool) {
	if !scheduleQueryPattern.MatchString(lower) {
		return Reply{}, false
	}
	name := req.Settings.DisplayName()
	total := len(req.TodayTasks)
	if total == 0 {
		return Reply{Text: fmt.Sprintf("Currently, your schedule for today is completely clear, %s. A perfect time to plan something new!", name)}, true
	}
	pending := store.Pending(req.TodayTasks)
	if pending == 0 {
		return Reply{Text: fmt.Sprintf("You've actually finished everything on your list for today! Great job, %s!", name)}, true
	}
	return Reply{Text: fmt.Sprintf("You have %d tasks today, with %d still to go. I've listed them below for you.", total, pending)}, true
}

func (g *Generator) timeQuery(req Request, lower string) (Reply, bool) {
	if !timeQueryPattern.MatchString(lower) {
		return Reply{}, false
	}
	return Reply{Text: fmt.Sprintf("It's currently %s on this lovely %s.",
		req.Now.Format("3:04 PM"), req.Now.Format("Monday, January 2"))}, true
}

func (g *Generator) smallTalk(req Request, lower string) (Reply, bool) {
	name := req.Settings.DisplayName()
	if howAreYouPattern.MatchString(lower) {
		return Reply{Text: fmt.Sprintf("I'm functioning perfectly and ready to help you! How are things with you, %s?", name)}, true
	}
	if thanksPattern.MatchString(lower) {
		return Reply{Text: g.pick([]string{
			fmt.Sprintf("You're very welcome, %s! Any time.", name),
			"My pleasure! Happy to help.",
			"No problem at all! Just doing my job.",
			"Glad I could help!",
		})}, true
	}
	return Reply{}, false
}

func (g *Generator) routine(req Request, lower string) (Reply, bool) {
	if !routinePattern.MatchString(lower) {
		return Reply{}, false
	}
	return Reply{Text: "I noticed you're talking about a routine. You can set tasks to repeat on specific days in the 'Add Task' menu!"}, true
}

func (g *Generator) help(req Request, lower string) (Reply, bool) {
	if !strings.Contains(lower, "help") && lower != "?" {
		return Reply{}, false
	}
	return Reply{Text: helpText}, true
}

func (g *Generator) fallback(req Request, lower string) (Reply, bool) {
	return Reply{Text: fmt.Sprintf("I'm listening, %s! I'm still learning your patterns, but I can certainly help you with your schedule or reminders if you'd like.",
		req.Settings.DisplayName())}, true
}
