// Package reply turns an intent and the visitor's memory into assistant
// text, delegating open-ended input to the AI fallback.
package reply

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ent0n29/realtybot/internal/brain"
	"github.com/ent0n29/realtybot/internal/intent"
	"github.com/ent0n29/realtybot/internal/memory"
	"github.com/ent0n29/realtybot/internal/observability"
	"github.com/ent0n29/realtybot/internal/policy"
	"github.com/ent0n29/realtybot/internal/wizard"
)

const (
	defaultAITimeout = 8 * time.Second
	// Delegation thresholds for conversational intents.
	minDelegateChars = 20
	minDelegateDepth = 2
	// contextTurns bounds the history sent to the AI fallback.
	contextTurns = 4
)

// conversational intents may be answered by the AI fallback; the rest carry
// fixed business meaning and always use templates.
var conversational = map[intent.Label]bool{
	intent.Greeting:        true,
	intent.Thanks:          true,
	intent.Help:            true,
	intent.BasicQA:         true,
	intent.PropertyDetails: true,
}

type Options struct {
	Selector  Selector
	AITimeout time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

type Generator struct {
	ai       brain.Adapter
	selector Selector
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewGenerator(ai brain.Adapter, opts Options) *Generator {
	if ai == nil {
		ai = brain.Unavailable{}
	}
	if opts.Selector == nil {
		opts.Selector = NewRandomSelector(uint64(time.Now().UnixNano()))
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = defaultAITimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Generator{
		ai:       ai,
		selector: opts.Selector,
		timeout:  opts.AITimeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

type Request struct {
	SessionID   string
	Intent      intent.Label
	Utterance   string
	Memory      memory.Slots
	ResultCount int
	// History holds the turns before Utterance, oldest first.
	History []brain.HistoryTurn
}

// Generate never fails: AI errors and timeouts fall back to the unknown
// pool.
func (g *Generator) Generate(ctx context.Context, req Request) string {
	vars := Vars{Memory: req.Memory, Count: req.ResultCount}
	if shouldDelegate(req) {
		if text, ok := g.delegate(ctx, req); ok {
			return text
		}
		return g.Text(KindOf(intent.Unknown), vars)
	}

	switch req.Intent {
	case intent.PropertySearch, intent.LocationSearch:
		if req.ResultCount > 0 {
			return g.Text(KindSearchFound, vars)
		}
		return g.Text(KindSearchNone, vars)
	case intent.ScheduleViewing:
		return g.LeadPrompt(wizard.StepViewing)
	case intent.ContactAgent:
		return g.LeadPrompt(wizard.StepContact)
	case intent.BudgetInfo:
		return g.LeadPrompt(wizard.StepBudget)
	case intent.ClearChat:
		return g.Text(KindWelcome, vars)
	}
	if _, ok := pools[KindOf(req.Intent)]; ok {
		return g.Text(KindOf(req.Intent), vars)
	}
	return g.Text(KindOf(intent.Unknown), vars)
}

func shouldDelegate(req Request) bool {
	if req.Intent == intent.Unknown {
		return strings.TrimSpace(req.Utterance) != ""
	}
	return conversational[req.Intent] &&
		len([]rune(strings.TrimSpace(req.Utterance))) > minDelegateChars &&
		len(req.History) > minDelegateDepth
}

func (g *Generator) delegate(ctx context.Context, req Request) (string, bool) {
	if screen := policy.ScreenForAI(req.Utterance); !screen.Allowed {
		g.metrics.CollaboratorError("ai", "screened_"+screen.Reason)
		return "", false
	}
	history := req.History
	if len(history) > contextTurns {
		history = history[len(history)-contextTurns:]
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	text, err := g.ai.Reply(ctx, brain.Request{
		SessionID: req.SessionID,
		Utterance: req.Utterance,
		History:   history,
		Memory:    req.Memory,
	})
	g.metrics.ObserveStage("ai_fallback", time.Since(started))

	switch {
	case errors.Is(err, brain.ErrUnavailable):
		return "", false
	case err != nil:
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		g.metrics.CollaboratorError("ai", reason)
		g.logger.Warn("ai fallback failed",
			zap.String("session_id", req.SessionID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		g.metrics.CollaboratorError("ai", "empty")
		return "", false
	}
	g.metrics.ObserveIndicator("ai_reply")
	return text, true
}

// Vars parameterizes a template.
type Vars struct {
	Memory memory.Slots
	Count  int
	Ref    string
	Fields []string
}

// Text picks a variant from the kind's pool and renders it.
func (g *Generator) Text(kind Kind, v Vars) string {
	return render(g.selector.Pick(pools[kind]), v)
}

// LeadPrompt is the question asked when the wizard shows step.
func (g *Generator) LeadPrompt(step wizard.Step) string {
	switch step {
	case wizard.StepRequirements:
		return g.Text(KindLeadNeeds, Vars{})
	case wizard.StepViewing:
		return g.Text(KindLeadViewing, Vars{})
	case wizard.StepBudget:
		return g.Text(KindLeadBudget, Vars{})
	default:
		return g.Text(KindLeadContact, Vars{})
	}
}

// ValidationGuidance explains which contact fields still need attention.
func (g *Generator) ValidationGuidance(verr *wizard.ValidationError) string {
	var fields []string
	if verr != nil {
		for _, f := range verr.Missing {
			fields = append(fields, "your "+f)
		}
		for _, f := range verr.Invalid {
			fields = append(fields, "a valid "+f)
		}
	}
	return g.Text(KindLeadInvalid, Vars{Fields: fields})
}

// FreshGreeting is the welcome pair shown on a new or cleared conversation.
func (g *Generator) FreshGreeting(m memory.Slots) (welcome, prompt string) {
	v := Vars{Memory: m}
	return g.Text(KindWelcome, v), g.Text(KindHowCanIHelp, v)
}

// DisplayPlace renders a canonical gazetteer name for display. Casers carry
// state, so one is built per call.
func DisplayPlace(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

func render(tpl string, v Vars) string {
	name, first := "", "there"
	if f := v.Memory.FirstName(); f != "" {
		name, first = ", "+f, f
	}
	noun := "properties"
	if v.Count == 1 {
		noun = "property"
	}
	where := ""
	if v.Memory.Location != "" {
		where = " in " + DisplayPlace(v.Memory.Location)
	}
	return strings.NewReplacer(
		"{name}", name,
		"{first}", first,
		"{count}", strconv.Itoa(v.Count),
		"{noun}", noun,
		"{where}", where,
		"{ref}", v.Ref,
		"{fields}", joinFields(v.Fields),
	).Replace(tpl)
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return "a few more details"
	case 1:
		return fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
}
