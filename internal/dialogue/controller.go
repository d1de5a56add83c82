// Package dialogue runs the per-session conversation state machine: it
// classifies each message, applies the intent's effect through the
// collaborators and appends the assistant turns.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/brain"
	"github.com/ent0n29/realtybot/internal/intent"
	"github.com/ent0n29/realtybot/internal/leads"
	"github.com/ent0n29/realtybot/internal/listing"
	"github.com/ent0n29/realtybot/internal/memory"
	"github.com/ent0n29/realtybot/internal/observability"
	"github.com/ent0n29/realtybot/internal/persist"
	"github.com/ent0n29/realtybot/internal/policy"
	"github.com/ent0n29/realtybot/internal/reply"
	"github.com/ent0n29/realtybot/internal/session"
	"github.com/ent0n29/realtybot/internal/voice"
	"github.com/ent0n29/realtybot/internal/wizard"
)

const (
	defaultSearchTimeout  = 5 * time.Second
	defaultLeadTimeout    = 5 * time.Second
	defaultRestoreTimeout = 2 * time.Second
	defaultSearchLimit    = 10
	defaultMaxCards       = 3
)

// Deps are the collaborators shared by every controller.
type Deps struct {
	Searcher listing.Searcher
	Leads    leads.Store
	Replies  *reply.Generator
	// Store is read on restore; Writer receives every durable write.
	// Either may be nil, which disables that side.
	Store   persist.Store
	Writer  *persist.Writer
	Speaker *voice.Speaker
	Logger  *zap.Logger
	Metrics *observability.Metrics

	SearchTimeout  time.Duration
	LeadTimeout    time.Duration
	RestoreTimeout time.Duration
	SearchLimit    int
	MaxCards       int
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Searcher == nil {
		d.Searcher = listing.SampleCatalog()
	}
	if d.Leads == nil {
		d.Leads = leads.NewInMemoryStore()
	}
	if d.Replies == nil {
		d.Replies = reply.NewGenerator(nil, reply.Options{Logger: d.Logger, Metrics: d.Metrics})
	}
	if d.SearchTimeout <= 0 {
		d.SearchTimeout = defaultSearchTimeout
	}
	if d.LeadTimeout <= 0 {
		d.LeadTimeout = defaultLeadTimeout
	}
	if d.RestoreTimeout <= 0 {
		d.RestoreTimeout = defaultRestoreTimeout
	}
	if d.SearchLimit <= 0 {
		d.SearchLimit = defaultSearchLimit
	}
	if d.MaxCards <= 0 {
		d.MaxCards = defaultMaxCards
	}
	return d
}

// Controller owns one conversation. Every exported method takes the lock,
// so intent effects for a session never interleave.
type Controller struct {
	sessionID string
	clientID  string
	deps      Deps
	logger    *zap.Logger

	mu         sync.Mutex
	log        *session.Log
	memory     *memory.Store
	state      session.UIState
	wizard     *wizard.Wizard
	results    map[string]listing.PropertyRef
	voiceInput bool
	voiceMuted bool
	sink       func(turnID string, a voice.Audio)
	sinkSeq    uint64
}

// New builds a controller with an empty conversation. Call Restore before
// first use to load the client's stored state.
func New(sessionID, clientID string, deps Deps) *Controller {
	deps = deps.withDefaults()
	c := &Controller{
		sessionID: sessionID,
		clientID:  clientID,
		deps:      deps,
		logger:    deps.Logger.With(zap.String("session_id", sessionID)),
		log:       session.NewLog(),
		state:     session.UIIdle,
	}
	c.memory = memory.NewStore(memory.Slots{}, c.memoryPersister())
	return c
}

func (c *Controller) memoryPersister() memory.Persister {
	if c.deps.Writer == nil || c.clientID == "" {
		return nil
	}
	return c.deps.Writer.MemoryPersister(c.clientID)
}

func (c *Controller) SessionID() string { return c.sessionID }
func (c *Controller) ClientID() string  { return c.clientID }

// AttachAudioSink installs the receiver for synthesized assistant turns,
// replacing any earlier one. The returned detach removes the sink only while
// it is still the installed one.
func (c *Controller) AttachAudioSink(sink func(turnID string, a voice.Audio)) (detach func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinkSeq++
	id := c.sinkSeq
	c.sink = sink
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.sinkSeq == id {
			c.sink = nil
		}
	}
}

// Restore loads stored turns, memory and the mute flag. Missing or
// unreadable state starts a fresh conversation; storage errors are logged
// and never returned.
func (c *Controller) Restore(ctx context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snap persist.Snapshot
	if c.deps.Store != nil && c.clientID != "" {
		ctx, cancel := context.WithTimeout(ctx, c.deps.RestoreTimeout)
		loaded, err := persist.LoadSnapshot(ctx, c.deps.Store, c.clientID)
		cancel()
		if err != nil {
			c.deps.Metrics.StorageFailure()
			c.logger.Warn("session restore failed, starting fresh", zap.Error(err))
		} else {
			snap = loaded
		}
	}

	c.memory = memory.NewStore(snap.Memory, c.memoryPersister())
	c.voiceMuted = snap.VoiceMuted
	if len(snap.Turns) == 0 {
		c.freshConversation()
		c.persistTurns()
		return c.snapshot()
	}

	restored := make([]session.Turn, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		restored = append(restored, session.Turn{
			ID:        t.ID,
			Speaker:   session.Speaker(t.Speaker),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	c.log.Reset(restored...)
	c.state = session.UIAwaitingReply
	return c.snapshot()
}

func (c *Controller) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Memory returns the current slots.
func (c *Controller) Memory() memory.Slots {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Get()
}

// SendUserMessage handles one typed or transcribed message.
func (c *Controller) SendUserMessage(ctx context.Context, text string) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return c.snapshot()
	}
	started := time.Now()
	c.userSays(text)
	c.handleText(ctx, text)
	c.persistTurns()
	c.deps.Metrics.ObserveStage("turn_total", time.Since(started))
	return c.snapshot()
}

// SelectQuickReply handles a tapped suggestion. Actions are intent labels,
// the commands in this package, or plain text treated as typed input.
func (c *Controller) SelectQuickReply(ctx context.Context, action string) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	action = strings.TrimSpace(action)
	if action == "" {
		return c.snapshot()
	}
	label := labelFor(c.log.Last(c.deps.MaxCards+2), action)

	switch {
	case action == ActionCancel:
		c.userSays(label)
		if c.state == session.UILeadCapture {
			c.cancelLead()
		} else {
			c.say(c.deps.Replies.Text(reply.KindHowCanIHelp, reply.Vars{Memory: c.memory.Get()}), menuReplies...)
		}
	case action == ActionAnotherArea:
		c.userSays(label)
		c.leaveLead()
		c.say(c.deps.Replies.Text(reply.KindSearchAsk, reply.Vars{Memory: c.memory.Get()}), areaReplies...)
	case strings.HasPrefix(action, ActionViewPrefix):
		id := strings.TrimPrefix(action, ActionViewPrefix)
		if ref, ok := c.results[id]; ok {
			c.scheduleViewing(ref)
		} else {
			c.userSays(label)
			c.enterLead(wizard.StepViewing, "")
		}
	default:
		c.userSays(label)
		if l, ok := intent.ParseLabel(action); ok && l != intent.Unknown {
			c.deps.Metrics.Intent(string(l))
			c.apply(ctx, l, label)
		} else {
			c.handleText(ctx, label)
		}
	}
	c.persistTurns()
	return c.snapshot()
}

// ScheduleViewingFor opens the viewing step for a specific listing.
func (c *Controller) ScheduleViewingFor(_ context.Context, ref listing.PropertyRef) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleViewing(ref)
	c.persistTurns()
	return c.snapshot()
}

// SubmitLeadForm merges partial into the draft and submits. Without an open
// form, one is opened at the first step and submitted at once.
func (c *Controller) SubmitLeadForm(ctx context.Context, partial wizard.Draft) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wizard == nil {
		c.wizard = wizard.New(wizard.FirstStep, c.memory.Get())
		c.state = session.UILeadCapture
	}
	c.submitLead(ctx, partial)
	c.persistTurns()
	return c.snapshot()
}

// AdvanceLeadForm merges the current step's fields and moves forward.
func (c *Controller) AdvanceLeadForm(_ context.Context, partial wizard.Draft) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wizard == nil {
		return c.snapshot()
	}
	err := c.wizard.Next(partial)
	c.memory.MergeUpdate(c.wizard.Draft().Slots())
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		c.say(c.deps.Replies.ValidationGuidance(verr), leadReplies...)
		c.persistTurns()
	}
	return c.snapshot()
}

func (c *Controller) BackLeadForm(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wizard != nil {
		c.wizard.Back()
	}
	return c.snapshot()
}

func (c *Controller) CancelLeadForm(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wizard != nil {
		c.cancelLead()
		c.persistTurns()
	}
	return c.snapshot()
}

// ClearConversation wipes memory and the transcript and starts over with a
// fresh greeting. The voice-mute preference survives.
func (c *Controller) ClearConversation(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
	return c.snapshot()
}

func (c *Controller) ToggleVoiceInput(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voiceInput = !c.voiceInput
	return c.snapshot()
}

func (c *Controller) ToggleVoiceOutput(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voiceMuted = !c.voiceMuted
	if c.deps.Writer != nil {
		c.deps.Writer.SaveVoiceMuted(c.clientID, c.voiceMuted)
	}
	return c.snapshot()
}

// VoiceInputFailed turns voice input off after a recognition error. The
// conversation carries on with typed input and no turn is emitted.
func (c *Controller) VoiceInputFailed(_ context.Context) session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voiceInput {
		c.logger.Debug("voice input disabled after recognition failure")
	}
	c.voiceInput = false
	return c.snapshot()
}

func (c *Controller) handleText(ctx context.Context, text string) {
	if c.state == session.UILeadCapture && c.wizard != nil {
		c.handleLeadText(ctx, text)
		return
	}

	started := time.Now()
	mem := c.memory.MergeUpdate(intent.ExtractSlots(text))
	label := intent.Classify(text, mem)
	c.deps.Metrics.ObserveStage("classify", time.Since(started))
	c.deps.Metrics.Intent(string(label))
	if c.logger.Core().Enabled(zap.DebugLevel) {
		redacted, _ := policy.RedactPII(text)
		c.logger.Debug("user message classified",
			zap.String("intent", string(label)),
			zap.String("text", redacted),
			zap.Any("memory", policy.RedactSlots(mem)),
		)
	}
	c.apply(ctx, label, text)
}

func (c *Controller) apply(ctx context.Context, label intent.Label, utterance string) {
	switch label {
	case intent.PropertySearch, intent.LocationSearch:
		c.leaveLead()
		c.search(ctx, label)
	case intent.ScheduleViewing:
		c.enterLead(wizard.StepViewing, "")
	case intent.ContactAgent:
		c.enterLead(wizard.StepContact, "")
	case intent.BudgetInfo:
		c.enterLead(wizard.StepBudget, "")
	case intent.ClearChat:
		c.clear()
	default:
		c.leaveLead()
		text := c.deps.Replies.Generate(ctx, reply.Request{
			SessionID: c.sessionID,
			Intent:    label,
			Utterance: utterance,
			Memory:    c.memory.Get(),
			History:   c.history(),
		})
		c.say(text, repliesFor(label)...)
	}
}

func (c *Controller) search(ctx context.Context, label intent.Label) {
	mem := c.memory.Get()
	if !mem.HasCriteria() {
		c.say(c.deps.Replies.Text(reply.KindSearchAsk, reply.Vars{Memory: mem}), areaReplies...)
		return
	}

	q := listing.Query{
		Location:     mem.Location,
		PropertyType: mem.PropertyType,
		Bedrooms:     mem.Bedrooms,
		Limit:        c.deps.SearchLimit,
	}
	if amount, ok := intent.ParseBudget(mem.Budget); ok {
		q.MaxPrice = amount
	}

	ctx, cancel := context.WithTimeout(ctx, c.deps.SearchTimeout)
	started := time.Now()
	refs, err := c.deps.Searcher.Search(ctx, q)
	cancel()
	c.deps.Metrics.ObserveStage("search", time.Since(started))
	if err != nil {
		c.collaboratorFailed("search", err)
		c.say(c.deps.Replies.Text(reply.KindSearchError, reply.Vars{Memory: mem}), noResultReplies...)
		return
	}

	text := c.deps.Replies.Generate(ctx, reply.Request{
		SessionID:   c.sessionID,
		Intent:      label,
		Memory:      mem,
		ResultCount: len(refs),
	})
	if len(refs) == 0 {
		c.say(text, noResultReplies...)
		return
	}
	c.say(text)

	c.results = make(map[string]listing.PropertyRef, len(refs))
	for i, ref := range refs {
		c.results[ref.ID] = ref
		if i < c.deps.MaxCards {
			c.log.Append(session.Turn{
				Speaker:      session.SpeakerAssistant,
				Text:         cardText(ref),
				Properties:   []listing.PropertyRef{ref},
				QuickReplies: cardReplies(ref.ID),
			})
			c.deps.Metrics.Turn(string(session.SpeakerAssistant))
		}
	}
}

func cardText(ref listing.PropertyRef) string {
	var b strings.Builder
	b.WriteString(ref.Title)
	b.WriteString(" · ")
	b.WriteString(listing.FormatPrice(ref.Price))
	if ref.Bedrooms > 0 {
		fmt.Fprintf(&b, " · %d bed", ref.Bedrooms)
	}
	if ref.Bathrooms > 0 {
		fmt.Fprintf(&b, ", %d bath", ref.Bathrooms)
	}
	if ref.City != "" {
		b.WriteString(" · ")
		b.WriteString(reply.DisplayPlace(ref.City))
	}
	return b.String()
}

func (c *Controller) scheduleViewing(ref listing.PropertyRef) {
	title := strings.TrimSpace(ref.Title)
	if title == "" {
		title = "this property"
	}
	c.userSays("I'd like to view " + title)
	interest := title
	if ref.ID != "" {
		interest = fmt.Sprintf("%s (%s)", title, ref.ID)
	}
	c.enterLead(wizard.StepViewing, interest)
}

func (c *Controller) enterLead(step wizard.Step, interest string) {
	c.wizard = wizard.New(step, c.memory.Get())
	if interest != "" {
		c.wizard.Fill(wizard.Draft{PropertyInterest: interest})
	}
	c.state = session.UILeadCapture
	c.say(c.deps.Replies.LeadPrompt(step), leadReplies...)
}

func (c *Controller) handleLeadText(ctx context.Context, text string) {
	if isCancel(text) {
		c.cancelLead()
		return
	}

	slots := intent.ExtractSlots(text)
	mem := c.memory.MergeUpdate(slots)
	if label := intent.Classify(text, mem); label == intent.ClearChat {
		c.deps.Metrics.Intent(string(label))
		c.clear()
		return
	}

	step := c.wizard.Step()
	partial := wizard.FromSlots(slots)
	draft := c.wizard.Draft()
	switch step {
	case wizard.StepContact:
		if partial.Name == "" {
			if name := intent.BareName(text); name != "" {
				partial.Name = name
				c.memory.MergeUpdate(memory.Slots{Name: name})
			}
		}
	case wizard.StepViewing:
		if partial == (wizard.Draft{}) {
			if draft.PropertyInterest == "" {
				partial.PropertyInterest = text
			} else {
				partial.Timeline = text
			}
		}
	case wizard.StepBudget:
		if partial == (wizard.Draft{}) {
			partial.Message = text
		}
	}
	if partial == (wizard.Draft{}) {
		c.say(c.deps.Replies.LeadPrompt(step), leadReplies...)
		return
	}
	c.wizard.Fill(partial)

	switch {
	case step == wizard.LastStep:
		c.submitLead(ctx, wizard.Draft{})
	case step == wizard.StepContact:
		if verr := wizard.Validate(c.wizard.Draft()); verr != nil {
			c.say(c.deps.Replies.ValidationGuidance(verr), leadReplies...)
			return
		}
		c.advance()
	default:
		c.advance()
	}
}

func (c *Controller) advance() {
	if err := c.wizard.Next(wizard.Draft{}); err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			c.say(c.deps.Replies.ValidationGuidance(verr), leadReplies...)
		}
		return
	}
	c.say(c.deps.Replies.LeadPrompt(c.wizard.Step()), leadReplies...)
}

func (c *Controller) submitLead(ctx context.Context, partial wizard.Draft) {
	record, err := c.wizard.Submit(partial)
	c.memory.MergeUpdate(c.wizard.Draft().Slots())
	if err != nil {
		// Rejected locally; the lead store is never called.
		var verr *wizard.ValidationError
		errors.As(err, &verr)
		c.deps.Metrics.LeadSubmission("invalid")
		c.say(c.deps.Replies.ValidationGuidance(verr), leadReplies...)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.deps.LeadTimeout)
	started := time.Now()
	ref, err := c.deps.Leads.Save(ctx, record)
	cancel()
	c.deps.Metrics.ObserveStage("lead_save", time.Since(started))
	if err != nil {
		c.deps.Metrics.LeadSubmission("failed")
		c.collaboratorFailed("leads", err)
		c.say(c.deps.Replies.Text(reply.KindLeadRetry, reply.Vars{Memory: c.memory.Get()}), leadReplies...)
		return
	}

	c.deps.Metrics.LeadSubmission("saved")
	c.logger.Info("lead submitted", zap.String("reference", ref))
	c.wizard = nil
	c.state = session.UIAwaitingReply
	c.say(c.deps.Replies.Text(reply.KindLeadSaved, reply.Vars{Memory: c.memory.Get(), Ref: ref}), menuReplies...)
}

func (c *Controller) cancelLead() {
	c.wizard = nil
	c.state = session.UIAwaitingReply
	c.say(c.deps.Replies.Text(reply.KindLeadCancelled, reply.Vars{Memory: c.memory.Get()}), menuReplies...)
}

// leaveLead drops an open form when the visitor moves on to something else.
func (c *Controller) leaveLead() {
	c.wizard = nil
	if c.state == session.UILeadCapture {
		c.state = session.UIAwaitingReply
	}
}

func (c *Controller) clear() {
	c.memory.Reset()
	c.wizard = nil
	c.results = nil
	if w := c.deps.Writer; w != nil {
		w.Clear(c.clientID)
		if c.voiceMuted {
			w.SaveVoiceMuted(c.clientID, true)
		}
	}
	c.log.Reset()
	c.freshConversation()
	c.persistTurns()
}

// freshConversation appends the greeting pair and returns to Idle.
func (c *Controller) freshConversation() {
	welcome, prompt := c.deps.Replies.FreshGreeting(c.memory.Get())
	c.state = session.UIIdle
	c.log.Append(session.Turn{Speaker: session.SpeakerAssistant, Text: welcome})
	c.log.Append(session.Turn{Speaker: session.SpeakerAssistant, Text: prompt, QuickReplies: menuReplies})
}

func (c *Controller) userSays(text string) {
	c.log.Append(session.Turn{Speaker: session.SpeakerUser, Text: text})
	c.deps.Metrics.Turn(string(session.SpeakerUser))
}

// say appends an assistant turn, speaks it when voice output is on and
// leaves the conversation awaiting the next message unless a form is open.
func (c *Controller) say(text string, replies ...session.QuickReply) {
	if c.state != session.UILeadCapture {
		c.state = session.UIAwaitingReply
	}
	t := c.log.Append(session.Turn{
		Speaker:      session.SpeakerAssistant,
		Text:         text,
		QuickReplies: replies,
	})
	c.deps.Metrics.Turn(string(session.SpeakerAssistant))
	if !c.voiceMuted && c.sink != nil {
		c.deps.Speaker.Speak(voice.Job{SessionID: c.sessionID, TurnID: t.ID, Text: t.Text, Sink: c.sink})
	}
}

// history is the transcript before the latest user turn.
func (c *Controller) history() []brain.HistoryTurn {
	turns := c.log.Turns()
	if n := len(turns); n > 0 && turns[n-1].Speaker == session.SpeakerUser {
		turns = turns[:n-1]
	}
	out := make([]brain.HistoryTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, brain.HistoryTurn{Speaker: string(t.Speaker), Text: t.Text})
	}
	return out
}

func (c *Controller) collaboratorFailed(name string, err error) {
	reason := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	c.deps.Metrics.CollaboratorError(name, reason)
	c.logger.Warn("collaborator call failed",
		zap.String("collaborator", name),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (c *Controller) persistTurns() {
	if c.deps.Writer == nil {
		return
	}
	turns := c.log.Turns()
	stored := make([]persist.StoredTurn, 0, len(turns))
	for _, t := range turns {
		stored = append(stored, persist.StoredTurn{
			ID:        t.ID,
			Speaker:   string(t.Speaker),
			Text:      t.Text,
			Timestamp: t.Timestamp,
		})
	}
	c.deps.Writer.SaveTurns(c.clientID, stored)
}

func (c *Controller) snapshot() session.Snapshot {
	snap := session.Snapshot{
		SessionID:   c.sessionID,
		ClientID:    c.clientID,
		Turns:       c.log.Turns(),
		UIState:     c.state,
		VoiceInput:  c.voiceInput,
		VoiceOutput: !c.voiceMuted,
	}
	if c.state == session.UILeadCapture && c.wizard != nil {
		step := int(c.wizard.Step())
		draft := c.wizard.Draft()
		snap.LeadFormStep = &step
		snap.LeadDraft = &draft
	}
	return snap
}
