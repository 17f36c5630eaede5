// Package dialogue drives the property-estimate conversation: it validates each
// answer against the catalog, advances or rewinds the per-chat state machine,
// and hands the finished filter to the price gateway.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"roofbot/internal/catalog"
	"roofbot/internal/models"
	"roofbot/internal/session"
	"roofbot/internal/utils"
)

const (
	MinDays = 1
	MaxDays = 90

	DefaultLookupTimeout = 10 * time.Second
)

var (
	// ErrInvalidInput marks answers rejected by the current state's rule.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotStarted marks messages from chats without a started conversation.
	ErrNotStarted = errors.New("conversation not started")
)

// inputError carries the notice shown to the user along with the reason logged.
type inputError struct {
	notice string
	reason string
}

func (e *inputError) Error() string { return "invalid input: " + e.reason }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func reject(notice, format string, args ...any) error {
	return &inputError{notice: notice, reason: fmt.Sprintf(format, args...)}
}

// Sender delivers prompts to a chat.
type Sender interface {
	SendPrompt(ctx context.Context, chatID int64, p models.Prompt) error
}

// Gateway turns a completed filter into a human-readable estimate.
type Gateway interface {
	Lookup(ctx context.Context, f models.Filter) (string, error)
}

type Options struct {
	LookupTimeout time.Duration
}

type Machine struct {
	catalog       *catalog.Catalog
	sessions      *session.Store
	sender        Sender
	gateway       Gateway
	lookupTimeout time.Duration
	log           *slog.Logger
}

// New wires a machine. The store must create sessions with NewFSM.
func New(cat *catalog.Catalog, store *session.Store, sender Sender, gateway Gateway, opts Options, logger *slog.Logger) *Machine {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	return &Machine{
		catalog:       cat,
		sessions:      store,
		sender:        sender,
		gateway:       gateway,
		lookupTimeout: opts.LookupTimeout,
		log:           logger.With("component", "dialogue"),
	}
}

// Start opens (or restarts) the conversation of chatID and asks for a category.
func (m *Machine) Start(ctx context.Context, chatID int64) error {
	var sess *session.Session
	for {
		sess = m.sessions.Open(chatID)
		sess.Lock()
		if !sess.Evicted() {
			break
		}
		sess.Unlock()
	}
	defer sess.Unlock()

	m.restart(ctx, sess)
	return m.send(ctx, chatID, text(msgWelcome), categoryPrompt(m.catalog))
}

// Handle processes one text message. Only delivery failures are returned;
// rejected input is answered with a re-prompt.
func (m *Machine) Handle(ctx context.Context, chatID int64, input string) error {
	sess, ok := m.lock(chatID)
	if !ok || sess.State() == models.StateUninitialized {
		if ok {
			sess.Unlock()
		}
		m.log.Debug("message outside a conversation", "chat_id", chatID, "error", ErrNotStarted)
		return m.send(ctx, chatID, text(msgNotStarted))
	}
	defer sess.Unlock()

	return m.send(ctx, chatID, m.step(ctx, sess, input)...)
}

// Snapshot returns a copy of the conversation's state and filter.
func (m *Machine) Snapshot(chatID int64) (models.State, models.Filter, bool) {
	sess, ok := m.lock(chatID)
	if !ok {
		return models.StateUninitialized, models.Filter{}, false
	}
	defer sess.Unlock()
	return sess.State(), sess.Filter, true
}

func (m *Machine) lock(chatID int64) (*session.Session, bool) {
	for {
		sess, ok := m.sessions.Get(chatID)
		if !ok {
			return nil, false
		}
		sess.Lock()
		if !sess.Evicted() {
			return sess, true
		}
		sess.Unlock()
	}
}

func (m *Machine) step(ctx context.Context, sess *session.Session, input string) []models.Prompt {
	state := sess.State()
	if state != models.StateCategory && utils.NormalizeText(input) == utils.NormalizeText(GoBackLabel) {
		return m.goBack(ctx, sess)
	}

	var (
		out []models.Prompt
		err error
	)
	switch state {
	case models.StateCategory:
		out, err = m.onCategory(ctx, sess, input)
	case models.StateCity:
		out, err = m.onCity(ctx, sess, input)
	case models.StateDistrict:
		out, err = m.onDistrict(ctx, sess, input)
	case models.StateDays:
		out, err = m.onDays(ctx, sess, input)
	case models.StateDetails:
		out, err = m.onDetails(ctx, sess, input)
	case models.StateConfirm:
		out, err = m.onConfirm(ctx, sess, input)
	}

	var ierr *inputError
	if errors.As(err, &ierr) {
		m.log.Debug("input rejected", "chat_id", sess.ChatID, "state", state, "error", err)
		return []models.Prompt{text(ierr.notice), m.promptFor(sess)}
	}
	return out
}

func (m *Machine) onCategory(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	cat, ok := m.catalog.CategoryByLabel(input)
	if !ok {
		return nil, reject(msgInvalidChoice, "unknown category %q", input)
	}
	sess.Filter.Category = cat
	m.fire(ctx, sess, evNext)
	return []models.Prompt{chosen(cat.Label), m.promptFor(sess)}, nil
}

func (m *Machine) onCity(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	city, ok := m.catalog.CityByLabel(input)
	if !ok {
		return nil, reject(msgInvalidChoice, "unknown city %q", input)
	}
	sess.Filter.City = city
	m.fire(ctx, sess, evNext)
	return []models.Prompt{chosen(city.Label), m.promptFor(sess)}, nil
}

func (m *Machine) onDistrict(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	district, ok := m.catalog.MatchDistrict(sess.Filter.City.ID, input)
	if !ok {
		return nil, reject(msgInvalidDistrict, "no district of %s matches %q", sess.Filter.City.ID, input)
	}
	sess.Filter.District = district
	m.fire(ctx, sess, evNext)
	return []models.Prompt{chosen(district.Label), m.promptFor(sess)}, nil
}

func (m *Machine) onDays(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	days, err := ParseDays(input)
	if err != nil {
		return nil, err
	}
	sess.Filter.Days = days
	if sess.Filter.Category.ID.HasDetails() {
		m.fire(ctx, sess, evNext)
	} else {
		m.fire(ctx, sess, evSkipDetails)
	}
	return []models.Prompt{text(fmt.Sprintf(msgDaysChosen, days)), m.promptFor(sess)}, nil
}

// ParseDays accepts an integer in [MinDays, MaxDays], Persian digits included.
func ParseDays(input string) (int, error) {
	n, err := strconv.Atoi(utils.NormalizeText(input))
	if err != nil {
		return 0, reject(msgDaysNotNumber, "days %q is not a number", input)
	}
	if n < MinDays || n > MaxDays {
		return 0, reject(msgDaysRange, "days %d out of range", n)
	}
	return n, nil
}

func (m *Machine) onDetails(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	details, ignored := ParseDetails(sess.Filter.Category.ID, input)
	if len(ignored) > 0 {
		m.log.Debug("detail lines ignored", "chat_id", sess.ChatID, "lines", ignored)
	}
	sess.Filter.Details = details
	m.fire(ctx, sess, evNext)
	return []models.Prompt{m.promptFor(sess)}, nil
}

func (m *Machine) onConfirm(ctx context.Context, sess *session.Session, input string) ([]models.Prompt, error) {
	switch utils.NormalizeText(input) {
	case utils.NormalizeText(ConfirmLabel):
		return m.lookup(ctx, sess), nil
	case utils.NormalizeText(RestartLabel):
		m.restart(ctx, sess)
		return []models.Prompt{text(msgRestarted), m.promptFor(sess)}, nil
	}
	return nil, reject(msgPickOption, "unexpected confirmation %q", input)
}

// lookup blocks only this conversation: the session stays locked, the store does not.
func (m *Machine) lookup(ctx context.Context, sess *session.Session) []models.Prompt {
	if err := m.send(ctx, sess.ChatID, text(msgWaiting)); err != nil {
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, m.lookupTimeout)
	defer cancel()

	started := time.Now()
	result, err := m.gateway.Lookup(lctx, sess.Filter)
	if err != nil {
		m.log.Warn("price lookup failed", "chat_id", sess.ChatID, "error", err)
		return []models.Prompt{text(msgLookupFailed), m.promptFor(sess)}
	}
	m.log.Info("price lookup served",
		"chat_id", sess.ChatID,
		"category", sess.Filter.Category.ID,
		"city", sess.Filter.City.ID,
		"district", sess.Filter.District.ID,
		"took", time.Since(started).Round(time.Millisecond),
	)

	// The filter is only cleared once the estimate has reached the user.
	if err := m.send(ctx, sess.ChatID, resultPrompt(result)); err != nil {
		return []models.Prompt{text(msgLookupFailed), m.promptFor(sess)}
	}
	m.restart(ctx, sess)
	return []models.Prompt{text(msgNextRound), m.promptFor(sess)}
}

func (m *Machine) goBack(ctx context.Context, sess *session.Session) []models.Prompt {
	switch sess.State() {
	case models.StateConfirm:
		if sess.Filter.Category.ID.HasDetails() {
			m.fire(ctx, sess, evBack)
		} else {
			m.fire(ctx, sess, evBackSkipDetails)
		}
	default:
		m.fire(ctx, sess, evBack)
	}
	discardFrom(&sess.Filter, sess.State())
	return []models.Prompt{m.promptFor(sess)}
}

// discardFrom clears the answer of state and of every later state.
func discardFrom(f *models.Filter, state models.State) {
	switch state {
	case models.StateCategory:
		f.Category = models.Category{}
		fallthrough
	case models.StateCity:
		f.City = models.Option{}
		fallthrough
	case models.StateDistrict:
		f.District = models.Option{}
		fallthrough
	case models.StateDays:
		f.Days = 0
		fallthrough
	case models.StateDetails:
		f.Details = nil
	}
}

func (m *Machine) restart(ctx context.Context, sess *session.Session) {
	sess.Filter.Clear()
	if sess.State() != models.StateCategory {
		m.fire(ctx, sess, evStart)
	}
}

func (m *Machine) fire(ctx context.Context, sess *session.Session, event string) {
	from := sess.FSM.Current()
	if err := sess.FSM.Event(ctx, event); err != nil {
		m.log.Error("state transition failed", "chat_id", sess.ChatID, "from", from, "event", event, "error", err)
		return
	}
	m.log.Debug("state changed", "chat_id", sess.ChatID, "from", from, "to", sess.FSM.Current())
}

// promptFor is the question of the session's current state.
func (m *Machine) promptFor(sess *session.Session) models.Prompt {
	switch sess.State() {
	case models.StateCategory:
		return categoryPrompt(m.catalog)
	case models.StateCity:
		return cityPrompt(m.catalog)
	case models.StateDistrict:
		return districtPrompt(m.catalog, sess.Filter.City.ID)
	case models.StateDays:
		return daysPrompt()
	case models.StateDetails:
		return detailsPrompt(sess.Filter.Category.ID)
	case models.StateConfirm:
		return confirmPrompt(sess.Filter)
	}
	return text(msgNotStarted)
}

func (m *Machine) send(ctx context.Context, chatID int64, prompts ...models.Prompt) error {
	var errs []error
	for _, p := range prompts {
		if err := m.sender.SendPrompt(ctx, chatID, p); err != nil {
			m.log.Error("send prompt", "chat_id", chatID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
