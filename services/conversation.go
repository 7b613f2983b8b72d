package services

import (
	"log"
	"sync"
	"time"
)

// Multi-step input collection is modeled as an explicit finite-state
// machine. Each flow is a linear chain of awaiting-input states with a
// terminal StateDone; the transition table below is the single source of
// truth for what comes next. State is keyed by (caller, conversation) and
// discarded on completion, cancellation, error, or timeout. Collected Data
// is single-writer — only its own caller's events touch it — but State and
// UpdatedAt are also read by the sweeper goroutine, so every State/UpdatedAt
// mutation goes through the manager's mutex along with the shared map.

type Flow string

const (
	FlowRegistration     Flow = "registration"
	FlowMeetupSubmission Flow = "meetup_submission"
	FlowSaleSubmission   Flow = "sale_submission"
	FlowTargetSetting    Flow = "target_setting"
)

type ConvState string

const (
	StateAwaitingName        ConvState = "awaiting_name"
	StateAwaitingNationality ConvState = "awaiting_nationality"
	StateAwaitingPhone       ConvState = "awaiting_phone"
	StateAwaitingUpline      ConvState = "awaiting_upline"

	StateAwaitingClientCount ConvState = "awaiting_client_count"
	StateAwaitingMeetupPhoto ConvState = "awaiting_meetup_photo"

	StateAwaitingSaleAmount ConvState = "awaiting_sale_amount"
	StateAwaitingSalePhoto  ConvState = "awaiting_sale_photo"

	StateAwaitingRepSelection ConvState = "awaiting_rep_selection"
	StateAwaitingMeetupTarget ConvState = "awaiting_meetup_target"
	StateAwaitingSalesTarget  ConvState = "awaiting_sales_target"
	StateAwaitingConfirmation ConvState = "awaiting_confirmation"

	StateDone ConvState = "done"
)

var entryStates = map[Flow]ConvState{
	FlowRegistration:     StateAwaitingName,
	FlowMeetupSubmission: StateAwaitingClientCount,
	FlowSaleSubmission:   StateAwaitingSaleAmount,
	FlowTargetSetting:    StateAwaitingRepSelection,
}

var transitions = map[Flow]map[ConvState]ConvState{
	FlowRegistration: {
		StateAwaitingName:        StateAwaitingNationality,
		StateAwaitingNationality: StateAwaitingPhone,
		StateAwaitingPhone:       StateAwaitingUpline,
		StateAwaitingUpline:      StateDone,
	},
	FlowMeetupSubmission: {
		StateAwaitingClientCount: StateAwaitingMeetupPhoto,
		StateAwaitingMeetupPhoto: StateDone,
	},
	FlowSaleSubmission: {
		StateAwaitingSaleAmount: StateAwaitingSalePhoto,
		StateAwaitingSalePhoto:  StateDone,
	},
	FlowTargetSetting: {
		StateAwaitingRepSelection: StateAwaitingMeetupTarget,
		StateAwaitingMeetupTarget: StateAwaitingSalesTarget,
		StateAwaitingSalesTarget:  StateAwaitingConfirmation,
		StateAwaitingConfirmation: StateDone,
	},
}

// ConversationData holds the fields collected so far. One struct serves all
// flows; unused fields stay zero.
type ConversationData struct {
	Name        string
	Nationality string
	Phone       string
	Upline      string

	SelectedUserID   int64
	SelectedUserName string
	MeetupTarget     int
	SalesTarget      float64

	ClientCount int
	SaleAmount  float64
}

type Conversation struct {
	UserID    int64
	ChatID    int64
	Flow      Flow
	State     ConvState
	Data      ConversationData
	StartedAt time.Time
	UpdatedAt time.Time
}

type convKey struct {
	UserID int64
	ChatID int64
}

type ConversationManager struct {
	ttl time.Duration

	mu     sync.Mutex
	active map[convKey]*Conversation
}

func NewConversationManager(ttl time.Duration) *ConversationManager {
	return &ConversationManager{
		ttl:    ttl,
		active: make(map[convKey]*Conversation),
	}
}

// Begin starts a flow for the caller, replacing any conversation already in
// progress for the same (caller, chat) pair.
func (m *ConversationManager) Begin(userID, chatID int64, flow Flow) *Conversation {
	now := time.Now()
	conv := &Conversation{
		UserID:    userID,
		ChatID:    chatID,
		Flow:      flow,
		State:     entryStates[flow],
		StartedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.active[convKey{userID, chatID}] = conv
	m.mu.Unlock()
	return conv
}

// Get returns the caller's in-flight conversation, if any.
func (m *ConversationManager) Get(userID, chatID int64) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.active[convKey{userID, chatID}]
	return conv, ok
}

// Advance moves the conversation to its successor state. Terminal
// conversations are removed from the active set. Returns the new state.
func (m *ConversationManager) Advance(conv *Conversation) ConvState {
	next, ok := transitions[conv.Flow][conv.State]
	if !ok {
		next = StateDone
	}
	m.mu.Lock()
	conv.State = next
	conv.UpdatedAt = time.Now()
	if next == StateDone {
		delete(m.active, convKey{conv.UserID, conv.ChatID})
	}
	m.mu.Unlock()
	return next
}

// Touch refreshes the idle timer without changing state, used when a
// validation failure re-prompts for the same field.
func (m *ConversationManager) Touch(conv *Conversation) {
	m.mu.Lock()
	conv.UpdatedAt = time.Now()
	m.mu.Unlock()
}

// End discards the conversation. No collected data survives.
func (m *ConversationManager) End(userID, chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := convKey{userID, chatID}
	_, ok := m.active[key]
	delete(m.active, key)
	return ok
}

// SweepExpired drops conversations idle past the TTL. Run periodically by
// the maintenance worker.
func (m *ConversationManager) SweepExpired() int {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for key, conv := range m.active {
		if conv.UpdatedAt.Before(cutoff) {
			delete(m.active, key)
			swept++
		}
	}
	if swept > 0 {
		log.Printf("🧹 Swept %d expired conversations", swept)
	}
	return swept
}

// ActiveCount reports in-flight conversations, for the health endpoint.
func (m *ConversationManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
