package services

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/paratalk/messaging/pkg/internal/cache"
	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// CallWatcher is the event-sequencing layer in front of one client's call
// state. Both delivery paths feed the same Apply entry point, and a
// transition only takes effect the first time its (session, status) pair is
// seen — the second copy, whichever path it rode in on, is a no-op. All the
// race handling between the broadcast, the change feed and the local miss
// timer lives here and nowhere else.
type CallWatcher struct {
	AccountID uint

	mu      sync.Mutex
	session *models.CallSession
	// Last applied pair, kept separately from the displayed session so
	// duplicates are still recognized after the record was cleared.
	lastID     uint
	lastStatus models.CallStatus

	incoming bool
	outgoing bool

	missTimer *time.Timer
	missAfter time.Duration
	// onMiss runs when an outgoing session rings out. Injectable so the
	// timeout race can be tested without a store.
	onMiss func(sessionId uint)

	events chan models.UnifiedCommand
	closed bool

	seenMessages map[uint]struct{}
}

func NewCallWatcher(accountId uint) *CallWatcher {
	missAfter := time.Duration(viper.GetInt("calling.answer_timeout")) * time.Second
	if missAfter <= 0 {
		missAfter = 60 * time.Second
	}

	return &CallWatcher{
		AccountID: accountId,
		missAfter: missAfter,
		onMiss: func(sessionId uint) {
			if _, err := MissCall(sessionId); err != nil {
				log.Warn().Err(err).Uint("session", sessionId).Msg("An error occurred when marking call as missed...")
			}
		},
		events:       make(chan models.UnifiedCommand, 64),
		seenMessages: make(map[uint]struct{}),
	}
}

// Events is the stream of de-duplicated transitions for the gateway to relay.
func (w *CallWatcher) Events() <-chan models.UnifiedCommand {
	return w.events
}

// Apply merges one session record into the watcher state. It returns whether
// the update had any effect, a duplicate of the current (id, status) pair is
// dropped.
func (w *CallWatcher) Apply(session models.CallSession) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastID == session.ID && w.lastStatus == session.Status {
		return false
	}

	w.lastID = session.ID
	w.lastStatus = session.Status

	switch session.Status {
	case models.CallStatusNew:
		w.session = &session
		w.incoming = session.ReceiverID == w.AccountID
		w.outgoing = session.CallerID == w.AccountID
		if w.outgoing {
			w.armMissTimer(session.ID)
		}
	case models.CallStatusAnswered:
		w.session = &session
		w.incoming = false
		w.outgoing = false
		w.stopMissTimer()
	case models.CallStatusRejected, models.CallStatusMissed:
		// Nothing to linger on, the ringing UI just goes away.
		w.session = nil
		w.incoming = false
		w.outgoing = false
		w.stopMissTimer()
	case models.CallStatusEnded:
		// The record stays around so both sides see the ended affordance,
		// Clear removes it once the termination animation ran.
		w.session = &session
		w.incoming = false
		w.outgoing = false
		w.stopMissTimer()
	}

	w.emit(models.UnifiedCommand{Action: "calls.update", Payload: session})

	return true
}

// armMissTimer schedules the ring-out for an outgoing session. When the timer
// fires it rechecks the watcher state first: if anything was applied since —
// an answer, a rejection, the other side ending — the callback does nothing.
func (w *CallWatcher) armMissTimer(sessionId uint) {
	w.stopMissTimerLocked()
	w.missTimer = time.AfterFunc(w.missAfter, func() {
		w.mu.Lock()
		stale := w.closed || w.lastID != sessionId || w.lastStatus != models.CallStatusNew
		w.mu.Unlock()
		if stale {
			return
		}
		w.onMiss(sessionId)
	})
}

func (w *CallWatcher) stopMissTimer() {
	w.stopMissTimerLocked()
}

func (w *CallWatcher) stopMissTimerLocked() {
	if w.missTimer != nil {
		w.missTimer.Stop()
		w.missTimer = nil
	}
}

// Current returns the session the client should render right now, plus the
// transient ringing flags.
func (w *CallWatcher) Current() (*models.CallSession, bool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return nil, false, false
	}
	session := *w.session
	return &session, w.incoming, w.outgoing
}

// Clear drops a terminal session record once the client finished its
// termination animation. Non-terminal sessions are never cleared.
func (w *CallWatcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session != nil && w.session.IsTerminal() {
		w.session = nil
	}
}

// PushMessage relays a new message event, de-duplicated by message id since
// it also arrives over both paths.
func (w *CallWatcher) PushMessage(message models.Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seenMessages[message.ID]; ok {
		return false
	}
	w.seenMessages[message.ID] = struct{}{}

	w.emit(models.UnifiedCommand{Action: "messages.new", Payload: message})

	return true
}

// emit never blocks, a slow consumer loses events rather than stalling the
// delivery paths. The caller can always refetch state over the REST surface.
func (w *CallWatcher) emit(command models.UnifiedCommand) {
	if w.closed {
		return
	}
	select {
	case w.events <- command:
	default:
	}
}

func (w *CallWatcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.stopMissTimerLocked()
	close(w.events)
}

// Watcher registry. Subscription lifetime is scoped to an authenticated
// realtime connection, not to individual calls.

var (
	watchersLock sync.Mutex
	callWatchers = make(map[uint][]*watcherEntry)
)

type watcherEntry struct {
	watcher *CallWatcher
	cancel  context.CancelFunc
}

// SubscribeCalls registers a watcher for the account and hooks it to both
// delivery paths. The returned watcher must be released with
// UnsubscribeCalls when the connection goes away.
func SubscribeCalls(accountId uint) *CallWatcher {
	watcher := NewCallWatcher(accountId)

	ctx, cancel := context.WithCancel(context.Background())
	entry := &watcherEntry{watcher: watcher, cancel: cancel}

	watchersLock.Lock()
	callWatchers[accountId] = append(callWatchers[accountId], entry)
	watchersLock.Unlock()

	if cache.Rds != nil {
		go runBroadcastSubscriber(ctx, watcher)
	}

	// Catch up on a call that was already ringing before the subscription.
	if session, err := GetActiveCall(accountId); err == nil {
		watcher.Apply(session)
	}

	return watcher
}

func UnsubscribeCalls(watcher *CallWatcher) {
	watchersLock.Lock()
	entries := callWatchers[watcher.AccountID]
	for idx, entry := range entries {
		if entry.watcher == watcher {
			entry.cancel()
			callWatchers[watcher.AccountID] = append(entries[:idx], entries[idx+1:]...)
			break
		}
	}
	watchersLock.Unlock()

	watcher.close()
}

func runBroadcastSubscriber(ctx context.Context, watcher *CallWatcher) {
	pubsub := cache.Rds.Subscribe(ctx,
		CallChannel(watcher.AccountID),
		MessageChannel(watcher.AccountID),
	)
	defer pubsub.Close()

	for {
		select {
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			switch msg.Channel {
			case CallChannel(watcher.AccountID):
				var session models.CallSession
				if err := jsoniter.UnmarshalFromString(msg.Payload, &session); err == nil {
					watcher.Apply(session)
				}
			case MessageChannel(watcher.AccountID):
				var message models.Message
				if err := jsoniter.UnmarshalFromString(msg.Payload, &message); err == nil {
					watcher.PushMessage(message)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// RouteCallUpdate delivers a change-feed record to every watcher of both
// participants. Watchers that already saw the state via broadcast treat it as
// the duplicate it is.
func RouteCallUpdate(session models.CallSession) {
	watchersLock.Lock()
	entries := append(
		append([]*watcherEntry{}, callWatchers[session.CallerID]...),
		callWatchers[session.ReceiverID]...,
	)
	watchersLock.Unlock()

	for _, entry := range entries {
		entry.watcher.Apply(session)
	}
}

// RouteMessageEvent resolves the conversation and delivers the message to
// both participants' watchers.
func RouteMessageEvent(message models.Message) {
	var conversation models.Conversation
	if err := database.C.Where("id = ?", message.ConversationID).First(&conversation).Error; err != nil {
		return
	}

	watchersLock.Lock()
	entries := append(
		append([]*watcherEntry{}, callWatchers[conversation.ParticipantAID]...),
		callWatchers[conversation.ParticipantBID]...,
	)
	watchersLock.Unlock()

	for _, entry := range entries {
		entry.watcher.PushMessage(message)
	}
}
