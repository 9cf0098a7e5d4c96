package services

import (
	"fmt"
	"time"

	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/phone"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func GetCallSession(id uint) (models.CallSession, error) {
	var session models.CallSession
	if err := database.C.
		Where("id = ?", id).
		Preload("Caller").
		Preload("Receiver").
		First(&session).Error; err != nil {
		return session, err
	} else {
		return session, nil
	}
}

// GetActiveCall returns the latest non-terminal session the account takes
// part in, either side.
func GetActiveCall(accountId uint) (models.CallSession, error) {
	var session models.CallSession
	if err := database.C.
		Where("caller_id = ? OR receiver_id = ?", accountId, accountId).
		Where("status IN ?", []string{models.CallStatusNew, models.CallStatusAnswered}).
		Preload("Caller").
		Preload("Receiver").
		Order("created_at DESC").
		First(&session).Error; err != nil {
		return session, err
	} else {
		return session, nil
	}
}

// InitiateCall opens a session towards the receiver phone. Admission is gated
// on the caller's call allowance only, the receiver is never charged and never
// checked — caller pays.
func InitiateCall(caller models.Account, receiverPhone string) (models.CallSession, error) {
	if !HasAllowance(caller.ID, models.UsageKindCall) {
		return models.CallSession{}, ErrInsufficientAllowance
	}

	receiver, err := GetAccountByPhone(receiverPhone)
	if err != nil {
		return models.CallSession{}, err
	}
	if receiver.ID == caller.ID {
		return models.CallSession{}, fmt.Errorf("you cannot call yourself")
	}

	session := models.CallSession{
		CallerID:      caller.ID,
		ReceiverID:    receiver.ID,
		CallerPhone:   phone.Normalize(caller.Phone),
		ReceiverPhone: phone.Normalize(receiver.Phone),
		Status:        models.CallStatusNew,
		Caller:        caller,
		Receiver:      receiver,
	}

	if err := database.C.Create(&session).Error; err != nil {
		return session, err
	}

	deliverCallUpdate(session, models.ChangeOpInsert)

	return session, nil
}

// AnswerCall moves a ringing session into the answered state and stamps the
// billing start time. Answering a session that already left the ringing state
// is a no-op returning the current record.
func AnswerCall(id uint) (models.CallSession, error) {
	session, err := GetCallSession(id)
	if err != nil {
		return session, err
	}

	if session.Status != models.CallStatusNew {
		return session, nil
	}

	session.Status = models.CallStatusAnswered
	session.StartedAt = lo.ToPtr(time.Now())
	if err := database.C.Save(&session).Error; err != nil {
		return session, err
	}

	deliverCallUpdate(session, models.ChangeOpUpdate)

	return session, nil
}

// RejectCall declines a ringing session. Never answered means never billed.
func RejectCall(id uint) (models.CallSession, error) {
	return terminateCall(id, models.CallStatusRejected)
}

// MissCall marks a session nobody picked up within the answer window. The
// caller's watcher drives this from its local timer, by the time it fires the
// session may have been answered already, in which case nothing happens.
func MissCall(id uint) (models.CallSession, error) {
	return terminateCall(id, models.CallStatusMissed)
}

func terminateCall(id uint, status models.CallStatus) (models.CallSession, error) {
	session, err := GetCallSession(id)
	if err != nil {
		return session, err
	}

	if session.Status != models.CallStatusNew {
		return session, nil
	}

	session.Status = status
	session.EndedAt = lo.ToPtr(time.Now())
	if err := database.C.Save(&session).Error; err != nil {
		return session, err
	}

	deliverCallUpdate(session, models.ChangeOpUpdate)

	return session, nil
}

// EndCall finishes a session from either the ringing or the answered state
// and settles the bill against the caller. The billed amount is the exact
// elapsed time in fractional minutes, never rounded up, and zero when the
// session was never answered.
//
// Ending an already-terminal session changes nothing and bills nothing, the
// first transition wins.
func EndCall(id uint) (models.CallSession, error) {
	session, err := GetCallSession(id)
	if err != nil {
		return session, err
	}

	if session.IsTerminal() {
		return session, nil
	}

	session.Status = models.CallStatusEnded
	session.EndedAt = lo.ToPtr(time.Now())
	if err := database.C.Save(&session).Error; err != nil {
		return session, err
	}

	// Billing happens after the call already took place. A failed deduction
	// must not un-end the call, it is logged as a known inconsistency.
	if minutes := session.BilledMinutes(); minutes > 0 {
		if ok := DeductAllowance(session.CallerID, models.UsageKindCall, minutes); !ok {
			log.Warn().
				Uint("session", session.ID).
				Uint("caller", session.CallerID).
				Float64("minutes", minutes).
				Msg("Call finished but the allowance deduction did not land...")
		}
	}

	deliverCallUpdate(session, models.ChangeOpUpdate)

	return session, nil
}

// deliverCallUpdate fans the fresh session record out over both delivery
// paths: the instant broadcast and the durable change feed. Watchers merge
// the two and drop whichever copy arrives second.
func deliverCallUpdate(session models.CallSession, op string) {
	PublishCallUpdate(session)
	AppendChangeRecord("call_sessions", op, session.ID, session)
}
