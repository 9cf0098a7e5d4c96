package services

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/paratalk/messaging/pkg/internal/cache"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// The broadcast bus is the low-latency half of the dual-path delivery. Every
// publish failure is swallowed after logging, the durable change feed will
// deliver the same state eventually so nothing is lost, only delayed.

func CallChannel(accountId uint) string {
	return fmt.Sprintf("calls:%d", accountId)
}

func MessageChannel(accountId uint) string {
	return fmt.Sprintf("messages:%d", accountId)
}

func PublishCallUpdate(session models.CallSession) {
	payload, _ := jsoniter.Marshal(session)
	publishTo(payload, CallChannel(session.CallerID), CallChannel(session.ReceiverID))
}

func PublishMessageEvent(message models.Message, recipients ...uint) {
	payload, _ := jsoniter.Marshal(message)
	channels := make([]string, 0, len(recipients))
	for _, id := range recipients {
		channels = append(channels, MessageChannel(id))
	}
	publishTo(payload, channels...)
}

func publishTo(payload []byte, channels ...string) {
	if cache.Rds == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, channel := range channels {
		if err := cache.Rds.Publish(ctx, channel, payload).Err(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("An error occurred when broadcasting update...")
		}
	}
}
