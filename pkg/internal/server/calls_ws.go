package server

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/services"
	"github.com/samber/lo"
)

// callGateway is the realtime tunnel of one authenticated client. It owns a
// call watcher for the lifetime of the connection, relays every
// de-duplicated transition down the wire and accepts a small command set
// back up.
func callGateway(c *websocket.Conn) {
	user := c.Locals("user").(models.Account)

	watcher := services.SubscribeCalls(user.ID)
	defer services.UnsubscribeCalls(watcher)

	var writeLock sync.Mutex
	write := func(command models.UnifiedCommand) error {
		writeLock.Lock()
		defer writeLock.Unlock()
		return c.WriteMessage(websocket.TextMessage, command.Marshal())
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case command, ok := <-watcher.Events():
				if !ok {
					return
				}
				if err := write(command); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	var task models.UnifiedCommand
	for {
		_, packet, err := c.ReadMessage()
		if err != nil {
			break
		}
		if err := jsoniter.Unmarshal(packet, &task); err != nil {
			_ = write(models.UnifiedCommand{
				Action:  "error",
				Message: "unable to unmarshal your command, requires json request",
			})
			continue
		}

		if response := dealCommand(task, user, watcher); response != nil {
			if err := write(*response); err != nil {
				break
			}
		}
	}
}

func dealCommand(task models.UnifiedCommand, user models.Account, watcher *services.CallWatcher) *models.UnifiedCommand {
	switch task.Action {
	case "messages.send.text":
		var req struct {
			ConversationID uint   `json:"conversation_id"`
			Content        string `json:"content"`
		}
		models.FitStruct(task.Payload, &req)

		conversation, err := services.GetConversation(req.ConversationID)
		if err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		}
		if _, err := services.NewTextMessage(req.Content, user, conversation); err != nil {
			return lo.ToPtr(models.UnifiedCommandFromError(err))
		}
		return nil
	case "calls.clear":
		// Client finished its end-of-call animation, release the record.
		watcher.Clear()
		return nil
	default:
		return &models.UnifiedCommand{
			Action:  "error",
			Message: "command not found",
		}
	}
}
