package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		auth := api.Group("/auth").Name("Auth API")
		{
			auth.Post("/register", doRegister)
			auth.Post("/login", doLogin)
		}

		api.Get("/users/me", exts.AuthMiddleware, getUserinfo)
		api.Get("/users/lookup", exts.AuthMiddleware, lookupUserByPhone)

		conversations := api.Group("/conversations").Use(exts.AuthMiddleware).Name("Conversations API")
		{
			conversations.Get("/", listConversation)
			conversations.Post("/", openConversation)
			conversations.Get("/:conversationId/messages", listMessage)
			conversations.Post("/:conversationId/messages", newTextMessage)
			conversations.Put("/:conversationId/read", markConversationRead)
		}

		calls := api.Group("/calls").Use(exts.AuthMiddleware).Name("Calls API")
		{
			calls.Get("/ongoing", getOngoingCall)
			calls.Post("/", initiateCall)
			calls.Post("/:callId/answer", answerCall)
			calls.Post("/:callId/reject", rejectCall)
			calls.Post("/:callId/end", endCall)
		}

		promos := api.Group("/promos").Use(exts.AuthMiddleware).Name("Promos API")
		{
			promos.Get("/", listPromoCatalog)
			promos.Get("/me", listActivePromos)
			promos.Get("/summary", getPromoSummary)
			promos.Post("/:promoId/purchase", purchasePromo)
		}

		credits := api.Group("/credits").Use(exts.AuthMiddleware).Name("Credits API")
		{
			credits.Get("/me", getCredits)
			credits.Post("/topup", topUpCredits)
			credits.Get("/transactions", listTransactions)
		}
	}
}
