package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"pointeuse/internal/services"

	"github.com/labstack/echo/v4"
)

// WebhookHandlers receives WhatsApp Cloud API deliveries.
type WebhookHandlers struct {
	bot         services.BotService
	verifyToken string
}

func NewWebhookHandlers(bot services.BotService, verifyToken string) *WebhookHandlers {
	return &WebhookHandlers{bot: bot, verifyToken: verifyToken}
}

type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []webhookMessage `json:"messages"`
}

type webhookMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Image *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
		Caption  string `json:"caption"`
	} `json:"image,omitempty"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location,omitempty"`
	Interactive *struct {
		ButtonReply *struct {
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
	} `json:"interactive,omitempty"`
}

// Verify handles GET /webhooks/whatsapp, the subscription challenge.
func (h *WebhookHandlers) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		return echo.NewHTTPError(http.StatusForbidden, "Verification failed")
	}
	return c.String(http.StatusOK, c.QueryParam("hub.challenge"))
}

// Receive handles POST /webhooks/whatsapp. Every message is handled in turn. When any of
// them fails the delivery is answered with 503 so the Cloud API redelivers it; messages
// already handled are dropped on redelivery by id.
func (h *WebhookHandlers) Receive(c echo.Context) error {
	var payload webhookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload")
	}

	ctx := c.Request().Context()
	handled, failed := 0, 0
	for _, msg := range payload.messages() {
		if err := h.bot.HandleMessage(ctx, msg); err != nil {
			log.Printf("[WHATSAPP] message %s from %s: %v", msg.ID, msg.From, err)
			failed++
			continue
		}
		handled++
	}

	if failed > 0 {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "retry",
			"handled": handled,
			"failed":  failed,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "received",
		"handled": handled,
	})
}

func (p *webhookPayload) messages() []services.InboundMessage {
	var out []services.InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				out = append(out, m.inbound())
			}
		}
	}
	return out
}

func (m webhookMessage) inbound() services.InboundMessage {
	msg := services.InboundMessage{
		ID:   m.ID,
		From: m.From,
		Type: m.Type,
	}
	if secs, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil && secs > 0 {
		msg.Timestamp = time.Unix(secs, 0).UTC()
	}

	switch {
	case m.Text != nil:
		msg.Text = m.Text.Body
	case m.Image != nil:
		msg.MediaID = m.Image.ID
		msg.MimeType = m.Image.MimeType
		msg.Text = m.Image.Caption
	case m.Location != nil:
		msg.Latitude = m.Location.Latitude
		msg.Longitude = m.Location.Longitude
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		msg.Type = services.MessageText
		msg.Text = m.Interactive.ButtonReply.Title
	}
	return msg
}
