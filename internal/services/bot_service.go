package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pointeuse/internal/caching"
	"pointeuse/internal/common"
	"pointeuse/internal/models"
	"pointeuse/internal/vocabulary"
)

// Inbound message types as sent by the Cloud API.
const (
	MessageText     = "text"
	MessageImage    = "image"
	MessageLocation = "location"
)

type InboundMessage struct {
	ID        string
	From      string
	Type      string
	Text      string
	MediaID   string
	MimeType  string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

type command int

const (
	cmdNone command = iota
	cmdCheckIn
	cmdCheckOut
	cmdExpense
	cmdDocuments
	cmdHelp
	cmdCancel
)

var keywords = map[string]command{
	"arrivee":   cmdCheckIn,
	"arrive":    cmdCheckIn,
	"in":        cmdCheckIn,
	"debut":     cmdCheckIn,
	"depart":    cmdCheckOut,
	"out":       cmdCheckOut,
	"fin":       cmdCheckOut,
	"frais":     cmdExpense,
	"depense":   cmdExpense,
	"note":      cmdExpense,
	"documents": cmdDocuments,
	"document":  cmdDocuments,
	"docs":      cmdDocuments,
	"aide":      cmdHelp,
	"help":      cmdHelp,
	"menu":      cmdHelp,
	"annuler":   cmdCancel,
	"cancel":    cmdCancel,
	"stop":      cmdCancel,
}

// BotService runs one inbound WhatsApp message through identity, conversation and
// attendance, and answers the sender.
type BotService interface {
	HandleMessage(ctx context.Context, msg InboundMessage) error
}

type botService struct {
	identity      IdentityService
	conversations ConversationService
	attendance    AttendanceService
	documents     DocumentService
	whatsapp      WhatsAppService
	storage       MinioService
	cache         caching.CacheService
	now           func() time.Time
}

func NewBotService(identity IdentityService, conversations ConversationService, attendance AttendanceService,
	documents DocumentService, whatsapp WhatsAppService, storage MinioService, cache caching.CacheService) BotService {
	return &botService{
		identity:      identity,
		conversations: conversations,
		attendance:    attendance,
		documents:     documents,
		whatsapp:      whatsapp,
		storage:       storage,
		cache:         cache,
		now:           time.Now,
	}
}

// HandleMessage serializes turns per sender and drops redelivered message ids. The
// sender only ever receives wording, never an internal error. A turn that fails is
// forgotten so the redelivery of the same message is processed again.
func (b *botService) HandleMessage(ctx context.Context, msg InboundMessage) error {
	phone := common.NormalizePhone(msg.From)
	if phone == "" {
		log.Printf("[WHATSAPP] ignoring message %s from malformed number", msg.ID)
		return nil
	}

	release, err := b.cache.AcquireTurnLock(ctx, phone)
	if err != nil {
		return fmt.Errorf("turn lock: %w", err)
	}
	defer release()

	fresh, err := b.cache.MarkMessageSeen(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("message dedupe: %w", err)
	}
	if !fresh {
		return nil
	}

	if err := b.turn(ctx, phone, msg); err != nil {
		// fresh context: the delivery's context may already be cancelled
		if forgetErr := b.cache.ForgetMessage(context.Background(), msg.ID); forgetErr != nil {
			log.Printf("[WHATSAPP] forget message %s: %v", msg.ID, forgetErr)
		}
		return err
	}
	return nil
}

func (b *botService) turn(ctx context.Context, phone string, msg InboundMessage) error {
	employee, err := b.identity.Resolve(ctx, phone)
	if err != nil {
		return err
	}
	if employee == nil {
		b.reply(ctx, phone, vocabulary.UnknownNumber())
		return nil
	}
	if employee.Tenant == nil {
		employee.Tenant = &models.Tenant{}
	}

	answer, err := b.route(ctx, employee, msg)
	if err != nil {
		return fmt.Errorf("employee %s: %w", employee.ID, err)
	}
	if answer != "" {
		b.reply(ctx, employee.Phone, answer)
	}
	return nil
}

func (b *botService) reply(ctx context.Context, to, body string) {
	if err := b.whatsapp.Send(ctx, to, body); err != nil {
		log.Printf("[WHATSAPP] reply to %s failed: %v", to, err)
	}
}

func (b *botService) route(ctx context.Context, e *models.Employee, msg InboundMessage) (string, error) {
	t := e.Tenant
	cmd := parseCommand(msg.Text)

	if cmd == cmdCancel {
		cancelled, err := b.conversations.Cancel(ctx, e)
		if err != nil {
			return "", err
		}
		if !cancelled {
			return vocabulary.NothingToCancel(), nil
		}
		return vocabulary.Cancelled(), nil
	}

	step, err := b.conversations.Current(e)
	if err != nil {
		log.Printf("[WHATSAPP] employee %s has an unreadable draft: %v", e.ID, err)
		return vocabulary.DraftBroken(), nil
	}

	switch step.(type) {
	case models.AwaitingPhotoStep:
		return b.onPhoto(ctx, e, msg)
	case models.AwaitingAmountStep:
		return b.onAmount(ctx, e, msg.Text)
	case models.AwaitingCategoryStep:
		return b.onCategory(ctx, e, msg.Text)
	}

	if msg.Type == MessageLocation {
		return b.checkIn(ctx, e, msg, &Location{Latitude: msg.Latitude, Longitude: msg.Longitude})
	}

	switch cmd {
	case cmdCheckIn:
		return b.checkIn(ctx, e, msg, nil)
	case cmdCheckOut:
		return b.checkOut(ctx, e, msg)
	case cmdExpense:
		if !vocabulary.Feature(t, vocabulary.FeatureExpenses) {
			return vocabulary.FeatureDisabled(t, vocabulary.KeyExpense), nil
		}
		if err := b.conversations.StartExpense(ctx, e); err != nil {
			if errors.Is(err, ErrStateConflict) {
				return "", nil
			}
			return "", err
		}
		return vocabulary.ExpenseAskPhoto(t), nil
	case cmdDocuments:
		if !vocabulary.Feature(t, vocabulary.FeatureDocuments) {
			return vocabulary.FeatureDisabled(t, vocabulary.KeyDocument), nil
		}
		links, err := b.documents.Links(ctx, e)
		if err != nil {
			return "", err
		}
		titles := make([]string, len(links))
		urls := make([]string, len(links))
		for i, l := range links {
			titles[i], urls[i] = l.Title, l.URL
		}
		return vocabulary.Documents(t, titles, urls), nil
	case cmdHelp:
		return vocabulary.Help(t, e.Name), nil
	default:
		return vocabulary.Unrecognized(t), nil
	}
}

func (b *botService) at(msg InboundMessage) time.Time {
	if msg.Timestamp.IsZero() {
		return b.now()
	}
	return msg.Timestamp
}

func (b *botService) checkIn(ctx context.Context, e *models.Employee, msg InboundMessage, loc *Location) (string, error) {
	result, err := b.attendance.CheckIn(ctx, e, CheckInRequest{Location: loc, At: b.at(msg)})
	if errors.Is(err, ErrSessionAlreadyOpen) {
		if result != nil && result.Attendance != nil {
			return vocabulary.AlreadyCheckedIn(e.Tenant, result.Attendance.CheckIn), nil
		}
		return vocabulary.AlreadyCheckedIn(e.Tenant, b.at(msg)), nil
	}
	if err != nil {
		return "", err
	}

	answer := vocabulary.CheckInDone(e.Tenant, result.Attendance.CheckIn)
	if result.OutsideSite && result.Attendance.DistanceFromSite != nil {
		answer += "\n" + vocabulary.CheckInOutsideSite(e.Tenant, *result.Attendance.DistanceFromSite)
	}
	return answer, nil
}

func (b *botService) checkOut(ctx context.Context, e *models.Employee, msg InboundMessage) (string, error) {
	at := b.at(msg)
	closed, err := b.attendance.CheckOut(ctx, e, at)
	if errors.Is(err, ErrNoOpenSession) {
		return vocabulary.NoOpenSession(e.Tenant), nil
	}
	if err != nil {
		return "", err
	}
	return vocabulary.CheckOutDone(e.Tenant, closed.Duration(at)), nil
}

func (b *botService) onPhoto(ctx context.Context, e *models.Employee, msg InboundMessage) (string, error) {
	if msg.Type != MessageImage {
		return vocabulary.ExpensePhotoExpected(), nil
	}

	media, err := b.whatsapp.DownloadMedia(ctx, msg.MediaID)
	if err != nil {
		log.Printf("[WHATSAPP] media %s for employee %s: %v", msg.MediaID, e.ID, err)
		return vocabulary.PhotoUnreadable(), nil
	}
	defer media.Body.Close()

	contentType := media.ContentType
	if contentType == "" {
		contentType = msg.MimeType
	}
	key := fmt.Sprintf("expenses/%s/%s/%s%s", e.TenantID, e.ID, msg.ID, extensionFor(contentType))
	if err := b.storage.Upload(ctx, key, media.Body, media.Size, contentType); err != nil {
		return "", fmt.Errorf("store expense photo: %w", err)
	}

	if err := b.conversations.AttachPhoto(ctx, e, key); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return "", nil
		}
		return "", err
	}
	return vocabulary.ExpenseAskAmount(), nil
}

func (b *botService) onAmount(ctx context.Context, e *models.Employee, text string) (string, error) {
	amount, err := ParseAmount(text)
	if err != nil {
		return vocabulary.ExpenseInvalidAmount(), nil
	}
	if err := b.conversations.SetAmount(ctx, e, amount); err != nil {
		if errors.Is(err, ErrStateConflict) {
			return "", nil
		}
		return "", err
	}
	return vocabulary.ExpenseAskCategory(), nil
}

func (b *botService) onCategory(ctx context.Context, e *models.Employee, text string) (string, error) {
	expense, err := b.conversations.CommitExpense(ctx, e, text)
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return vocabulary.ExpenseAskCategory(), nil
	case errors.Is(err, ErrIncompleteDraft):
		return vocabulary.DraftBroken(), nil
	case errors.Is(err, ErrStateConflict):
		return "", nil
	case err != nil:
		return "", err
	}
	return vocabulary.ExpenseSaved(e.Tenant, expense), nil
}

func parseCommand(text string) command {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("é", "e", "è", "e", "ê", "e", "à", "a", "!", "", ".", "", "?", "").Replace(s)
	if s == "" {
		return cmdNone
	}
	word := strings.Fields(s)[0]
	return keywords[word]
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".jpg"
	}
}
