package vocabulary

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"pointeuse/internal/models"
)

// Outbound wording. Every sentence goes through Text so tenant overrides apply.

func UnknownNumber() string {
	return "Bonjour, ce numéro n'est rattaché à aucun compte. Contactez votre responsable pour être inscrit."
}

func Help(t *models.Tenant, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s !\n", Text(t, KeyGreeting), name)
	fmt.Fprintf(&b, "• ARRIVEE : %s\n", Text(t, KeyActionIn))
	fmt.Fprintf(&b, "• DEPART : %s\n", Text(t, KeyActionOut))
	if Feature(t, FeatureExpenses) {
		fmt.Fprintf(&b, "• FRAIS : %s\n", Text(t, KeyExpense))
	}
	if Feature(t, FeatureDocuments) {
		fmt.Fprintf(&b, "• DOCUMENTS : vos %ss\n", Text(t, KeyDocument))
	}
	b.WriteString("• ANNULER : abandonner l'action en cours")
	return b.String()
}

func FeatureDisabled(t *models.Tenant, key string) string {
	return fmt.Sprintf("Cette fonction (%s) n'est pas activée pour votre entreprise.", Text(t, key))
}

func CheckInDone(t *models.Tenant, at time.Time) string {
	return fmt.Sprintf("✅ %s enregistrée à %s. Bonne %s !",
		Capitalize(Text(t, KeyActionIn)), at.In(t.Location()).Format("15:04"), Text(t, KeyShift))
}

func CheckInOutsideSite(t *models.Tenant, distanceMeters float64) string {
	return fmt.Sprintf("⚠️ Vous êtes à %.0f m de votre %s. Votre %s est signalée à votre %s.",
		distanceMeters, Text(t, KeySite), Text(t, KeyActionIn), Text(t, KeyManager))
}

func AlreadyCheckedIn(t *models.Tenant, since time.Time) string {
	return fmt.Sprintf("Votre %s est déjà ouverte depuis %s. Envoyez DEPART pour la clôturer.",
		Text(t, KeyShift), since.In(t.Location()).Format("15:04"))
}

func CheckOutDone(t *models.Tenant, worked time.Duration) string {
	return fmt.Sprintf("👋 %s enregistrée. Durée : %s. %s",
		Capitalize(Text(t, KeyActionOut)), FormatDuration(worked), Text(t, KeySignature))
}

func NoOpenSession(t *models.Tenant) string {
	return fmt.Sprintf("Aucune %s ouverte. Envoyez ARRIVEE pour commencer.", Text(t, KeyShift))
}

func ExpenseAskPhoto(t *models.Tenant) string {
	return fmt.Sprintf("📸 Nouvelle %s : envoyez la photo du justificatif (ou ANNULER).", Text(t, KeyExpense))
}

func ExpenseAskAmount() string {
	return "Photo reçue. Quel est le montant TTC ? (ex : 12,50)"
}

func ExpenseAskCategory() string {
	return "Quelle catégorie ? " + strings.Join(models.ExpenseCategories, ", ")
}

func ExpenseInvalidAmount() string {
	return "Montant non reconnu. Envoyez un nombre positif, par exemple 12,50."
}

func ExpensePhotoExpected() string {
	return "J'attends la photo du justificatif. Envoyez une image ou ANNULER."
}

func ExpenseSaved(t *models.Tenant, expense *models.Expense) string {
	return fmt.Sprintf("🧾 %s de %s € (%s) enregistrée. Elle sera validée par votre %s.",
		Capitalize(Text(t, KeyExpense)), expense.Amount.StringFixed(2), expense.Category, Text(t, KeyManager))
}

func Cancelled() string {
	return "Action annulée."
}

func NothingToCancel() string {
	return "Aucune action en cours."
}

func Unrecognized(t *models.Tenant) string {
	return "Je n'ai pas compris. Envoyez AIDE pour la liste des commandes."
}

func Documents(t *models.Tenant, titles, urls []string) string {
	if len(titles) == 0 {
		return fmt.Sprintf("Aucun %s disponible pour le moment.", Text(t, KeyDocument))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📄 Vos %ss (liens valables 24h) :", Text(t, KeyDocument))
	for i := range titles {
		fmt.Fprintf(&b, "\n• %s : %s", titles[i], urls[i])
	}
	return b.String()
}

func MorningNudge(t *models.Tenant, name string) string {
	return fmt.Sprintf("%s %s, nous n'avons pas encore reçu votre %s aujourd'hui. Répondez ARRIVEE pour pointer.",
		Text(t, KeyGreeting), name, Text(t, KeyActionIn))
}

func GhostReminder(t *models.Tenant, name string, open time.Duration) string {
	return fmt.Sprintf("%s %s, votre %s est ouverte depuis %s. Pensez à envoyer DEPART pour enregistrer votre %s.",
		Text(t, KeyGreeting), name, Text(t, KeyShift), FormatDuration(open), Text(t, KeyActionOut))
}

func LateTitle(t *models.Tenant, name string) string {
	return fmt.Sprintf("Retard : %s", name)
}

func LateMessage(t *models.Tenant, name string) string {
	h, m := t.WorkStart()
	return fmt.Sprintf("%s (%s) n'a pas encore fait sa %s (début prévu à %02d:%02d).",
		name, Text(t, KeyEmployee), Text(t, KeyActionIn), h, m)
}

func GeofenceTitle(t *models.Tenant, name string) string {
	return fmt.Sprintf("Pointage hors %s : %s", Text(t, KeySite), name)
}

func GeofenceMessage(t *models.Tenant, name, siteName string, distanceMeters float64, radiusMeters int) string {
	return fmt.Sprintf("%s a fait sa %s à %.0f m du %s %s (rayon autorisé %d m).",
		name, Text(t, KeyActionIn), distanceMeters, Text(t, KeySite), siteName, radiusMeters)
}

func ExpenseTitle(t *models.Tenant, name string) string {
	return fmt.Sprintf("Nouvelle %s : %s", Text(t, KeyExpense), name)
}

func ExpenseMessage(t *models.Tenant, name string, expense *models.Expense) string {
	return fmt.Sprintf("%s a déclaré %s € (%s), en attente de validation.", name, expense.Amount.StringFixed(2), expense.Category)
}

// FormatDuration renders d as "9h05".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}

func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func DraftBroken() string {
	return "Votre saisie en cours est incomplète. Envoyez ANNULER pour recommencer."
}

func PhotoUnreadable() string {
	return "Impossible de lire cette photo. Merci de la renvoyer."
}
