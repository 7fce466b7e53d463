package vocabulary

import "pointeuse/internal/models"

// Industry keys.
const (
	IndustryGeneric      = "GENERIC"
	IndustryBTP          = "BTP"
	IndustryCleaning     = "PROPRETE"
	IndustrySecurity     = "SECURITE"
	IndustryRestaurant   = "RESTAURATION"
	IndustryHomeServices = "SERVICES_A_DOMICILE"
)

// Vocabulary keys.
const (
	KeySite      = "site"
	KeyEmployee  = "employee"
	KeyManager   = "manager"
	KeyActionIn  = "action_in"
	KeyActionOut = "action_out"
	KeyShift     = "shift"
	KeyExpense   = "expense"
	KeyDocument  = "document"
	KeyGreeting  = "greeting"
	KeySignature = "signature"
)

// Feature keys.
const (
	FeatureGPS       = "gps"
	FeaturePhotos    = "photos"
	FeatureExpenses  = "expenses"
	FeatureDocuments = "documents"
	FeatureReminders = "reminders"
)

// IndustryTemplate is the default wording and feature set of a business sector.
type IndustryTemplate struct {
	Vocabulary models.Vocabulary
	Config     models.FeatureConfig
}

var generic = IndustryTemplate{
	Vocabulary: models.Vocabulary{
		KeySite:      "site",
		KeyEmployee:  "collaborateur",
		KeyManager:   "responsable",
		KeyActionIn:  "arrivée",
		KeyActionOut: "départ",
		KeyShift:     "journée",
		KeyExpense:   "note de frais",
		KeyDocument:  "document",
		KeyGreeting:  "Bonjour",
		KeySignature: "L'équipe RH",
	},
	Config: models.FeatureConfig{
		FeatureGPS:       true,
		FeaturePhotos:    false,
		FeatureExpenses:  true,
		FeatureDocuments: true,
		FeatureReminders: true,
	},
}

// Sector templates only list what differs from GENERIC; buildTemplates fills the rest.
var sectorDiffs = map[string]IndustryTemplate{
	IndustryBTP: {
		Vocabulary: models.Vocabulary{
			KeySite:      "chantier",
			KeyEmployee:  "compagnon",
			KeyManager:   "chef de chantier",
			KeyActionIn:  "prise de poste",
			KeyActionOut: "fin de chantier",
			KeySignature: "La conduite de travaux",
		},
		Config: models.FeatureConfig{FeaturePhotos: true},
	},
	IndustryCleaning: {
		Vocabulary: models.Vocabulary{
			KeySite:      "site client",
			KeyEmployee:  "agent",
			KeyManager:   "chef d'équipe",
			KeyActionIn:  "début de prestation",
			KeyActionOut: "fin de prestation",
			KeyShift:     "prestation",
		},
		Config: models.FeatureConfig{FeaturePhotos: true, FeatureExpenses: false},
	},
	IndustrySecurity: {
		Vocabulary: models.Vocabulary{
			KeySite:      "poste",
			KeyEmployee:  "agent",
			KeyManager:   "chef de poste",
			KeyActionIn:  "prise de service",
			KeyActionOut: "fin de service",
			KeyShift:     "vacation",
		},
		Config: models.FeatureConfig{FeaturePhotos: true, FeatureExpenses: false},
	},
	IndustryRestaurant: {
		Vocabulary: models.Vocabulary{
			KeySite:     "restaurant",
			KeyEmployee: "équipier",
			KeyManager:  "manager",
			KeyShift:    "service",
		},
		Config: models.FeatureConfig{FeatureGPS: false},
	},
	IndustryHomeServices: {
		Vocabulary: models.Vocabulary{
			KeySite:      "domicile",
			KeyEmployee:  "intervenant",
			KeyManager:   "coordinateur",
			KeyActionIn:  "début d'intervention",
			KeyActionOut: "fin d'intervention",
			KeyShift:     "intervention",
		},
	},
}

var templates = buildTemplates()

func buildTemplates() map[string]IndustryTemplate {
	out := map[string]IndustryTemplate{IndustryGeneric: generic}
	for industry, diff := range sectorDiffs {
		t := IndustryTemplate{
			Vocabulary: make(models.Vocabulary, len(generic.Vocabulary)),
			Config:     make(models.FeatureConfig, len(generic.Config)),
		}
		for k, v := range generic.Vocabulary {
			t.Vocabulary[k] = v
		}
		for k, v := range diff.Vocabulary {
			t.Vocabulary[k] = v
		}
		for k, v := range generic.Config {
			t.Config[k] = v
		}
		for k, v := range diff.Config {
			t.Config[k] = v
		}
		out[industry] = t
	}
	return out
}
