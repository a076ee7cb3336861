package engine

import "github.com/lmichaud/caq-advisor/internal/models"

// Annual subsistence capacity (CAD) the applicant must demonstrate in
// calculated mode, by program level. Amounts follow the MIFI scale for one
// person: minors at the primary level fall in the under-18 bracket, every
// other program uses the adult bracket.
var financialThresholds = map[models.StudyLevel]float64{
	models.LevelPrimary:      7541,
	models.LevelProfessional: 15078,
	models.LevelCollegial:    15078,
	models.LevelUniversity:   15078,
}

// otherTerritory is the catch-all residence entry; the ministry verifies
// financial capacity for it as if it were a listed country.
const otherTerritory = "Autre territoire"

// Countries of residence for which MIFI itself verifies financial capacity.
// For any other country the capacity review happens at the federal stage and
// the dossier only carries an informational note.
var mifiVerifiedCountries = map[string]struct{}{
	"France":        {},
	"Belgique":      {},
	"Suisse":        {},
	"Maroc":         {},
	"Algérie":       {},
	"Tunisie":       {},
	"Sénégal":       {},
	"Côte d'Ivoire": {},
	"Cameroun":      {},
	"Guinée":        {},
	"Haïti":         {},
	"Liban":         {},
}

func financeVerifiedByMIFI(country string) bool {
	if country == otherTerritory {
		return true
	}
	_, ok := mifiVerifiedCountries[country]
	return ok
}

func financialThreshold(level models.StudyLevel) float64 {
	if threshold, ok := financialThresholds[level]; ok {
		return threshold
	}
	return financialThresholds[models.LevelUniversity]
}
