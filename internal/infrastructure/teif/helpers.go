package teif

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// Attributs de l'élément racine TEIF. L'orthographe "controlingAgency" (un
// seul l) est celle du schéma TTN; elle est conservée telle quelle.
const (
	RootTag         = "TEIF"
	AttrVersion     = "version"
	AttrAgency      = "controlingAgency"
	AttrCurrencyRef = "currencyCodeList"
	CurrencyRefISO  = "ISO_4217"
	CountryRefISO   = "ISO_3166-1"
)

// formatAmount sérialise un montant à 3 décimales fixes (millimes), quelle que
// soit la précision d'entrée : 2.0 → "2.000".
func formatAmount(d decimal.Decimal) string {
	return d.Round(3).StringFixed(3)
}

// formatQuantity conserve la précision de l'appelant : 2.5 → "2.5".
func formatQuantity(d decimal.Decimal) string {
	return d.String()
}

// layouts Go des formats de date du référentiel.
var dateLayouts = map[string]string{
	teif.DateFormatDDMMYY:     "020106",
	teif.DateFormatDDMMYYHHMM: "0201061504",
}

// formatDate rend la valeur texte d'une date selon le code format TEIF.
// Le format période exige une date de fin.
func formatDate(section string, d entity.DateInfo) (string, error) {
	switch d.Format {
	case teif.DateFormatDDMMYY, teif.DateFormatDDMMYYHHMM:
		return d.Value.Format(dateLayouts[d.Format]), nil
	case teif.DateFormatPeriod:
		if d.End == nil {
			return "", domain.NewValidationError(section, "DateText", "date de fin requise pour le format période")
		}
		return d.Value.Format("020106") + "-" + d.End.Format("020106"), nil
	default:
		return "", domain.NewValidationError(section, "DateText", fmt.Sprintf("format de date %q hors référentiel", d.Format))
	}
}

// addText ajoute un élément feuille avec son texte.
func addText(parent *etree.Element, tag, text string) *etree.Element {
	e := parent.CreateElement(tag)
	e.SetText(text)
	return e
}

// addOptionalText n'ajoute l'élément que si le texte est non vide (les groupes
// optionnels vides sont omis, jamais émis vides).
func addOptionalText(parent *etree.Element, tag, text string) {
	if text != "" {
		addText(parent, tag, text)
	}
}

// requireCode contrôle l'appartenance d'un code à son référentiel.
func requireCode(section, field string, table teif.Table, code string) error {
	if code == "" {
		return domain.NewValidationError(section, field, "code obligatoire absent")
	}
	if !teif.IsValid(table, code) {
		return domain.NewValidationError(section, field, fmt.Sprintf("code %q hors référentiel %s", code, table))
	}
	return nil
}
