// Package teif contient les validations de domaine transverses du document
// TEIF : cohérence arithmétique de l'agrégat de taxes et contrôle de dérive
// des totaux de ligne. Les contrôles de présence et de référentiel restent au
// bord, dans les constructeurs de section.
package teif

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// ErrInvalidInvoice regroupe les erreurs de validation de facture.
var ErrInvalidInvoice = errors.New("facture invalide")

// ValidateTaxAggregate contrôle que le total de l'agrégat égale la somme des
// montants de taxe des détails, à la précision de sérialisation (3 décimales).
// L'écart est rapporté, jamais corrigé.
func ValidateTaxAggregate(tax entity.InvoiceTax) error {
	if len(tax.Details) == 0 {
		return nil
	}
	var sum decimal.Decimal
	for _, d := range tax.Details {
		sum = sum.Add(d.Amount)
	}
	if !tax.Total.Round(3).Equal(sum.Round(3)) {
		return fmt.Errorf("%w: total des taxes (%s) différent de la somme des détails (%s)",
			ErrInvalidInvoice, tax.Total.Round(3).String(), sum.Round(3).String())
	}
	return nil
}

// LineTotalDrift recalcule le montant HT attendu d'une ligne (prix unitaire ×
// quantité − remise) et retourne l'écart avec le montant déclaré (I-171).
// La réconciliation relève du producteur amont : l'écart est signalé pour
// journalisation, pas bloquant.
func LineTotalDrift(line entity.Line) (drift decimal.Decimal, ok bool) {
	if line.Quantity == nil {
		return decimal.Zero, false
	}
	var unit, declared, discount decimal.Decimal
	var haveUnit, haveDeclared bool
	for _, a := range line.Amounts {
		switch a.TypeCode {
		case teif.AmountTypeUnitPrice:
			unit, haveUnit = a.Value, true
		case teif.AmountTypeLineNet:
			declared, haveDeclared = a.Value, true
		case teif.AmountTypeDiscount:
			discount = a.Value
		}
	}
	if !haveUnit || !haveDeclared {
		return decimal.Zero, false
	}
	expected := unit.Mul(line.Quantity.Value).Sub(discount).Round(3)
	return declared.Round(3).Sub(expected), true
}
