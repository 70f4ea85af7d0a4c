package teif

import (
	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	domteif "github.com/ttnlab/teif-engine/internal/domain/teif"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// buildTax rend un bloc Tax (détail d'agrégat ou taxe de ligne) : type
// référencé, taux, et montants taxe/base quand ils sont renseignés.
func buildTax(section string, t entity.Tax, defaultCurrency string) (*etree.Element, error) {
	if err := requireCode(section, "TaxTypeName.code", teif.TableTaxType, t.TypeCode); err != nil {
		return nil, err
	}
	name := t.TypeName
	if name == "" {
		name = teif.Describe(teif.TableTaxType, t.TypeCode)
	}
	el := etree.NewElement("Tax")
	tn := addText(el, "TaxTypeName", name)
	tn.CreateAttr("code", t.TypeCode)
	if t.Category != "" {
		tn.CreateAttr("category", t.Category)
	}
	details := el.CreateElement("TaxDetails")
	// le taux garde la précision de l'appelant (contrairement aux montants)
	addText(details, "TaxRate", t.Rate.String())

	var amounts []entity.Amount
	if !t.TaxableAmount.IsZero() {
		amounts = append(amounts, entity.Amount{TypeCode: teif.AmountTypeTaxBase, Value: t.TaxableAmount, Currency: t.Currency})
	}
	if !t.Amount.IsZero() {
		amounts = append(amounts, entity.Amount{TypeCode: teif.AmountTypeTaxAmount, Value: t.Amount, Currency: t.Currency})
	}
	if len(amounts) > 0 {
		ad := el.CreateElement("AmountDetails")
		for _, a := range amounts {
			moa, err := buildMoa(section, a, defaultCurrency)
			if err != nil {
				return nil, err
			}
			ad.AddChild(moa)
		}
	}
	return el, nil
}

// BuildInvoiceTax construit l'agrégat de taxes de la facture et contrôle
// l'invariant de somme (total == somme des détails); l'écart est une erreur,
// jamais une correction silencieuse.
func BuildInvoiceTax(tax entity.InvoiceTax, defaultCurrency string) (*etree.Element, error) {
	const section = "InvoiceTax"
	if len(tax.Details) == 0 {
		return nil, nil
	}
	if err := domteif.ValidateTaxAggregate(tax); err != nil {
		return nil, domain.WrapValidationError(section, "Total", err)
	}
	el := etree.NewElement(section)
	for _, t := range tax.Details {
		detail := el.CreateElement("InvoiceTaxDetails")
		taxEl, err := buildTax(section, t, defaultCurrency)
		if err != nil {
			return nil, err
		}
		detail.AddChild(taxEl)
	}
	total, err := buildMoa(section, entity.Amount{
		TypeCode: teif.AmountTypeTotalTaxes,
		Value:    tax.Total,
	}, defaultCurrency)
	if err != nil {
		return nil, err
	}
	totalEl := el.CreateElement("AmountDetails")
	totalEl.AddChild(total)
	return el, nil
}
