package teif

import (
	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// buildMoa rend un montant typé. Les valeurs sont toujours sérialisées à 3
// décimales (millimes), quelle que soit la précision d'entrée.
func buildMoa(section string, a entity.Amount, defaultCurrency string) (*etree.Element, error) {
	if err := requireCode(section, "Moa.amountTypeCode", teif.TableAmountType, a.TypeCode); err != nil {
		return nil, err
	}
	currency := a.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	if err := requireCode(section, "Amount.currencyIdentifier", teif.TableCurrency, currency); err != nil {
		return nil, err
	}
	moa := etree.NewElement("Moa")
	moa.CreateAttr("amountTypeCode", a.TypeCode)
	moa.CreateAttr(AttrCurrencyRef, CurrencyRefISO)
	amt := addText(moa, "Amount", formatAmount(a.Value))
	amt.CreateAttr("currencyIdentifier", currency)
	if a.Description != "" {
		desc := addText(moa, "AmountDescription", a.Description)
		desc.CreateAttr("lang", teif.LangFR)
	}
	return moa, nil
}

// BuildInvoiceMoa construit la section des montants de niveau facture.
// Au moins un montant est requis (le total TTC I-183 au minimum).
func BuildInvoiceMoa(amounts []entity.Amount, defaultCurrency string) (*etree.Element, error) {
	const section = "InvoiceMoa"
	if len(amounts) == 0 {
		return nil, domain.NewValidationError(section, "Moa", "au moins un montant de facture requis")
	}
	el := etree.NewElement(section)
	details := el.CreateElement("AmountDetails")
	for _, a := range amounts {
		moa, err := buildMoa(section, a, defaultCurrency)
		if err != nil {
			return nil, err
		}
		details.AddChild(moa)
	}
	return el, nil
}
