package teif

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// BuildPytSection construit les conditions de paiement. Liste vide : section
// omise. Escompte et période sont des groupes optionnels, omis si absents.
func BuildPytSection(terms []entity.PaymentTerm, defaultCurrency string) (*etree.Element, error) {
	const section = "PytSection"
	if len(terms) == 0 {
		return nil, nil
	}
	el := etree.NewElement(section)
	for _, t := range terms {
		if err := requireCode(section, "Pyt.PaymentTermsTypeCode", teif.TablePaymentTerms, t.TypeCode); err != nil {
			return nil, err
		}
		details := el.CreateElement("PytSectionDetails")
		pyt := details.CreateElement("Pyt")
		addText(pyt, "PaymentTermsTypeCode", t.TypeCode)
		addOptionalText(pyt, "PaymentTermsDescription", t.Note)
		if t.DueDate != nil {
			d := addText(pyt, "PaymentDueDate", t.DueDate.Format("020106"))
			d.CreateAttr("format", teif.DateFormatDDMMYY)
		}

		if t.MeansCode != "" {
			if err := requireCode(section, "Pai.code", teif.TablePaymentMeans, t.MeansCode); err != nil {
				return nil, err
			}
			pai := addText(details, "Pai", teif.Describe(teif.TablePaymentMeans, t.MeansCode))
			pai.CreateAttr("code", t.MeansCode)
		}

		if t.Discount != nil {
			disc := details.CreateElement("PytDiscount")
			moa, err := buildMoa(section, entity.Amount{
				TypeCode: teif.AmountTypeDiscount,
				Value:    t.Discount.Amount,
				Currency: t.Discount.Currency,
			}, defaultCurrency)
			if err != nil {
				return nil, err
			}
			disc.AddChild(moa)
			addText(disc, "DiscountRate", t.Discount.Rate.String())
			if t.Discount.ValidFrom != nil && t.Discount.ValidUntil != nil {
				p := addText(disc, "ValidityPeriod",
					t.Discount.ValidFrom.Format("020106")+"-"+t.Discount.ValidUntil.Format("020106"))
				p.CreateAttr("format", teif.DateFormatPeriod)
			}
		}

		if t.Period != nil {
			per := details.CreateElement("PytPeriod")
			if t.Period.Start != nil {
				d := addText(per, "StartDate", t.Period.Start.Format("020106"))
				d.CreateAttr("format", teif.DateFormatDDMMYY)
			}
			if t.Period.End != nil {
				d := addText(per, "EndDate", t.Period.End.Format("020106"))
				d.CreateAttr("format", teif.DateFormatDDMMYY)
			}
			if t.Period.DurationDays > 0 {
				dur := addText(per, "Duration", strconv.Itoa(t.Period.DurationDays))
				dur.CreateAttr("unit", teif.UnitDay)
			}
		}
	}
	return el, nil
}
