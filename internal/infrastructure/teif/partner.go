package teif

import (
	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// BuildPartnerDetails construit un bloc PartnerDetails (fournisseur, acheteur
// ou livraison selon functionCode). Le nom est toujours obligatoire;
// l'identifiant l'est pour le fournisseur et l'acheteur. Les groupes optionnels
// sans contenu (adresse, références, contacts) sont omis.
func BuildPartnerDetails(functionCode string, p entity.Partner) (*etree.Element, error) {
	const section = "PartnerDetails"
	if err := requireCode(section, "functionCode", teif.TablePartnerFunction, functionCode); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, domain.NewValidationError(section, "PartnerName", "nom du partenaire obligatoire")
	}

	identifierRequired := functionCode != teif.PartnerFunctionDelivery
	if identifierRequired && p.Identifier == "" {
		return nil, domain.NewValidationError(section, "PartnerIdentifier", "identifiant obligatoire pour ce rôle")
	}

	el := etree.NewElement(section)
	el.CreateAttr("functionCode", functionCode)
	nad := el.CreateElement("Nad")

	if p.Identifier != "" {
		idType := p.IdentifierType
		if idType == "" {
			idType = teif.IdentifierTypeMatricule
		}
		if err := requireCode(section, "PartnerIdentifier.type", teif.TableIdentifierType, idType); err != nil {
			return nil, err
		}
		if idType == teif.IdentifierTypeMatricule {
			if err := teif.ValidateMatriculeFiscal(p.Identifier); err != nil {
				return nil, domain.WrapValidationError(section, "PartnerIdentifier", err)
			}
		}
		id := addText(nad, "PartnerIdentifier", p.Identifier)
		id.CreateAttr("type", idType)
	}
	addText(nad, "PartnerName", p.Name)

	if addr := buildAddress(p.Address); addr != nil {
		nad.AddChild(addr)
	}

	if len(p.References) > 0 {
		rff, err := BuildRffSection(p.References)
		if err != nil {
			return nil, err
		}
		el.AddChild(rff)
	}
	if len(p.Contacts) > 0 {
		cta, err := buildCtaSection(p.Contacts)
		if err != nil {
			return nil, err
		}
		el.AddChild(cta)
	}
	return el, nil
}

// buildAddress rend PartnerAdresses, ou nil si aucun champ n'est renseigné
// (omission du groupe, pas de conteneur vide).
func buildAddress(a *entity.Address) *etree.Element {
	if a == nil {
		return nil
	}
	if a.Description == "" && a.Street == "" && a.City == "" && a.PostalCode == "" && a.CountryCode == "" {
		return nil
	}
	lang := a.Lang
	if lang == "" {
		lang = teif.LangFR
	}
	el := etree.NewElement("PartnerAdresses")
	el.CreateAttr("lang", lang)
	addOptionalText(el, "AdressDescription", a.Description)
	addOptionalText(el, "Street", a.Street)
	addOptionalText(el, "CityName", a.City)
	addOptionalText(el, "PostalCode", a.PostalCode)
	country := a.CountryCode
	if country == "" {
		country = "TN"
	}
	c := addText(el, "Country", country)
	c.CreateAttr("codeList", CountryRefISO)
	return el
}

// buildCtaSection rend les points de contact d'un partenaire.
func buildCtaSection(contacts []entity.Contact) (*etree.Element, error) {
	const section = "CtaSection"
	el := etree.NewElement(section)
	for _, c := range contacts {
		if err := requireCode(section, "Cta.functionCode", teif.TableContactFunction, c.FunctionCode); err != nil {
			return nil, err
		}
		if c.Name == "" {
			return nil, domain.NewValidationError(section, "ContactName", "nom du contact obligatoire")
		}
		cta := el.CreateElement("Cta")
		cta.CreateAttr("functionCode", c.FunctionCode)
		addText(cta, "ContactName", c.Name)
		addOptionalText(cta, "ComPhone", c.Phone)
		addOptionalText(cta, "ComElectronicMail", c.Email)
	}
	return el, nil
}

// BuildRffSection construit une liste de références qualifiées (niveau
// document ou partenaire).
func BuildRffSection(refs []entity.Reference) (*etree.Element, error) {
	const section = "RffSection"
	el := etree.NewElement(section)
	for _, r := range refs {
		if err := requireCode(section, "Reference.qualifier", teif.TableReferenceQualifier, r.Qualifier); err != nil {
			return nil, err
		}
		if r.Value == "" {
			return nil, domain.NewValidationError(section, "Reference", "valeur de référence obligatoire")
		}
		rff := el.CreateElement("Rff")
		ref := addText(rff, "Reference", r.Value)
		ref.CreateAttr("qualifier", r.Qualifier)
		if r.Date != nil {
			d := addText(rff, "ReferenceDate", r.Date.Format("020106"))
			d.CreateAttr("format", teif.DateFormatDDMMYY)
		}
	}
	return el, nil
}
