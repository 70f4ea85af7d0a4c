// Assemblage du document TEIF : ordonnance les constructeurs de section selon
// la grammaire fixe du format et fait respecter les invariants de niveau
// document avant toute signature.

package teif

import (
	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// AssemblerService assemble une facture validée en document TEIF complet.
// Les constructeurs de section sont des fonctions pures; l'assemblage est
// strictement séquentiel et le document produit n'est plus modifié après
// insertion de la signature.
type AssemblerService struct{}

// NewAssemblerService crée le service.
func NewAssemblerService() *AssemblerService {
	return &AssemblerService{}
}

// Assemble construit l'arbre TEIF complet (sans signature).
// Grammaire : InvoiceHeader puis InvoiceBody{Bgm, Dtm, PartnerSection,
// LinSection, InvoiceMoa, InvoiceTax, PytSection, RffSection, Ftx}.
func (s *AssemblerService) Assemble(inv *entity.Invoice) (*etree.Document, error) {
	if inv == nil {
		return nil, domain.NewStructureError("facture nulle")
	}
	if len(inv.Lines) == 0 {
		return nil, domain.NewStructureError("le document doit contenir au moins une ligne")
	}
	if inv.Delivery != nil && inv.Delivery.Name == "" {
		return nil, domain.NewStructureError("partenaire de livraison déclaré sans nom")
	}
	currency := inv.Currency
	if currency == "" {
		currency = teif.CurrencyTND
	}

	doc := etree.NewDocument()
	root := doc.CreateElement(RootTag)
	root.CreateAttr(AttrVersion, teif.Version)
	root.CreateAttr(AttrAgency, teif.ControllingAgency)

	header, err := BuildInvoiceHeader(inv.Header)
	if err != nil {
		return nil, err
	}
	root.AddChild(header)

	body := root.CreateElement("InvoiceBody")

	bgm, err := BuildBgm(inv.DocumentTypeCode, inv.DocumentIdentifier)
	if err != nil {
		return nil, err
	}
	body.AddChild(bgm)

	dtm, err := BuildDtm(inv.Dates)
	if err != nil {
		return nil, err
	}
	if dtm != nil {
		body.AddChild(dtm)
	}

	partners := body.CreateElement("PartnerSection")
	seller, err := BuildPartnerDetails(teif.PartnerFunctionSeller, inv.Seller)
	if err != nil {
		return nil, err
	}
	partners.AddChild(seller)
	buyer, err := BuildPartnerDetails(teif.PartnerFunctionBuyer, inv.Buyer)
	if err != nil {
		return nil, err
	}
	partners.AddChild(buyer)
	if inv.Delivery != nil {
		delivery, err := BuildPartnerDetails(teif.PartnerFunctionDelivery, *inv.Delivery)
		if err != nil {
			return nil, err
		}
		partners.AddChild(delivery)
	}

	lin, err := BuildLinSection(inv.Lines, currency)
	if err != nil {
		return nil, err
	}
	body.AddChild(lin)

	moa, err := BuildInvoiceMoa(inv.Amounts, currency)
	if err != nil {
		return nil, err
	}
	body.AddChild(moa)

	tax, err := BuildInvoiceTax(inv.Taxes, currency)
	if err != nil {
		return nil, err
	}
	if tax != nil {
		body.AddChild(tax)
	}

	pyt, err := BuildPytSection(inv.Payments, currency)
	if err != nil {
		return nil, err
	}
	if pyt != nil {
		body.AddChild(pyt)
	}

	if len(inv.References) > 0 {
		rff, err := BuildRffSection(inv.References)
		if err != nil {
			return nil, err
		}
		body.AddChild(rff)
	}

	if len(inv.FreeTexts) > 0 {
		ftx, err := buildFtxGroup("Ftx", inv.FreeTexts)
		if err != nil {
			return nil, err
		}
		body.AddChild(ftx)
	}

	return doc, nil
}

// Bytes sérialise le document en UTF-8, sans indentation ni déclaration XML :
// le flux produit est celui qui sera canonisé à la signature, tout blanc
// ajouté après coup changerait les empreintes.
func (s *AssemblerService) Bytes(doc *etree.Document) ([]byte, error) {
	return doc.WriteToBytes()
}

// Build assemble puis sérialise en une passe.
func (s *AssemblerService) Build(inv *entity.Invoice) ([]byte, error) {
	doc, err := s.Assemble(inv)
	if err != nil {
		return nil, err
	}
	return s.Bytes(doc)
}
