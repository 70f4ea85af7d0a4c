package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// ConvertInvoiceRequest body pour POST /api/v1/invoices : la carte de champs
// faiblement typée du producteur amont. Les dates sont en AAAA-MM-JJ, les
// montants décimaux, les codes courts rattachés aux référentiels TEIF.
type ConvertInvoiceRequest struct {
	Sender       string `json:"sender"`
	SenderType   string `json:"sender_type,omitempty"`
	Receiver     string `json:"receiver,omitempty"`
	ReceiverType string `json:"receiver_type,omitempty"`

	DocumentType string `json:"document_type,omitempty"` // I-11 si vide
	Number       string `json:"number"`
	Currency     string `json:"currency,omitempty"` // TND si vide
	IssueDate    string `json:"issue_date"`
	DueDate      string `json:"due_date,omitempty"`

	Seller   PartnerDTO  `json:"seller"`
	Buyer    PartnerDTO  `json:"buyer"`
	Delivery *PartnerDTO `json:"delivery,omitempty"`

	Lines      []LineDTO       `json:"lines"`
	Taxes      []TaxDTO        `json:"taxes,omitempty"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	TotalNet   decimal.Decimal `json:"total_net"`
	TotalGross decimal.Decimal `json:"total_gross"`

	Payment    *PaymentDTO    `json:"payment,omitempty"`
	References []ReferenceDTO `json:"references,omitempty"`
	Notes      []string       `json:"notes,omitempty"`

	// IncludeSignature surcharge la configuration du serveur; nil = défaut.
	IncludeSignature *bool `json:"include_signature,omitempty"`
	// Preview assemble sans signer ni archiver en statut SIGNED.
	Preview bool `json:"preview,omitempty"`

	// ClientID est renseigné par le transport depuis le token, jamais par le
	// corps de requête. Sert à l'attribution dans les journaux.
	ClientID string `json:"-"`
}

// PartnerDTO intervenant (vendeur, acheteur, livraison).
type PartnerDTO struct {
	Identifier     string         `json:"identifier,omitempty"`
	IdentifierType string         `json:"identifier_type,omitempty"`
	Name           string         `json:"name"`
	Street         string         `json:"street,omitempty"`
	City           string         `json:"city,omitempty"`
	PostalCode     string         `json:"postal_code,omitempty"`
	Country        string         `json:"country,omitempty"`
	References     []ReferenceDTO `json:"references,omitempty"`
	Contacts       []ContactDTO   `json:"contacts,omitempty"`
}

// ContactDTO point de contact.
type ContactDTO struct {
	Function string `json:"function"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ReferenceDTO référence qualifiée.
type ReferenceDTO struct {
	Qualifier string `json:"qualifier"`
	Value     string `json:"value"`
	Date      string `json:"date,omitempty"`
}

// LineDTO ligne de facture; les sous-lignes sont imbriquées.
type LineDTO struct {
	Number      string          `json:"number"`
	ItemCode    string          `json:"item_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Taxes       []TaxDTO        `json:"taxes,omitempty"`
	SubLines    []LineDTO       `json:"sub_lines,omitempty"`
}

// TaxDTO taxe (ligne ou agrégat facture).
type TaxDTO struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	TaxableBase decimal.Decimal `json:"taxable_base,omitempty"`
}

// PaymentDTO conditions de paiement.
type PaymentDTO struct {
	TermsCode    string          `json:"terms_code,omitempty"` // I-102 si vide et date d'échéance fournie
	MeansCode    string          `json:"means_code"`
	Note         string          `json:"note,omitempty"`
	DueDate      string          `json:"due_date,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate,omitempty"`
	DurationDays int             `json:"duration_days,omitempty"`
}

// ConvertInvoiceResponse résultat d'une conversion.
type ConvertInvoiceResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Signed bool   `json:"signed"`
	XML    string `json:"xml"`
}

// DocumentResponse document archivé pour GET /api/v1/invoices/:id.
type DocumentResponse struct {
	ID                 string          `json:"id"`
	DocumentIdentifier string          `json:"document_identifier"`
	DocumentTypeCode   string          `json:"document_type_code"`
	SenderMatricule    string          `json:"sender_matricule"`
	Currency           string          `json:"currency"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	Status             string          `json:"status"`
	TTNReference       string          `json:"ttn_reference,omitempty"`
	XML                string          `json:"xml"`
	CreatedAt          string          `json:"created_at"`
}

// UpdateStatusRequest body pour PATCH /api/v1/invoices/:id/status : fait
// progresser le cycle de vie du document (soumission TTN, rejet). La référence
// RefTtnVal est obligatoire pour passer en SUBMITTED.
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	TTNReference string `json:"ttn_reference,omitempty"`
}

// DocumentSummary entrée de listage, sans le XML complet.
type DocumentSummary struct {
	ID                 string          `json:"id"`
	DocumentIdentifier string          `json:"document_identifier"`
	DocumentTypeCode   string          `json:"document_type_code"`
	SenderMatricule    string          `json:"sender_matricule"`
	Currency           string          `json:"currency"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	Status             string          `json:"status"`
	TTNReference       string          `json:"ttn_reference,omitempty"`
	CreatedAt          string          `json:"created_at"`
}

// DocumentListResponse page de documents archivés pour GET /api/v1/invoices.
type DocumentListResponse struct {
	Items []DocumentSummary `json:"items"`
	Page  PageResponse      `json:"page"`
}

// VerifyDocumentRequest body pour POST /api/v1/invoices/verify.
type VerifyDocumentRequest struct {
	XML string `json:"xml"`
}

// VerifyDocumentResponse résultat de vérification.
type VerifyDocumentResponse struct {
	Valid bool   `json:"valid"`
	Check string `json:"check,omitempty"` // contrôle en échec si invalide
	Error string `json:"error,omitempty"`
}

const dateLayout = "2006-01-02"

// ToEntity convertit la requête en facture typée. Les erreurs de forme
// (dates non parsables) sont des ValidationError au bord; l'appartenance des
// codes aux référentiels est contrôlée par les constructeurs de section.
func (r ConvertInvoiceRequest) ToEntity() (*entity.Invoice, error) {
	docType := r.DocumentType
	if docType == "" {
		docType = teif.DocumentTypeInvoice
	}
	issue, err := parseDate("Bgm", "issue_date", r.IssueDate)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		Header: entity.Header{
			SenderIdentifier:   r.Sender,
			SenderType:         r.SenderType,
			ReceiverIdentifier: r.Receiver,
			ReceiverType:       r.ReceiverType,
		},
		DocumentTypeCode:   docType,
		DocumentIdentifier: r.Number,
		Currency:           r.Currency,
		Dates: []entity.DateInfo{
			{FunctionCode: teif.DateFunctionIssue, Format: teif.DateFormatDDMMYY, Value: issue},
		},
	}
	if r.DueDate != "" {
		due, err := parseDate("Dtm", "due_date", r.DueDate)
		if err != nil {
			return nil, err
		}
		inv.Dates = append(inv.Dates, entity.DateInfo{
			FunctionCode: teif.DateFunctionPaymentDue, Format: teif.DateFormatDDMMYY, Value: due,
		})
	}

	inv.Seller, err = r.Seller.toEntity()
	if err != nil {
		return nil, err
	}
	inv.Buyer, err = r.Buyer.toEntity()
	if err != nil {
		return nil, err
	}
	if r.Delivery != nil {
		d, err := r.Delivery.toEntity()
		if err != nil {
			return nil, err
		}
		inv.Delivery = &d
	}

	for _, l := range r.Lines {
		line, err := l.toEntity()
		if err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}

	for _, t := range r.Taxes {
		inv.Taxes.Details = append(inv.Taxes.Details, t.toEntity())
	}
	inv.Taxes.Total = r.TaxTotal

	inv.Amounts = []entity.Amount{
		{TypeCode: teif.AmountTypeTotalNet, Value: r.TotalNet},
		{TypeCode: teif.AmountTypeTotalGross, Value: r.TotalGross},
	}
	if !r.TaxTotal.IsZero() {
		inv.Amounts = append(inv.Amounts, entity.Amount{TypeCode: teif.AmountTypeTotalTaxes, Value: r.TaxTotal})
	}

	if r.Payment != nil {
		term, err := r.Payment.toEntity()
		if err != nil {
			return nil, err
		}
		inv.Payments = []entity.PaymentTerm{term}
	}

	for _, ref := range r.References {
		re, err := ref.toEntity("RffSection")
		if err != nil {
			return nil, err
		}
		inv.References = append(inv.References, re)
	}

	if len(r.Notes) > 0 {
		inv.FreeTexts = []entity.FreeText{{SubjectCode: teif.FreeTextNote, Texts: r.Notes}}
	}
	return inv, nil
}

func (p PartnerDTO) toEntity() (entity.Partner, error) {
	partner := entity.Partner{
		Identifier:     p.Identifier,
		IdentifierType: p.IdentifierType,
		Name:           p.Name,
	}
	if p.Street != "" || p.City != "" || p.PostalCode != "" || p.Country != "" {
		partner.Address = &entity.Address{
			Street:      p.Street,
			City:        p.City,
			PostalCode:  p.PostalCode,
			CountryCode: p.Country,
		}
	}
	for _, r := range p.References {
		re, err := r.toEntity("PartnerDetails")
		if err != nil {
			return entity.Partner{}, err
		}
		partner.References = append(partner.References, re)
	}
	for _, c := range p.Contacts {
		partner.Contacts = append(partner.Contacts, entity.Contact{
			FunctionCode: c.Function, Name: c.Name, Phone: c.Phone, Email: c.Email,
		})
	}
	return partner, nil
}

func (l LineDTO) toEntity() (entity.Line, error) {
	line := entity.Line{
		Number:      l.Number,
		ItemCode:    l.ItemCode,
		Description: l.Description,
	}
	if !l.Quantity.IsZero() {
		line.Quantity = &entity.Quantity{Value: l.Quantity, Unit: l.Unit}
	}
	if !l.UnitPrice.IsZero() {
		line.Amounts = append(line.Amounts, entity.Amount{TypeCode: teif.AmountTypeUnitPrice, Value: l.UnitPrice})
	}
	if !l.Discount.IsZero() {
		line.Amounts = append(line.Amounts, entity.Amount{TypeCode: teif.AmountTypeDiscount, Value: l.Discount})
	}
	if !l.LineTotal.IsZero() {
		line.Amounts = append(line.Amounts, entity.Amount{TypeCode: teif.AmountTypeLineNet, Value: l.LineTotal})
	}
	for _, t := range l.Taxes {
		line.Taxes = append(line.Taxes, t.toEntity())
	}
	for _, sub := range l.SubLines {
		s, err := sub.toEntity()
		if err != nil {
			return entity.Line{}, err
		}
		line.SubLines = append(line.SubLines, s)
	}
	return line, nil
}

func (t TaxDTO) toEntity() entity.Tax {
	return entity.Tax{
		TypeCode:      t.Code,
		Rate:          t.Rate,
		Amount:        t.Amount,
		TaxableAmount: t.TaxableBase,
	}
}

func (p PaymentDTO) toEntity() (entity.PaymentTerm, error) {
	term := entity.PaymentTerm{
		TypeCode:  p.TermsCode,
		Note:      p.Note,
		MeansCode: p.MeansCode,
	}
	if term.TypeCode == "" {
		term.TypeCode = teif.PaymentTermsBasic
		if p.DueDate != "" {
			term.TypeCode = teif.PaymentTermsFixedDate
		}
	}
	if p.DueDate != "" {
		due, err := parseDate("PytSection", "due_date", p.DueDate)
		if err != nil {
			return entity.PaymentTerm{}, err
		}
		term.DueDate = &due
	}
	if !p.DiscountRate.IsZero() {
		term.Discount = &entity.DiscountTerms{Rate: p.DiscountRate}
	}
	if p.DurationDays > 0 {
		term.Period = &entity.PaymentPeriod{DurationDays: p.DurationDays}
	}
	return term, nil
}

func (r ReferenceDTO) toEntity(section string) (entity.Reference, error) {
	ref := entity.Reference{Qualifier: r.Qualifier, Value: r.Value}
	if r.Date != "" {
		d, err := parseDate(section, "reference.date", r.Date)
		if err != nil {
			return entity.Reference{}, err
		}
		ref.Date = &d
	}
	return ref, nil
}

func parseDate(section, field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.WrapValidationError(section, field, err)
	}
	return t, nil
}
