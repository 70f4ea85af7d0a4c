package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice est le modèle d'entrée typé d'une facture TEIF : une structure par
// section, champs optionnels explicites (pointeurs ou slices vides). Les
// constructeurs de section valident la présence et les codes au bord; une
// facture est assemblée une fois, signée au plus une fois, puis sérialisée.
type Invoice struct {
	Header             Header
	DocumentTypeCode   string // référentiel I-1 (I-11 facture, I-12 avoir, ...)
	DocumentIdentifier string // numéro du document chez l'émetteur
	Currency           string // ISO 4217; TND si vide
	Dates              []DateInfo
	Seller             Partner
	Buyer              Partner
	Delivery           *Partner // optionnel; exige au minimum un nom
	Lines              []Line
	Taxes              InvoiceTax
	Amounts            []Amount // montants de niveau facture (I-180, I-183, ...)
	Payments           []PaymentTerm
	References         []Reference
	FreeTexts          []FreeText
}

// Header : identifiants d'acheminement du message (InvoiceHeader).
// L'émetteur est obligatoire et doit porter un matricule fiscal valide quand
// son type est I-01; le destinataire est optionnel.
type Header struct {
	SenderIdentifier   string
	SenderType         string // référentiel I-0; I-01 si vide
	ReceiverIdentifier string
	ReceiverType       string
}

// DateInfo : une date datée par sa fonction (section Dtm).
// Pour le format période (ddMMyy-ddMMyy), End doit être renseigné.
type DateInfo struct {
	FunctionCode string // référentiel I-3
	Format       string // ddMMyy, ddMMyyHHmm, ddMMyy-ddMMyy
	Value        time.Time
	End          *time.Time
}

// Partner : un intervenant (fournisseur, acheteur, livraison).
type Partner struct {
	IdentifierType string // référentiel I-0; I-01 si vide
	Identifier     string
	Name           string
	Address        *Address
	References     []Reference
	Contacts       []Contact
}

// Address : adresse postale; les champs vides sont omis du XML.
type Address struct {
	Description string
	Street      string
	City        string
	PostalCode  string
	CountryCode string // ISO 3166-1; TN si vide
	Lang        string // fr si vide
}

// Reference : référence qualifiée (Rff), au niveau document ou partenaire.
type Reference struct {
	Qualifier string // référentiel I-8
	Value     string
	Date      *time.Time
}

// Contact : point de contact d'un partenaire (Cta).
type Contact struct {
	FunctionCode string // référentiel I-9
	Name         string
	Phone        string
	Email        string
}

// Line : ligne de facture (Lin). Les sous-lignes appartiennent exclusivement à
// leur parent (arbre, pas de référence arrière).
type Line struct {
	Number         string // décimal, sous-lignes admises ("1", "1.1")
	ItemIdentifier string
	ItemCode       string
	Description    string
	Lang           string // fr si vide
	Quantity       *Quantity
	Amounts        []Amount
	Taxes          []Tax
	SubLines       []Line
	FreeTexts      []FreeText
}

// Quantity : quantité facturée; la précision de l'appelant est conservée telle
// quelle à la sérialisation.
type Quantity struct {
	Value decimal.Decimal
	Unit  string // unité UNECE; PCE si vide
}

// Amount : montant typé (Moa). Les valeurs sont sérialisées à 3 décimales.
type Amount struct {
	TypeCode    string // référentiel I-17/I-18
	Value       decimal.Decimal
	Currency    string // devise de la facture si vide
	Description string // libellé optionnel (AmountDescription)
}

// Tax : une taxe (ligne ou détail d'agrégat).
type Tax struct {
	TypeCode      string // référentiel I-16
	TypeName      string // libellé; déduit du référentiel si vide
	Category      string
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	TaxableAmount decimal.Decimal
	Currency      string
}

// InvoiceTax : agrégat de taxes de la facture (InvoiceTax). L'invariant
// Total == somme des Amount des détails est contrôlé, jamais corrigé.
type InvoiceTax struct {
	Details []Tax
	Total   decimal.Decimal
}

// PaymentTerm : conditions de paiement (Pyt).
type PaymentTerm struct {
	TypeCode  string // référentiel I-10
	Note      string
	DueDate   *time.Time
	MeansCode string // référentiel I-11
	Discount  *DiscountTerms
	Period    *PaymentPeriod
}

// DiscountTerms : escompte pour paiement anticipé.
type DiscountTerms struct {
	Amount     decimal.Decimal
	Rate       decimal.Decimal
	Currency   string
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// PaymentPeriod : période de paiement (début, fin, durée en jours).
type PaymentPeriod struct {
	Start        *time.Time
	End          *time.Time
	DurationDays int
}

// FreeText : bloc de texte libre (Ftx).
type FreeText struct {
	SubjectCode string // référentiel I-4
	Lang        string // fr si vide
	Texts       []string
}
