// Package teif contient les référentiels de codes et les validations alignés
// sur le standard TEIF (Tunisian Electronic Invoice Format) v1.8.8 — TTN.
package teif

// Version et agence de contrôle du document TEIF (attributs de l'élément racine).
const (
	Version           = "1.8.8"
	ControllingAgency = "TTN"
)

// Table identifie un référentiel de codes TEIF fermé.
type Table string

const (
	TableDocumentType       Table = "document_type"
	TableDateFunction       Table = "date_function"
	TablePartnerFunction    Table = "partner_function"
	TableIdentifierType     Table = "identifier_type"
	TableAmountType         Table = "amount_type"
	TableTaxType            Table = "tax_type"
	TablePaymentTerms       Table = "payment_terms"
	TablePaymentMeans       Table = "payment_means"
	TableReferenceQualifier Table = "reference_qualifier"
	TableFreeTextSubject    Table = "free_text_subject"
	TableContactFunction    Table = "contact_function"
	TableUnitOfMeasure      Table = "unit_of_measure"
	TableCurrency           Table = "currency"
	TableLanguage           Table = "language"
)

// =============================================================================
// Référentiel I-1 — Types de document
// =============================================================================

const (
	DocumentTypeInvoice       = "I-11" // Facture
	DocumentTypeCreditNote    = "I-12" // Facture d'avoir
	DocumentTypeFeeNote       = "I-13" // Note d'honoraires
	DocumentTypeStatement     = "I-14" // Décompte
	DocumentTypeExportInvoice = "I-15" // Facture d'export
	DocumentTypePurchaseOrder = "I-16" // Bon de commande
)

var documentTypes = map[string]string{
	DocumentTypeInvoice:       "Facture",
	DocumentTypeCreditNote:    "Facture d'avoir",
	DocumentTypeFeeNote:       "Note d'honoraires",
	DocumentTypeStatement:     "Décompte",
	DocumentTypeExportInvoice: "Facture d'export",
	DocumentTypePurchaseOrder: "Bon de commande",
}

// =============================================================================
// Référentiel I-3 — Fonctions de date (attribut functionCode de Dtm)
// =============================================================================

const (
	DateFunctionIssue         = "I-31" // Date d'émission du document
	DateFunctionPaymentDue    = "I-32" // Date limite de paiement
	DateFunctionBillingPeriod = "I-36" // Période de facturation
	DateFunctionDelivery      = "I-38" // Date de livraison
)

var dateFunctions = map[string]string{
	DateFunctionIssue:         "Date d'émission du document",
	DateFunctionPaymentDue:    "Date limite de paiement",
	DateFunctionBillingPeriod: "Période de facturation",
	DateFunctionDelivery:      "Date de livraison",
}

// Formats de date admis pour l'attribut format de DateText.
const (
	DateFormatDDMMYY     = "ddMMyy"
	DateFormatDDMMYYHHMM = "ddMMyyHHmm"
	DateFormatPeriod     = "ddMMyy-ddMMyy"
)

// =============================================================================
// Référentiel I-6 — Fonctions des partenaires (attribut functionCode de PartnerDetails)
// =============================================================================

const (
	PartnerFunctionSeller   = "I-62" // Fournisseur (vendeur)
	PartnerFunctionBuyer    = "I-64" // Acheteur (client)
	PartnerFunctionDelivery = "I-66" // Destinataire de la livraison
)

var partnerFunctions = map[string]string{
	PartnerFunctionSeller:   "Fournisseur",
	PartnerFunctionBuyer:    "Acheteur",
	PartnerFunctionDelivery: "Destinataire de la livraison",
}

// =============================================================================
// Référentiel I-0 — Types d'identifiant (attribut type des identifiants)
// =============================================================================

const (
	IdentifierTypeMatricule   = "I-01" // Matricule fiscal tunisien
	IdentifierTypeCIN         = "I-02" // Carte d'identité nationale
	IdentifierTypeCarteSejour = "I-03" // Carte de séjour
	IdentifierTypeForeign     = "I-04" // Identifiant non résident
)

var identifierTypes = map[string]string{
	IdentifierTypeMatricule:   "Matricule fiscal tunisien",
	IdentifierTypeCIN:         "Carte d'identité nationale",
	IdentifierTypeCarteSejour: "Carte de séjour",
	IdentifierTypeForeign:     "Identifiant non résident",
}

// =============================================================================
// Référentiel I-17/I-18 — Types de montant (attribut amountTypeCode de Moa)
// =============================================================================

const (
	AmountTypeLineNet    = "I-171" // Montant hors taxes de la ligne
	AmountTypeLineGross  = "I-172" // Montant toutes taxes de la ligne
	AmountTypeDiscount   = "I-173" // Montant de la remise
	AmountTypeUnitPrice  = "I-174" // Prix unitaire
	AmountTypeTotalNet   = "I-180" // Montant total hors taxes
	AmountTypeTaxBase    = "I-181" // Base taxable
	AmountTypeTaxAmount  = "I-182" // Montant de la taxe
	AmountTypeTotalGross = "I-183" // Montant total toutes taxes
	AmountTypeTotalTaxes = "I-184" // Montant total des taxes
	AmountTypeExempt     = "I-185" // Montant exonéré
)

var amountTypes = map[string]string{
	AmountTypeLineNet:    "Montant hors taxes de la ligne",
	AmountTypeLineGross:  "Montant toutes taxes de la ligne",
	AmountTypeDiscount:   "Montant de la remise",
	AmountTypeUnitPrice:  "Prix unitaire",
	AmountTypeTotalNet:   "Montant total hors taxes",
	AmountTypeTaxBase:    "Base taxable",
	AmountTypeTaxAmount:  "Montant de la taxe",
	AmountTypeTotalGross: "Montant total toutes taxes",
	AmountTypeTotalTaxes: "Montant total des taxes",
	AmountTypeExempt:     "Montant exonéré",
}

// =============================================================================
// Référentiel I-16 — Types de taxe (attribut code de TaxTypeName)
// =============================================================================

const (
	TaxTypeDroitTimbre = "I-1601" // Droit de timbre
	TaxTypeTVA         = "I-1602" // Taxe sur la valeur ajoutée
	TaxTypeFODEC       = "I-1603" // FODEC
	TaxTypeRetenue     = "I-1604" // Retenue à la source
)

var taxTypes = map[string]string{
	TaxTypeDroitTimbre: "Droit de timbre",
	TaxTypeTVA:         "Taxe sur la valeur ajoutée",
	TaxTypeFODEC:       "Fonds de développement de la compétitivité",
	TaxTypeRetenue:     "Retenue à la source",
}

// =============================================================================
// Référentiel I-10 — Conditions de paiement (PaymentTearmsTypeCode)
// =============================================================================

const (
	PaymentTermsBasic       = "I-101" // Conditions générales
	PaymentTermsFixedDate   = "I-102" // Paiement à échéance
	PaymentTermsInstalments = "I-103" // Paiement échelonné
	PaymentTermsDiscount    = "I-104" // Paiement anticipé avec escompte
)

var paymentTerms = map[string]string{
	PaymentTermsBasic:       "Conditions générales",
	PaymentTermsFixedDate:   "Paiement à échéance",
	PaymentTermsInstalments: "Paiement échelonné",
	PaymentTermsDiscount:    "Paiement anticipé avec escompte",
}

// =============================================================================
// Référentiel I-11 — Moyens de paiement (code Pai)
// =============================================================================

const (
	PaymentMeansCash     = "I-111" // Espèces
	PaymentMeansCheque   = "I-112" // Chèque
	PaymentMeansTransfer = "I-113" // Virement bancaire
	PaymentMeansDraft    = "I-114" // Traite
	PaymentMeansCard     = "I-115" // Carte bancaire
	PaymentMeansSetOff   = "I-116" // Compensation
)

var paymentMeans = map[string]string{
	PaymentMeansCash:     "Espèces",
	PaymentMeansCheque:   "Chèque",
	PaymentMeansTransfer: "Virement bancaire",
	PaymentMeansDraft:    "Traite",
	PaymentMeansCard:     "Carte bancaire",
	PaymentMeansSetOff:   "Compensation",
}

// =============================================================================
// Référentiel I-8 — Qualifiants de référence (Rff)
// =============================================================================

const (
	ReferenceOrder           = "I-81" // Référence du bon de commande
	ReferenceContract        = "I-82" // Référence du contrat
	ReferenceDeliveryNote    = "I-83" // Référence du bon de livraison
	ReferencePreviousInvoice = "I-84" // Référence d'une facture antérieure
	ReferenceTTN             = "I-85" // Référence TTN
)

var referenceQualifiers = map[string]string{
	ReferenceOrder:           "Référence du bon de commande",
	ReferenceContract:        "Référence du contrat",
	ReferenceDeliveryNote:    "Référence du bon de livraison",
	ReferencePreviousInvoice: "Référence d'une facture antérieure",
	ReferenceTTN:             "Référence TTN",
}

// =============================================================================
// Référentiel I-4 — Sujets de texte libre (Ftx)
// =============================================================================

const (
	FreeTextGeneral = "I-41" // Conditions générales
	FreeTextLegal   = "I-42" // Mentions légales
	FreeTextNote    = "I-43" // Note libre
)

var freeTextSubjects = map[string]string{
	FreeTextGeneral: "Conditions générales",
	FreeTextLegal:   "Mentions légales",
	FreeTextNote:    "Note libre",
}

// =============================================================================
// Référentiel I-9 — Fonctions de contact (Cta)
// =============================================================================

const (
	ContactSales      = "I-91" // Service commercial
	ContactAccounting = "I-92" // Service comptabilité
	ContactTechnical  = "I-93" // Service technique
)

var contactFunctions = map[string]string{
	ContactSales:      "Service commercial",
	ContactAccounting: "Service comptabilité",
	ContactTechnical:  "Service technique",
}

// =============================================================================
// Unités de mesure (attribut measurementUnit de Quantity) — codes UNECE usuels
// =============================================================================

const (
	UnitPiece       = "PCE" // Pièce (unité par défaut)
	UnitKilogram    = "KGM" // Kilogramme
	UnitGram        = "GRM" // Gramme
	UnitTonne       = "TNE" // Tonne
	UnitLitre       = "LTR" // Litre
	UnitMetre       = "MTR" // Mètre
	UnitSquareMetre = "MTK" // Mètre carré
	UnitCubicMetre  = "MTQ" // Mètre cube
	UnitDozen       = "DZN" // Douzaine
	UnitHour        = "HUR" // Heure
	UnitDay         = "DAY" // Jour
	UnitMWh         = "MWH" // Mégawatt-heure
)

var unitOfMeasureCodes = map[string]string{
	UnitPiece: "Pièce", UnitKilogram: "Kilogramme", UnitGram: "Gramme",
	UnitTonne: "Tonne", UnitLitre: "Litre", UnitMetre: "Mètre",
	UnitSquareMetre: "Mètre carré", UnitCubicMetre: "Mètre cube",
	UnitDozen: "Douzaine", UnitHour: "Heure", UnitDay: "Jour",
	UnitMWh: "Mégawatt-heure",
}

// =============================================================================
// Devises (ISO 4217, sous-ensemble admis) et langues (attribut lang)
// =============================================================================

const (
	CurrencyTND = "TND" // Dinar tunisien (devise par défaut)
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
)

var currencies = map[string]string{
	CurrencyTND: "Dinar tunisien",
	CurrencyEUR: "Euro",
	CurrencyUSD: "Dollar américain",
	CurrencyGBP: "Livre sterling",
}

const (
	LangFR = "fr"
	LangAR = "ar"
	LangEN = "en"
)

var languages = map[string]string{
	LangFR: "Français",
	LangAR: "Arabe",
	LangEN: "Anglais",
}

// registry regroupe tous les référentiels; construit une fois au démarrage,
// jamais modifié ensuite.
var registry = map[Table]map[string]string{
	TableDocumentType:       documentTypes,
	TableDateFunction:       dateFunctions,
	TablePartnerFunction:    partnerFunctions,
	TableIdentifierType:     identifierTypes,
	TableAmountType:         amountTypes,
	TableTaxType:            taxTypes,
	TablePaymentTerms:       paymentTerms,
	TablePaymentMeans:       paymentMeans,
	TableReferenceQualifier: referenceQualifiers,
	TableFreeTextSubject:    freeTextSubjects,
	TableContactFunction:    contactFunctions,
	TableUnitOfMeasure:      unitOfMeasureCodes,
	TableCurrency:           currencies,
	TableLanguage:           languages,
}

// DescriptionInconnue est le libellé retourné par Describe pour un code absent.
// Toléré uniquement pour l'affichage; jamais pour la validation.
const DescriptionInconnue = "Inconnu"

// IsValid indique si code appartient au référentiel table. Une table inconnue
// invalide tout code.
func IsValid(table Table, code string) bool {
	codes, ok := registry[table]
	if !ok {
		return false
	}
	_, ok = codes[code]
	return ok
}

// Describe retourne le libellé du code, ou DescriptionInconnue s'il est absent.
func Describe(table Table, code string) string {
	if codes, ok := registry[table]; ok {
		if desc, ok := codes[code]; ok {
			return desc
		}
	}
	return DescriptionInconnue
}
