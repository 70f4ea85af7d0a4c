package teif_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	infrateif "github.com/ttnlab/teif-engine/internal/infrastructure/teif"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// sampleInvoice : facture de référence utilisée par les tests d'assemblage et
// de signature. Deux lignes dont une avec sous-ligne, agrégat TVA + timbre.
func sampleInvoice() *entity.Invoice {
	issue := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	due := issue.AddDate(0, 1, 0)
	return &entity.Invoice{
		Header: entity.Header{
			SenderIdentifier:   "1234567AAM001",
			ReceiverIdentifier: "7654321BPM002",
		},
		DocumentTypeCode:   teif.DocumentTypeInvoice,
		DocumentIdentifier: "FA-2026-0042",
		Currency:           teif.CurrencyTND,
		Dates: []entity.DateInfo{
			{FunctionCode: teif.DateFunctionIssue, Format: teif.DateFormatDDMMYY, Value: issue},
			{FunctionCode: teif.DateFunctionPaymentDue, Format: teif.DateFormatDDMMYY, Value: due},
		},
		Seller: entity.Partner{
			Identifier: "1234567AAM001",
			Name:       "Société El Bouniane SARL",
			Address: &entity.Address{
				Street:     "12 avenue Habib Bourguiba",
				City:       "Tunis",
				PostalCode: "1001",
			},
			Contacts: []entity.Contact{
				{FunctionCode: teif.ContactAccounting, Name: "Mme Trabelsi", Email: "compta@bouniane.tn"},
			},
		},
		Buyer: entity.Partner{
			Identifier: "7654321BPM002",
			Name:       "Client Distribution SA",
			References: []entity.Reference{
				{Qualifier: teif.ReferenceOrder, Value: "BC-2026-118"},
			},
		},
		Lines: []entity.Line{
			{
				Number:      "1",
				ItemCode:    "ART-77",
				Description: "Câble cuivre 2.5mm",
				Quantity:    &entity.Quantity{Value: decimal.RequireFromString("2.5"), Unit: teif.UnitKilogram},
				Amounts: []entity.Amount{
					{TypeCode: teif.AmountTypeUnitPrice, Value: decimal.RequireFromString("10")},
					{TypeCode: teif.AmountTypeLineNet, Value: decimal.RequireFromString("25")},
				},
				Taxes: []entity.Tax{
					{TypeCode: teif.TaxTypeTVA, Rate: decimal.RequireFromString("19"), Amount: decimal.RequireFromString("4.75")},
				},
				SubLines: []entity.Line{
					{
						Number:      "1.1",
						Description: "Gaine de protection",
						Quantity:    &entity.Quantity{Value: decimal.NewFromInt(3)},
					},
				},
			},
			{
				Number:      "2",
				Description: "Prestation de pose",
				Quantity:    &entity.Quantity{Value: decimal.NewFromInt(2), Unit: teif.UnitHour},
				Amounts: []entity.Amount{
					{TypeCode: teif.AmountTypeLineNet, Value: decimal.RequireFromString("40.0")},
				},
			},
		},
		Taxes: entity.InvoiceTax{
			Details: []entity.Tax{
				{TypeCode: teif.TaxTypeTVA, Rate: decimal.RequireFromString("19"),
					TaxableAmount: decimal.RequireFromString("65"), Amount: decimal.RequireFromString("12.35")},
				{TypeCode: teif.TaxTypeDroitTimbre, Rate: decimal.Zero, Amount: decimal.RequireFromString("0.6")},
			},
			Total: decimal.RequireFromString("12.95"),
		},
		Amounts: []entity.Amount{
			{TypeCode: teif.AmountTypeTotalNet, Value: decimal.RequireFromString("65")},
			{TypeCode: teif.AmountTypeTotalGross, Value: decimal.RequireFromString("77.95")},
		},
		Payments: []entity.PaymentTerm{
			{TypeCode: teif.PaymentTermsFixedDate, DueDate: &due, MeansCode: teif.PaymentMeansTransfer},
		},
	}
}

func buildSample(t *testing.T) []byte {
	t.Helper()
	out, err := infrateif.NewAssemblerService().Build(sampleInvoice())
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Déterminisme : le même input produit exactement les mêmes octets.
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_Deterministe(t *testing.T) {
	a := buildSample(t)
	b := buildSample(t)
	assert.Equal(t, a, b, "deux assemblages du même input doivent être identiques octet pour octet")
}

func TestBuild_RacineEtEntete(t *testing.T) {
	out := string(buildSample(t))
	assert.Contains(t, out, `<TEIF version="1.8.8" controlingAgency="TTN">`)
	assert.Contains(t, out, `<MessageSenderIdentifier type="I-01">1234567AAM001</MessageSenderIdentifier>`)
	assert.Contains(t, out, `<MessageRecieverIdentifier type="I-01">7654321BPM002</MessageRecieverIdentifier>`)
	assert.Contains(t, out, `<DocumentIdentifier>FA-2026-0042</DocumentIdentifier>`)
	assert.Contains(t, out, `<DocumentType code="I-11">Facture</DocumentType>`)
}

// La quantité conserve la précision de l'appelant; les montants sont fixés à
// 3 décimales quelle que soit la précision d'entrée.
func TestBuild_FormatsNumeriques(t *testing.T) {
	out := string(buildSample(t))
	assert.Contains(t, out, `<Quantity measurementUnit="KGM">2.5</Quantity>`)
	assert.Contains(t, out, `<Quantity measurementUnit="PCE">3</Quantity>`)
	// 40.0 en entrée → 40.000 sérialisé
	assert.Contains(t, out, `>40.000</Amount>`)
	assert.Contains(t, out, `>12.950</Amount>`)
	assert.NotContains(t, out, `>40.0</Amount>`)
}

func TestBuild_SousLigneImbriquee(t *testing.T) {
	out := string(buildSample(t))
	assert.Contains(t, out, `<LineNumber>1.1</LineNumber>`)
}

// Un groupe optionnel sans contenu est omis, jamais émis vide.
func TestBuild_OmissionGroupesVides(t *testing.T) {
	inv := sampleInvoice()
	inv.Buyer.Address = &entity.Address{}
	inv.Payments = nil
	inv.FreeTexts = nil
	out, err := infrateif.NewAssemblerService().Build(inv)
	require.NoError(t, err)
	s := string(out)
	// l'acheteur n'a pas d'adresse renseignée : aucun élément PartnerAdresses
	// dans son bloc, et aucune section PytSection dans le document
	assert.NotContains(t, s, "<PytSection>")
	assert.Equal(t, 1, strings.Count(s, "<PartnerAdresses"), "seul le vendeur a une adresse")
}

func TestBuild_ChampObligatoireAbsent(t *testing.T) {
	inv := sampleInvoice()
	inv.Seller.Name = ""
	_, err := infrateif.NewAssemblerService().Build(inv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "PartnerDetails", verr.Section)
	assert.Equal(t, "PartnerName", verr.Field)
}

func TestBuild_CodeHorsReferentiel(t *testing.T) {
	inv := sampleInvoice()
	inv.Lines[0].Quantity.Unit = "XYZ"
	_, err := infrateif.NewAssemblerService().Build(inv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Field, "measurementUnit")
}

func TestBuild_MatriculeInvalide(t *testing.T) {
	inv := sampleInvoice()
	inv.Header.SenderIdentifier = "1234567IIN001"
	_, err := infrateif.NewAssemblerService().Build(inv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MessageSenderIdentifier", verr.Field)
}

func TestBuild_NumeroDeLigneMalForme(t *testing.T) {
	inv := sampleInvoice()
	inv.Lines[0].Number = "1..2"
	_, err := infrateif.NewAssemblerService().Build(inv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "LineNumber", verr.Field)
}

func TestBuild_AgregatTaxesIncoherent(t *testing.T) {
	inv := sampleInvoice()
	inv.Taxes.Total = decimal.RequireFromString("99")
	_, err := infrateif.NewAssemblerService().Build(inv)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "InvoiceTax", verr.Section)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariants de structure (assembleur).
// ──────────────────────────────────────────────────────────────────────────────

func TestAssemble_SansLigne(t *testing.T) {
	inv := sampleInvoice()
	inv.Lines = nil
	_, err := infrateif.NewAssemblerService().Assemble(inv)
	var serr *domain.StructureError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Message, "ligne")
}

func TestAssemble_LivraisonSansNom(t *testing.T) {
	inv := sampleInvoice()
	inv.Delivery = &entity.Partner{Identifier: "1234567AAM001"}
	_, err := infrateif.NewAssemblerService().Assemble(inv)
	var serr *domain.StructureError
	require.ErrorAs(t, err, &serr)
}

func TestAssemble_FactureNulle(t *testing.T) {
	_, err := infrateif.NewAssemblerService().Assemble(nil)
	var serr *domain.StructureError
	require.ErrorAs(t, err, &serr)
}

// ──────────────────────────────────────────────────────────────────────────────
// Canonisation : idempotence de la forme canonique.
// ──────────────────────────────────────────────────────────────────────────────

func TestCanonicalize_Idempotente(t *testing.T) {
	doc := buildSample(t)
	once, err := infrateif.Canonicalize(doc)
	require.NoError(t, err)
	twice, err := infrateif.Canonicalize(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice, "canoniser une forme canonique doit être l'identité")
}

// Deux sérialisations du même contenu logique (ordre d'attributs différent)
// produisent la même forme canonique.
func TestCanonicalize_OrdreAttributsIndifferent(t *testing.T) {
	a := []byte(`<Doc b="2" a="1"><X/></Doc>`)
	b := []byte(`<Doc a="1" b="2"><X></X></Doc>`)
	ca, err := infrateif.Canonicalize(a)
	require.NoError(t, err)
	cb, err := infrateif.Canonicalize(b)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}
