package dto_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

func sampleRequest() dto.ConvertInvoiceRequest {
	return dto.ConvertInvoiceRequest{
		Sender:    "1234567AAM001",
		Receiver:  "7654321BBM002",
		Number:    "FA-2026-0042",
		IssueDate: "2026-03-15",
		DueDate:   "2026-04-15",
		Seller: dto.PartnerDTO{
			Name:       "Société El Bouniane SARL",
			Identifier: "1234567AAM001",
			Street:     "12 avenue Habib Bourguiba",
			City:       "Tunis",
			PostalCode: "1001",
		},
		Buyer: dto.PartnerDTO{
			Name:       "Client Distribution SA",
			Identifier: "7654321BBM002",
		},
		Lines: []dto.LineDTO{
			{
				Number:      "1",
				Description: "Prestation de conseil",
				Quantity:    decimal.NewFromInt(2),
				Unit:        "PCE",
				UnitPrice:   decimal.NewFromInt(100),
				LineTotal:   decimal.NewFromInt(200),
				Taxes: []dto.TaxDTO{
					{Code: teif.TaxTypeTVA, Rate: decimal.NewFromInt(19), Amount: decimal.NewFromInt(38)},
				},
			},
		},
		Taxes: []dto.TaxDTO{
			{Code: teif.TaxTypeTVA, Rate: decimal.NewFromInt(19), Amount: decimal.NewFromInt(38)},
		},
		TaxTotal:   decimal.NewFromInt(38),
		TotalNet:   decimal.NewFromInt(200),
		TotalGross: decimal.NewFromInt(238),
		Payment: &dto.PaymentDTO{
			MeansCode: teif.PaymentMeansTransfer,
			DueDate:   "2026-04-15",
		},
		Notes: []string{"Paiement à 30 jours"},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversion requête → facture typée
// ──────────────────────────────────────────────────────────────────────────────

func TestToEntity_FactureComplete(t *testing.T) {
	inv, err := sampleRequest().ToEntity()
	require.NoError(t, err)

	assert.Equal(t, "1234567AAM001", inv.Header.SenderIdentifier)
	assert.Equal(t, teif.DocumentTypeInvoice, inv.DocumentTypeCode,
		"le type de document par défaut doit être la facture")
	assert.Equal(t, "FA-2026-0042", inv.DocumentIdentifier)

	// Date d'émission + date d'échéance
	require.Len(t, inv.Dates, 2)
	assert.Equal(t, teif.DateFunctionIssue, inv.Dates[0].FunctionCode)
	assert.Equal(t, "2026-03-15", inv.Dates[0].Value.Format("2006-01-02"))
	assert.Equal(t, teif.DateFunctionPaymentDue, inv.Dates[1].FunctionCode)

	// Adresse du vendeur construite, acheteur sans adresse
	require.NotNil(t, inv.Seller.Address)
	assert.Equal(t, "Tunis", inv.Seller.Address.City)
	assert.Nil(t, inv.Buyer.Address, "aucun champ d'adresse fourni: pas de bloc adresse")

	// Montants de ligne typés par référentiel
	require.Len(t, inv.Lines, 1)
	line := inv.Lines[0]
	require.NotNil(t, line.Quantity)
	assert.True(t, line.Quantity.Value.Equal(decimal.NewFromInt(2)))
	var typeCodes []string
	for _, a := range line.Amounts {
		typeCodes = append(typeCodes, a.TypeCode)
	}
	assert.Contains(t, typeCodes, teif.AmountTypeUnitPrice)
	assert.Contains(t, typeCodes, teif.AmountTypeLineNet)
	assert.NotContains(t, typeCodes, teif.AmountTypeDiscount, "pas de remise fournie")

	// Agrégat de taxes + totaux
	require.Len(t, inv.Taxes.Details, 1)
	assert.True(t, inv.Taxes.Total.Equal(decimal.NewFromInt(38)))
	require.Len(t, inv.Amounts, 3, "total HT, total TTC et total des taxes")

	// Conditions de paiement : I-102 déduit de la présence d'une échéance
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, teif.PaymentTermsFixedDate, inv.Payments[0].TypeCode)
	require.NotNil(t, inv.Payments[0].DueDate)

	require.Len(t, inv.FreeTexts, 1)
	assert.Equal(t, teif.FreeTextNote, inv.FreeTexts[0].SubjectCode)
}

func TestToEntity_DateInvalide(t *testing.T) {
	req := sampleRequest()
	req.IssueDate = "15/03/2026" // mauvais format

	_, err := req.ToEntity()
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "issue_date", verr.Field)
}

func TestToEntity_EcheanceInvalide(t *testing.T) {
	req := sampleRequest()
	req.DueDate = "avril"

	_, err := req.ToEntity()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)
}

func TestToEntity_SousLignesImbriquees(t *testing.T) {
	req := sampleRequest()
	req.Lines[0].SubLines = []dto.LineDTO{
		{Number: "1.1", Description: "Détail", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
	}

	inv, err := req.ToEntity()
	require.NoError(t, err)
	require.Len(t, inv.Lines[0].SubLines, 1)
	assert.Equal(t, "1.1", inv.Lines[0].SubLines[0].Number)
}
