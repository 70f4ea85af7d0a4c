package teif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

func TestIsValid_CodesConnus(t *testing.T) {
	assert.True(t, teif.IsValid(teif.TableDocumentType, teif.DocumentTypeInvoice))
	assert.True(t, teif.IsValid(teif.TableDateFunction, teif.DateFunctionIssue))
	assert.True(t, teif.IsValid(teif.TablePartnerFunction, teif.PartnerFunctionBuyer))
	assert.True(t, teif.IsValid(teif.TableTaxType, teif.TaxTypeTVA))
	assert.True(t, teif.IsValid(teif.TableAmountType, teif.AmountTypeTotalGross))
	assert.True(t, teif.IsValid(teif.TablePaymentMeans, teif.PaymentMeansTransfer))
	assert.True(t, teif.IsValid(teif.TableUnitOfMeasure, teif.UnitKilogram))
	assert.True(t, teif.IsValid(teif.TableCurrency, teif.CurrencyTND))
}

func TestIsValid_CodeInconnu(t *testing.T) {
	assert.False(t, teif.IsValid(teif.TableDocumentType, "I-99"))
	assert.False(t, teif.IsValid(teif.TableTaxType, ""))
	// table inconnue : tout code est invalide
	assert.False(t, teif.IsValid(teif.Table("autre"), teif.DocumentTypeInvoice))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Facture", teif.Describe(teif.TableDocumentType, teif.DocumentTypeInvoice))
	assert.Equal(t, "Taxe sur la valeur ajoutée", teif.Describe(teif.TableTaxType, teif.TaxTypeTVA))
	// code absent : libellé "Inconnu", jamais une erreur (affichage uniquement)
	assert.Equal(t, teif.DescriptionInconnue, teif.Describe(teif.TableTaxType, "I-9999"))
	assert.Equal(t, teif.DescriptionInconnue, teif.Describe(teif.Table("autre"), "x"))
}
