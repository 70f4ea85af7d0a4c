package teif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// ──────────────────────────────────────────────────────────────────────────────
// Grammaire positionnelle du matricule fiscal : chaque position est contrôlée
// indépendamment. Les vecteurs couvrent la longueur, la clé de contrôle
// interdite et les codes hors référentiel.
// ──────────────────────────────────────────────────────────────────────────────

func TestParseMatriculeFiscal_Valide(t *testing.T) {
	m, err := teif.ParseMatriculeFiscal("1234567AAM001")
	require.NoError(t, err)
	assert.Equal(t, "1234567", m.Serial)
	assert.Equal(t, byte('A'), m.ControlKey)
	assert.Equal(t, byte('A'), m.TVACode)
	assert.Equal(t, byte('M'), m.CategoryCode)
	assert.Equal(t, "001", m.Establishment)
	assert.Equal(t, "1234567AAM001", m.String())
}

func TestParseMatriculeFiscal_AvecSeparateurs(t *testing.T) {
	m, err := teif.ParseMatriculeFiscal("1234567/A/A/M/001")
	require.NoError(t, err)
	assert.Equal(t, "1234567AAM001", m.String())
}

func TestParseMatriculeFiscal_MinusculesNormalisees(t *testing.T) {
	err := teif.ValidateMatriculeFiscal("1234567aam001")
	assert.NoError(t, err)
}

func TestParseMatriculeFiscal_Invalides(t *testing.T) {
	cases := []struct {
		name string
		id   string
	}{
		{"cle de controle interdite I", "1234567IIN001"},
		{"cle de controle interdite O", "1234567OAM001"},
		{"cle de controle interdite U", "1234567UAM001"},
		{"trop court", "123456"},
		{"trop long", "1234567AAM0012"},
		{"serie non numerique", "12345X7AAM001"},
		{"code TVA hors referentiel", "1234567AZM001"},
		{"code categorie hors referentiel", "1234567AAX001"},
		{"etablissement non numerique", "1234567AAM0A1"},
		{"vide", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, teif.ValidateMatriculeFiscal(tc.id))
		})
	}
}

func TestDescribeTVACode(t *testing.T) {
	assert.Equal(t, "Assujetti obligatoire", teif.DescribeTVACode('A'))
	assert.Equal(t, teif.DescriptionInconnue, teif.DescribeTVACode('Z'))
}
