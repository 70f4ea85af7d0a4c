package teif

import (
	"fmt"
	"strings"
)

// Grammaire positionnelle du matricule fiscal tunisien (13 caractères) :
//
//	positions 1-7   : numéro de série (chiffres)
//	position  8     : clé de contrôle (lettre, I/O/U interdites — confusion
//	                  visuelle avec 1, 0 et V à l'impression)
//	position  9     : code TVA (catégorie d'assujettissement)
//	position  10    : code catégorie (type d'établissement)
//	positions 11-13 : numéro d'établissement secondaire (chiffres)
//
// La saisie peut contenir des séparateurs ("1234567/A/A/M/001"); ils sont
// retirés avant contrôle.

// forbiddenControlKeys lettres exclues de la position clé de contrôle.
const forbiddenControlKeys = "IOU"

// tvaCategoryCodes codes admis en position 9 (régime TVA).
var tvaCategoryCodes = map[byte]string{
	'A': "Assujetti obligatoire",
	'B': "Assujetti par option",
	'P': "Assujetti partiel",
	'F': "Régime forfaitaire",
	'N': "Non assujetti",
}

// establishmentCategoryCodes codes admis en position 10 (catégorie).
var establishmentCategoryCodes = map[byte]string{
	'M': "Personne morale",
	'P': "Personne physique",
	'C': "Groupement ou copropriété",
	'N': "Établissement non résident",
	'E': "Établissement secondaire",
}

// MatriculeFiscal est le résultat du parsing positionnel d'un matricule valide.
type MatriculeFiscal struct {
	Serial        string // positions 1-7
	ControlKey    byte   // position 8
	TVACode       byte   // position 9
	CategoryCode  byte   // position 10
	Establishment string // positions 11-13
}

// String reconstitue la forme compacte à 13 caractères.
func (m MatriculeFiscal) String() string {
	return m.Serial + string(m.ControlKey) + string(m.TVACode) + string(m.CategoryCode) + m.Establishment
}

// ParseMatriculeFiscal normalise puis contrôle la grammaire positionnelle.
// C'est un parseur structurel, pas une consultation de table : chaque position
// est contrôlée indépendamment et la première violation est rapportée.
func ParseMatriculeFiscal(id string) (MatriculeFiscal, error) {
	n := normalizeMatricule(id)
	if len(n) != 13 {
		return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: longueur %d, 13 caractères attendus", len(n))
	}
	for i := 0; i < 7; i++ {
		if n[i] < '0' || n[i] > '9' {
			return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: position %d: chiffre attendu, reçu %q", i+1, n[i])
		}
	}
	key := n[7]
	if key < 'A' || key > 'Z' {
		return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: clé de contrôle: lettre attendue, reçu %q", key)
	}
	if strings.IndexByte(forbiddenControlKeys, key) >= 0 {
		return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: clé de contrôle %q interdite (confusion avec un chiffre)", key)
	}
	if _, ok := tvaCategoryCodes[n[8]]; !ok {
		return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: code TVA %q hors référentiel", n[8])
	}
	if _, ok := establishmentCategoryCodes[n[9]]; !ok {
		return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: code catégorie %q hors référentiel", n[9])
	}
	for i := 10; i < 13; i++ {
		if n[i] < '0' || n[i] > '9' {
			return MatriculeFiscal{}, fmt.Errorf("teif: matricule fiscal: numéro d'établissement: chiffre attendu en position %d, reçu %q", i+1, n[i])
		}
	}
	return MatriculeFiscal{
		Serial:        n[:7],
		ControlKey:    key,
		TVACode:       n[8],
		CategoryCode:  n[9],
		Establishment: n[10:],
	}, nil
}

// ValidateMatriculeFiscal contrôle le matricule sans exposer le découpage.
func ValidateMatriculeFiscal(id string) error {
	_, err := ParseMatriculeFiscal(id)
	return err
}

// DescribeTVACode retourne le libellé du code TVA (position 9), ou
// DescriptionInconnue.
func DescribeTVACode(c byte) string {
	if d, ok := tvaCategoryCodes[c]; ok {
		return d
	}
	return DescriptionInconnue
}

func normalizeMatricule(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '/', '-', '.', ' ':
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
