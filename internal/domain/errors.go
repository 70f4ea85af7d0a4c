package domain

import (
	"errors"
	"fmt"
)

// Erreurs de domaine (sans dépendances externes).
var (
	ErrNotFound     = errors.New("ressource introuvable")
	ErrInvalidInput = errors.New("entrée invalide")
	ErrDuplicate    = errors.New("ressource dupliquée")
	ErrUnauthorized = errors.New("non autorisé")
	ErrForbidden    = errors.New("accès refusé")
	ErrConflict     = errors.New("conflit avec l'état courant")
)

// ValidationError : champ obligatoire absent ou code hors référentiel, rapporté
// par un constructeur de section. Toujours corrigible par l'appelant; un
// constructeur échoue avant de produire le moindre sous-arbre.
type ValidationError struct {
	Section string // section TEIF concernée (InvoiceHeader, Bgm, Lin, ...)
	Field   string // champ absent ou invalide
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation %s.%s: %s (%v)", e.Section, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation %s.%s: %s", e.Section, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NewValidationError construit l'erreur en nommant la section et le champ.
func NewValidationError(section, field, message string) *ValidationError {
	return &ValidationError{Section: section, Field: field, Message: message}
}

// WrapValidationError attache la cause sous-jacente (ex. grammaire du matricule).
func WrapValidationError(section, field string, cause error) *ValidationError {
	return &ValidationError{Section: section, Field: field, Message: "invalide", Cause: cause}
}

// StructureError : invariant de niveau document violé (aucune ligne, entête
// dupliquée, partenaire sans nom). Levé par l'assembleur avant toute signature.
type StructureError struct {
	Message string
}

func (e *StructureError) Error() string { return "structure: " + e.Message }

// NewStructureError construit l'erreur.
func NewStructureError(format string, args ...any) *StructureError {
	return &StructureError{Message: fmt.Sprintf(format, args...)}
}

// Étapes du moteur de signature, rapportées par SigningError.
const (
	SigningStageKeyLoad   = "chargement_cle"
	SigningStageDigest    = "empreinte"
	SigningStageSignature = "signature"
	SigningStageCerts     = "certificats"
	SigningStageFinalize  = "finalisation"
)

// SigningError : incompatibilité clé/certificat, taille de clé insuffisante ou
// échec de la bibliothèque cryptographique. Toujours fatal pour la tentative;
// aucune signature partielle n'est émise.
type SigningError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signature [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("signature [%s]: %s", e.Stage, e.Message)
}

func (e *SigningError) Unwrap() error { return e.Cause }

// NewSigningError construit l'erreur en nommant l'étape.
func NewSigningError(stage, message string, cause error) *SigningError {
	return &SigningError{Stage: stage, Message: message, Cause: cause}
}

// Contrôles de vérification, rapportés par VerificationError.
const (
	VerifyCheckDocumentDigest   = "empreinte_document"
	VerifyCheckPropertiesDigest = "empreinte_proprietes_signees"
	VerifyCheckSignatureValue   = "valeur_signature"
	VerifyCheckCertificate      = "certificat"
	VerifyCheckStructure        = "structure_signature"
)

// VerificationError : écart d'empreinte ou de signature détecté à la
// vérification. Nomme le contrôle en échec; jamais dégradé en avertissement.
type VerificationError struct {
	Check   string
	Message string
	Cause   error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vérification [%s]: %s (%v)", e.Check, e.Message, e.Cause)
	}
	return fmt.Sprintf("vérification [%s]: %s", e.Check, e.Message)
}

func (e *VerificationError) Unwrap() error { return e.Cause }

// NewVerificationError construit l'erreur en nommant le contrôle.
func NewVerificationError(check, message string, cause error) *VerificationError {
	return &VerificationError{Check: check, Message: message, Cause: cause}
}
