package billing

import (
	"errors"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/pkg/logger"
	pkgteif "github.com/ttnlab/teif-engine/pkg/teif"
)

// VerifyDocumentUseCase rejoue la vérification complète d'un document signé :
// empreinte du document, empreinte des propriétés signées, valeur de signature
// et certificat de signature, dans cet ordre.
type VerifyDocumentUseCase struct {
	verifier pkgteif.Verifier
	log      *logger.Logger
}

func NewVerifyDocumentUseCase(verifier pkgteif.Verifier, log *logger.Logger) *VerifyDocumentUseCase {
	return &VerifyDocumentUseCase{verifier: verifier, log: log}
}

// Execute vérifie le document et traduit le verdict en réponse. Un document
// invalide n'est pas une erreur du serveur : la réponse nomme le contrôle en
// échec et l'appel réussit.
func (uc *VerifyDocumentUseCase) Execute(xmlBytes []byte) dto.VerifyDocumentResponse {
	err := uc.verifier.Verify(xmlBytes)
	if err == nil {
		return dto.VerifyDocumentResponse{Valid: true}
	}

	resp := dto.VerifyDocumentResponse{Valid: false, Error: err.Error()}
	var verr *domain.VerificationError
	if errors.As(err, &verr) {
		resp.Check = verr.Check
	}
	uc.log.Info().Str("check", resp.Check).Msg("document rejeté à la vérification")
	return resp
}
