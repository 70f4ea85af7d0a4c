package billing

import (
	"crypto/tls"

	"github.com/ttnlab/teif-engine/internal/domain/entity"
)

// DocumentBuilder assemble une facture typée en document TEIF sérialisé.
// L'implémentation de référence est l'AssemblerService de l'infrastructure.
type DocumentBuilder interface {
	Build(inv *entity.Invoice) ([]byte, error)
}

// KeyStore fournit le matériel de signature pour la durée d'une opération.
// La fonction de libération retournée efface la clé privée de la mémoire;
// l'appelant doit l'invoquer en defer dès l'obtention du certificat.
type KeyStore interface {
	Load() (tls.Certificate, func(), error)
}

// PDFGenerator produit la restitution PDF lisible d'une facture.
type PDFGenerator interface {
	Render(inv *entity.Invoice, documentID string) ([]byte, error)
}

// SigningConfig paramètres de signature et de sortie du moteur.
type SigningConfig struct {
	SignerRole       string // rôle revendiqué dans SignerRole (ex. "Fournisseur")
	IncludeSignature bool   // défaut serveur; surchargeable par requête
	OutputDir        string // répertoire d'écriture des XML/PDF; vide = pas d'écriture
}
