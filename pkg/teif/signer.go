// Package teif : interfaces de signature et de vérification des documents
// TEIF (XAdES-BES, signature enveloppée).

package teif

import "crypto/tls"

// Signer signe un document TEIF et retourne le XML avec le bloc ds:Signature
// inséré en fin de document.
type Signer interface {
	// Sign prend le XML du document (sans signature), le certificat avec sa
	// clé privée et le rôle du signataire, et retourne le XML signé.
	Sign(xmlBytes []byte, cert tls.Certificate, role string) ([]byte, error)
}

// Verifier recalcule les empreintes canoniques d'un document signé et vérifie
// la valeur de signature contre le certificat embarqué.
type Verifier interface {
	Verify(xmlBytes []byte) error
}
