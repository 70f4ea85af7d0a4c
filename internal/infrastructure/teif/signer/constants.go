// Constantes pour la signature XAdES-BES des documents TEIF.

package signer

// Namespaces et algorithmes XMLDSig / XAdES.
const (
	NamespaceDS    = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES = "http://uri.etsi.org/01903/v1.3.2#"

	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2001/04/xmlenc#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"

	SignedPropertiesType = "http://uri.etsi.org/01903#SignedProperties"
)

// Identifiants des éléments de signature. "SigFrs" est l'identifiant de la
// signature fournisseur attendu par la plateforme TTN.
const (
	SignatureID        = "SigFrs"
	SignedPropertiesID = "SigFrs-SignedProperties"
)

// MinRSAModulusBits taille minimale du module RSA admise à la signature.
const MinRSAModulusBits = 2048

// Format d'horodatage de SigningTime (UTC, milliseconde).
const signingTimeLayout = "2006-01-02T15:04:05.000Z"
