// Service de signature XAdES-BES pour documents TEIF. Signature enveloppée
// ajoutée en dernier enfant de l'élément racine TEIF, avec deux références :
// le document entier (transformation enveloped) et le bloc SignedProperties,
// dont l'empreinte est calculée avant insertion dans l'arbre.
//
// Machine à états linéaire, sans retour arrière :
// Unsigned → DigestsComputed → SignatureComputed → CertificatesEmbedded → Finalized.

package signer

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/ttnlab/teif-engine/internal/domain"
	infrateif "github.com/ttnlab/teif-engine/internal/infrastructure/teif"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// SignatureService implémente pkg/teif.Signer.
type SignatureService struct {
	minBits int
	now     func() time.Time
}

// NewSignatureService crée le service avec le minimum de 2048 bits.
func NewSignatureService() *SignatureService {
	return &SignatureService{minBits: MinRSAModulusBits, now: time.Now}
}

// NewSignatureServiceWithMinBits permet d'élever le plancher de taille de clé.
// Un minimum inférieur à MinRSAModulusBits est ramené au plancher.
func NewSignatureServiceWithMinBits(bits int) *SignatureService {
	if bits < MinRSAModulusBits {
		bits = MinRSAModulusBits
	}
	return &SignatureService{minBits: bits, now: time.Now}
}

// Sign signe le document TEIF et retourne le XML avec le bloc ds:Signature
// inséré. Échec sans signature partielle : soit le document complet signé,
// soit une erreur.
func (s *SignatureService) Sign(xmlBytes []byte, cert tls.Certificate, role string) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, domain.NewSigningError(domain.SigningStageDigest, "document vide", nil)
	}
	if role == "" {
		return nil, domain.NewSigningError(domain.SigningStageKeyLoad, "rôle du signataire obligatoire", nil)
	}
	priv, leaf, err := ValidateKeyPair(cert, s.minBits)
	if err != nil {
		return nil, err
	}

	op := &signingOperation{
		state:       stateUnsigned,
		doc:         xmlBytes,
		priv:        priv,
		leaf:        leaf,
		chain:       cert.Certificate,
		role:        role,
		signingTime: s.now().UTC().Format(signingTimeLayout),
	}
	if err := op.computeDigests(); err != nil {
		return nil, err
	}
	if err := op.computeSignature(); err != nil {
		return nil, err
	}
	if err := op.embedCertificates(); err != nil {
		return nil, err
	}
	return op.finalize()
}

var _ teif.Signer = (*SignatureService)(nil)

// États de l'opération. Chaque étape exige l'état précédent et avance d'un
// cran; l'entrée d'une étape est la sortie engagée de la précédente.
type signingState int

const (
	stateUnsigned signingState = iota
	stateDigestsComputed
	stateSignatureComputed
	stateCertificatesEmbedded
	stateFinalized
)

type signingOperation struct {
	state signingState

	doc         []byte
	priv        *rsa.PrivateKey
	leaf        *x509.Certificate
	chain       [][]byte // DER, feuille en tête
	role        string
	signingTime string

	docDigestB64      string
	signedPropsXML    string
	propsDigestB64    string
	signedInfoXML     string
	signatureValueB64 string
	keyInfoXML        string
}

func (op *signingOperation) require(expected signingState, stage string) error {
	if op.state != expected {
		return domain.NewSigningError(stage,
			fmt.Sprintf("étape hors séquence (état %d, attendu %d)", op.state, expected), nil)
	}
	return nil
}

// computeDigests canonise le document (qui ne doit pas déjà porter de
// signature) et le bloc SignedProperties pas encore inséré, puis calcule
// leurs empreintes SHA-256.
func (op *signingOperation) computeDigests() error {
	if err := op.require(stateUnsigned, domain.SigningStageDigest); err != nil {
		return err
	}
	parsed := etree.NewDocument()
	if err := parsed.ReadFromBytes(op.doc); err != nil {
		return domain.NewSigningError(domain.SigningStageDigest, "document illisible", err)
	}
	root := parsed.Root()
	if root == nil {
		return domain.NewSigningError(domain.SigningStageDigest, "document sans racine", nil)
	}
	if findSignatureElement(root) != nil {
		return domain.NewSigningError(domain.SigningStageDigest,
			"document déjà signé : une seconde signature exige de repartir du document élargi", nil)
	}

	canonicalDoc, err := infrateif.Canonicalize(op.doc)
	if err != nil {
		return domain.NewSigningError(domain.SigningStageDigest, "canonisation du document", err)
	}
	docDigest := sha256.Sum256(canonicalDoc)
	op.docDigestB64 = base64.StdEncoding.EncodeToString(docDigest[:])

	// SignedProperties : construit et canonisé AVANT insertion dans l'arbre;
	// le bloc porte ses propres déclarations de namespace pour que sa forme
	// canonique soit indépendante du contexte.
	op.signedPropsXML = op.buildSignedProperties()
	canonicalProps, err := infrateif.Canonicalize([]byte(op.signedPropsXML))
	if err != nil {
		return domain.NewSigningError(domain.SigningStageDigest, "canonisation des propriétés signées", err)
	}
	propsDigest := sha256.Sum256(canonicalProps)
	op.propsDigestB64 = base64.StdEncoding.EncodeToString(propsDigest[:])

	op.state = stateDigestsComputed
	return nil
}

// computeSignature construit SignedInfo, le canonise et le signe
// RSA PKCS#1 v1.5 / SHA-256.
func (op *signingOperation) computeSignature() error {
	if err := op.require(stateDigestsComputed, domain.SigningStageSignature); err != nil {
		return err
	}
	op.signedInfoXML = op.buildSignedInfo()
	canonicalSignedInfo, err := infrateif.Canonicalize([]byte(op.signedInfoXML))
	if err != nil {
		return domain.NewSigningError(domain.SigningStageSignature, "canonisation de SignedInfo", err)
	}
	digest := sha256.Sum256(canonicalSignedInfo)
	sig, err := rsa.SignPKCS1v15(nil, op.priv, crypto.SHA256, digest[:])
	if err != nil {
		return domain.NewSigningError(domain.SigningStageSignature, "signature RSA", err)
	}
	op.signatureValueB64 = base64.StdEncoding.EncodeToString(sig)
	op.state = stateSignatureComputed
	return nil
}

// embedCertificates sérialise la chaîne de certificats (feuille en tête) dans
// KeyInfo.
func (op *signingOperation) embedCertificates() error {
	if err := op.require(stateSignatureComputed, domain.SigningStageCerts); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(`<ds:KeyInfo><ds:X509Data>`)
	for _, der := range op.chain {
		sb.WriteString(`<ds:X509Certificate>`)
		sb.WriteString(base64.StdEncoding.EncodeToString(der))
		sb.WriteString(`</ds:X509Certificate>`)
	}
	sb.WriteString(`</ds:X509Data></ds:KeyInfo>`)
	op.keyInfoXML = sb.String()
	op.state = stateCertificatesEmbedded
	return nil
}

// finalize assemble le bloc ds:Signature complet et l'insère en dernier
// enfant de la racine TEIF.
func (op *signingOperation) finalize() ([]byte, error) {
	if err := op.require(stateCertificatesEmbedded, domain.SigningStageFinalize); err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `" Id="` + SignatureID + `">`)
	sb.WriteString(op.signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + op.signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(op.keyInfoXML)
	sb.WriteString(`<ds:Object><xades:QualifyingProperties xmlns:xades="` + NamespaceXAdES + `" Target="#` + SignatureID + `">`)
	// le bloc inséré est octet pour octet celui dont l'empreinte a été calculée
	sb.WriteString(op.signedPropsXML)
	sb.WriteString(`</xades:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(op.doc); err != nil {
		return nil, domain.NewSigningError(domain.SigningStageFinalize, "relecture du document", err)
	}
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(sb.String()); err != nil {
		return nil, domain.NewSigningError(domain.SigningStageFinalize, "relecture de la signature", err)
	}
	doc.Root().AddChild(sigDoc.Root())

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, domain.NewSigningError(domain.SigningStageFinalize, "sérialisation finale", err)
	}
	op.state = stateFinalized
	return out, nil
}

func (op *signingOperation) buildSignedInfo() string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"></ds:CanonicalizationMethod>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"></ds:SignatureMethod>`)
	// Référence 1 : document entier (URI vide, transformation enveloped)
	sb.WriteString(`<ds:Reference URI="">`)
	sb.WriteString(`<ds:Transforms>`)
	sb.WriteString(`<ds:Transform Algorithm="` + TransformEnveloped + `"></ds:Transform>`)
	sb.WriteString(`<ds:Transform Algorithm="` + AlgC14N + `"></ds:Transform>`)
	sb.WriteString(`</ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + op.docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	// Référence 2 : bloc SignedProperties
	sb.WriteString(`<ds:Reference URI="#` + SignedPropertiesID + `" Type="` + SignedPropertiesType + `">`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + op.propsDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func (op *signingOperation) buildSignedProperties() string {
	certDigestB64, issuerName, serial := CertDigestAndIssuerSerial(op.leaf)
	var sb strings.Builder
	sb.WriteString(`<xades:SignedProperties xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `" Id="` + SignedPropertiesID + `">`)
	sb.WriteString(`<xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + op.signingTime + `</xades:SigningTime>`)
	sb.WriteString(`<xades:SigningCertificate><xades:Cert>`)
	sb.WriteString(`<xades:CertDigest>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + certDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</xades:CertDigest>`)
	sb.WriteString(`<xades:IssuerSerial>`)
	sb.WriteString(`<ds:X509IssuerName>` + escapeXML(issuerName) + `</ds:X509IssuerName>`)
	sb.WriteString(`<ds:X509SerialNumber>` + serial + `</ds:X509SerialNumber>`)
	sb.WriteString(`</xades:IssuerSerial>`)
	sb.WriteString(`</xades:Cert></xades:SigningCertificate>`)
	sb.WriteString(`<xades:SignerRole><xades:ClaimedRoles><xades:ClaimedRole>` + escapeXML(op.role) + `</xades:ClaimedRole></xades:ClaimedRoles></xades:SignerRole>`)
	sb.WriteString(`</xades:SignedSignatureProperties>`)
	sb.WriteString(`</xades:SignedProperties>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// findSignatureElement retourne le dernier élément ds:Signature enfant direct
// de root, ou nil.
func findSignatureElement(root *etree.Element) *etree.Element {
	var found *etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == "Signature" && (child.Space == "ds" || child.Space == "") {
			found = child
		}
	}
	return found
}
