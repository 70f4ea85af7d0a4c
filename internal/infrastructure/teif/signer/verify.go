// Vérification miroir de la signature XAdES-BES : recalcul des empreintes
// canoniques, comparaison octet à octet avec les valeurs stockées, puis
// vérification cryptographique de la valeur de signature contre la clé
// publique du certificat feuille embarqué. Tout écart nomme le contrôle en
// échec; rien n'est accepté silencieusement.

package signer

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"

	"github.com/ttnlab/teif-engine/internal/domain"
	infrateif "github.com/ttnlab/teif-engine/internal/infrastructure/teif"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// VerificationService implémente pkg/teif.Verifier.
type VerificationService struct{}

// NewVerificationService crée le service.
func NewVerificationService() *VerificationService {
	return &VerificationService{}
}

var _ teif.Verifier = (*VerificationService)(nil)

// Verify contrôle la signature du document. Retourne nil si toutes les
// empreintes référencées et la valeur de signature sont exactes.
func (v *VerificationService) Verify(xmlBytes []byte) error {
	utf8Bytes, err := toUTF8(xmlBytes)
	if err != nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "encodage du document", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(utf8Bytes); err != nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "document illisible", err)
	}
	root := doc.Root()
	if root == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "document sans racine", nil)
	}
	sig := findSignatureElement(root)
	if sig == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "aucun élément ds:Signature", nil)
	}
	signedInfo := childElement(sig, "SignedInfo")
	if signedInfo == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "SignedInfo absent", nil)
	}

	leaf, err := extractLeafCertificate(sig)
	if err != nil {
		return err
	}

	// 1) Empreintes : chaque ds:Reference doit se résoudre et coïncider.
	for _, ref := range signedInfo.ChildElements() {
		if ref.Tag != "Reference" {
			continue
		}
		if err := v.checkReference(doc, root, ref); err != nil {
			return err
		}
	}

	// 2) Valeur de signature contre la clé publique du certificat feuille.
	if err := v.checkSignatureValue(sig, signedInfo, leaf); err != nil {
		return err
	}

	// 3) Cohérence du certificat : l'empreinte et le serial stockés dans
	// SigningCertificate doivent correspondre au certificat embarqué.
	return v.checkSigningCertificate(sig, leaf)
}

func (v *VerificationService) checkReference(doc *etree.Document, root, ref *etree.Element) error {
	uri := ref.SelectAttrValue("URI", "")
	stored, err := digestValueOf(ref)
	if err != nil {
		return err
	}

	var canonical []byte
	var check string
	switch {
	case uri == "":
		check = domain.VerifyCheckDocumentDigest
		canonical, err = canonicalWithoutSignature(doc)
	case strings.HasPrefix(uri, "#"):
		check = domain.VerifyCheckPropertiesDigest
		target := findByID(root, uri[1:])
		if target == nil {
			return domain.NewVerificationError(domain.VerifyCheckStructure,
				fmt.Sprintf("référence %s non résoluble dans le document", uri), nil)
		}
		canonical, err = infrateif.CanonicalizeElement(target)
	default:
		return domain.NewVerificationError(domain.VerifyCheckStructure,
			fmt.Sprintf("URI de référence %q non supportée", uri), nil)
	}
	if err != nil {
		return domain.NewVerificationError(check, "canonisation du contenu référencé", err)
	}
	computed := sha256.Sum256(canonical)
	if !bytes.Equal(computed[:], stored) {
		return domain.NewVerificationError(check,
			fmt.Sprintf("empreinte divergente pour la référence %q", uri), nil)
	}
	return nil
}

func (v *VerificationService) checkSignatureValue(sig, signedInfo *etree.Element, leaf *x509.Certificate) error {
	valueEl := childElement(sig, "SignatureValue")
	if valueEl == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "SignatureValue absent", nil)
	}
	sigValue, err := base64.StdEncoding.DecodeString(strings.TrimSpace(valueEl.Text()))
	if err != nil {
		return domain.NewVerificationError(domain.VerifyCheckSignatureValue, "SignatureValue non décodable", err)
	}
	canonical, err := infrateif.CanonicalizeElement(signedInfo)
	if err != nil {
		return domain.NewVerificationError(domain.VerifyCheckSignatureValue, "canonisation de SignedInfo", err)
	}
	digest := sha256.Sum256(canonical)
	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return domain.NewVerificationError(domain.VerifyCheckCertificate, "certificat sans clé publique RSA", nil)
	}
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sigValue); err != nil {
		return domain.NewVerificationError(domain.VerifyCheckSignatureValue, "signature RSA invalide", err)
	}
	return nil
}

func (v *VerificationService) checkSigningCertificate(sig *etree.Element, leaf *x509.Certificate) error {
	cert := descend(sig, "Object", "QualifyingProperties", "SignedProperties",
		"SignedSignatureProperties", "SigningCertificate", "Cert")
	if cert == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "SigningCertificate absent des propriétés signées", nil)
	}
	storedDigest := descend(cert, "CertDigest", "DigestValue")
	if storedDigest == nil {
		return domain.NewVerificationError(domain.VerifyCheckStructure, "CertDigest absent des propriétés signées", nil)
	}
	computedB64, _, serial := CertDigestAndIssuerSerial(leaf)
	if strings.TrimSpace(storedDigest.Text()) != computedB64 {
		return domain.NewVerificationError(domain.VerifyCheckCertificate,
			"empreinte du certificat signataire divergente", nil)
	}
	storedSerial := descend(cert, "IssuerSerial", "X509SerialNumber")
	if storedSerial != nil && strings.TrimSpace(storedSerial.Text()) != serial {
		return domain.NewVerificationError(domain.VerifyCheckCertificate,
			"numéro de série du certificat signataire divergent", nil)
	}
	return nil
}

// canonicalWithoutSignature retire la signature d'une copie du document
// (transformation enveloped) puis canonise.
func canonicalWithoutSignature(doc *etree.Document) ([]byte, error) {
	copied := doc.Copy()
	copiedRoot := copied.Root()
	if s := findSignatureElement(copiedRoot); s != nil {
		copiedRoot.RemoveChild(s)
	}
	raw, err := copied.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return infrateif.Canonicalize(raw)
}

func digestValueOf(ref *etree.Element) ([]byte, error) {
	dv := childElement(ref, "DigestValue")
	if dv == nil {
		return nil, domain.NewVerificationError(domain.VerifyCheckStructure, "DigestValue absent d'une référence", nil)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(dv.Text()))
	if err != nil {
		return nil, domain.NewVerificationError(domain.VerifyCheckStructure, "DigestValue non décodable", err)
	}
	return raw, nil
}

// extractLeafCertificate décode le premier ds:X509Certificate (la feuille).
func extractLeafCertificate(sig *etree.Element) (*x509.Certificate, error) {
	certEl := descend(sig, "KeyInfo", "X509Data", "X509Certificate")
	if certEl == nil {
		return nil, domain.NewVerificationError(domain.VerifyCheckStructure, "aucun certificat embarqué", nil)
	}
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(certEl.Text()))
	if err != nil {
		return nil, domain.NewVerificationError(domain.VerifyCheckCertificate, "certificat non décodable", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, domain.NewVerificationError(domain.VerifyCheckCertificate, "certificat illisible", err)
	}
	return cert, nil
}

// findByID cherche en profondeur l'élément portant l'attribut Id donné.
func findByID(el *etree.Element, id string) *etree.Element {
	if el.SelectAttrValue("Id", "") == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// descend suit une chaîne d'enfants directs par tag local (les chemins etree
// sont sensibles aux préfixes de namespace, pas cette traversée).
func descend(el *etree.Element, tags ...string) *etree.Element {
	for _, tag := range tags {
		el = childElement(el, tag)
		if el == nil {
			return nil
		}
	}
	return el
}

// childElement retourne le premier enfant direct avec ce tag local.
func childElement(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

var encodingDeclRe = regexp.MustCompile(`(?i)encoding=["']([A-Za-z0-9._-]+)["']`)

// toUTF8 transcode le document en UTF-8 quand la déclaration XML annonce
// ISO-8859-1 / Latin-1, et retire la déclaration transcodée.
func toUTF8(data []byte) ([]byte, error) {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	if !bytes.HasPrefix(bytes.TrimSpace(head), []byte("<?xml")) {
		return data, nil
	}
	m := encodingDeclRe.FindSubmatch(head)
	if m == nil {
		return data, nil
	}
	switch strings.ToUpper(string(m[1])) {
	case "UTF-8":
		return data, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("transcodage ISO-8859-1: %w", err)
		}
		return stripXMLDecl(decoded), nil
	default:
		return nil, fmt.Errorf("encodage %q non supporté", string(m[1]))
	}
}

func stripXMLDecl(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		if end := bytes.Index(trimmed, []byte("?>")); end >= 0 {
			return bytes.TrimLeft(trimmed[end+2:], " \t\r\n")
		}
	}
	return data
}
