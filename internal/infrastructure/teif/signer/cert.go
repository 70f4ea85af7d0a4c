// Chargement du matériel de signature depuis un .p12 (PKCS#12) ou une paire
// PEM, et contrôles clé/certificat préalables à la signature.

package signer

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"

	"github.com/ttnlab/teif-engine/internal/domain"
)

// LoadFromP12 charge certificat et clé privée depuis un fichier .p12/.pfx.
// Le mot de passe peut être vide si le fichier n'est pas protégé.
func LoadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("lecture p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("décodage p12: %w", err)
	}
	// pkcs12.Decode ne retourne que le certificat feuille; la chaîne
	// intermédiaire peut être complétée via AppendChainPEM.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// LoadFromPEM charge certificat et clé depuis des fichiers PEM (séparés ou
// combinés dans le même fichier).
func LoadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("chargement PEM: %w", err)
	}
	return cert, nil
}

// AppendChainPEM ajoute les certificats intermédiaires d'un fichier PEM à la
// chaîne (la feuille reste en tête, ordre feuille → ancre).
func AppendChainPEM(cert tls.Certificate, chainPath string) (tls.Certificate, error) {
	data, err := os.ReadFile(chainPath)
	if err != nil {
		return cert, fmt.Errorf("lecture chaîne: %w", err)
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		if _, err := x509.ParseCertificate(block.Bytes); err != nil {
			return cert, fmt.Errorf("certificat de chaîne invalide: %w", err)
		}
		cert.Certificate = append(cert.Certificate, block.Bytes)
	}
	return cert, nil
}

// ValidateKeyPair contrôle le matériel avant signature : clé RSA, module d'au
// moins minBits, et clé publique du certificat identique à celle de la clé
// privée. Tout écart est un SigningError à l'étape de chargement.
func ValidateKeyPair(cert tls.Certificate, minBits int) (*rsa.PrivateKey, *x509.Certificate, error) {
	if len(cert.Certificate) == 0 {
		return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad, "certificat absent", nil)
	}
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad, "clé privée RSA requise", nil)
	}
	if bits := priv.N.BitLen(); bits < minBits {
		return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad,
			fmt.Sprintf("module RSA de %d bits, minimum %d", bits, minBits), nil)
	}
	leaf := cert.Leaf
	if leaf == nil {
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad, "certificat illisible", err)
		}
		leaf = parsed
	}
	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad, "certificat sans clé publique RSA", nil)
	}
	if pub.N.Cmp(priv.N) != 0 || pub.E != priv.E {
		return nil, nil, domain.NewSigningError(domain.SigningStageKeyLoad,
			"la clé publique du certificat ne correspond pas à la clé privée", nil)
	}
	return priv, leaf, nil
}

// CertDigestAndIssuerSerial retourne l'empreinte SHA-256 du certificat
// (Base64), le nom de l'émetteur et le numéro de série en décimal, pour
// SigningCertificate (XAdES, X509SerialNumber est un xs:integer). Le
// vérificateur compare ces valeurs, il ne les recalcule pas depuis une
// autre source.
func CertDigestAndIssuerSerial(cert *x509.Certificate) (digestB64, issuerName, serial string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serial = cert.SerialNumber.String()
	return digestB64, issuerName, serial
}

// ZeroKey écrase les facteurs privés de la clé après usage. Appelé en fin
// d'opération de signature, succès ou échec.
func ZeroKey(priv *rsa.PrivateKey) {
	if priv == nil {
		return
	}
	if priv.D != nil {
		priv.D.SetInt64(0)
	}
	for _, p := range priv.Primes {
		p.SetInt64(0)
	}
	priv.Precomputed = rsa.PrecomputedValues{}
}
