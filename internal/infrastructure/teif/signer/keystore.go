package signer

import (
	"crypto/rsa"
	"crypto/tls"

	"github.com/ttnlab/teif-engine/internal/domain"
)

// FileKeyStore charge le matériel de signature depuis le disque à chaque
// opération. La clé n'habite la mémoire que le temps de la signature : la
// fonction de libération retournée par Load l'efface.
type FileKeyStore struct {
	certPath  string // .p12/.pfx, ou certificat PEM si keyPath est renseigné
	keyPath   string
	password  string
	chainPath string // certificats intermédiaires PEM, optionnel
}

// NewFileKeyStore construit un magasin sur fichiers. Si keyPath est vide,
// certPath est traité comme un conteneur PKCS#12 protégé par password.
func NewFileKeyStore(certPath, keyPath, password, chainPath string) *FileKeyStore {
	return &FileKeyStore{
		certPath:  certPath,
		keyPath:   keyPath,
		password:  password,
		chainPath: chainPath,
	}
}

// Load lit et assemble le certificat, sa clé et la chaîne. L'appelant doit
// invoquer la fonction de libération en defer dès réception.
func (ks *FileKeyStore) Load() (tls.Certificate, func(), error) {
	if ks.certPath == "" {
		return tls.Certificate{}, nil, &domain.SigningError{
			Stage:   domain.SigningStageKeyLoad,
			Message: "aucun chemin de certificat configuré",
		}
	}

	var (
		cert tls.Certificate
		err  error
	)
	if ks.keyPath != "" {
		cert, err = LoadFromPEM(ks.certPath, ks.keyPath)
	} else {
		cert, err = LoadFromP12(ks.certPath, ks.password)
	}
	if err != nil {
		return tls.Certificate{}, nil, err
	}

	if ks.chainPath != "" {
		cert, err = AppendChainPEM(cert, ks.chainPath)
		if err != nil {
			return tls.Certificate{}, nil, err
		}
	}

	release := func() {
		if priv, ok := cert.PrivateKey.(*rsa.PrivateKey); ok {
			ZeroKey(priv)
		}
	}
	return cert, release, nil
}
