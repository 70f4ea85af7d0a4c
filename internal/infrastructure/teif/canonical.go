// Canonisation C14N (REC-xml-c14n-20010315) des documents et sous-arbres TEIF.
// C'est l'ancre de confiance du moteur : la même fonction est appelée à la
// signature et à la vérification; toute divergence d'octets invalide la
// signature. Aucun repli silencieux : une entrée non canonisable est une
// erreur.

package teif

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

// Canonicalize produit la forme canonique d'un document ou sous-arbre XML :
// attributs triés, déclarations de namespace dédupliquées, éléments vides
// développés, UTF-8, sans déclaration XML ni DTD.
func Canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("teif: canonisation: %w", err)
	}
	return out, nil
}

// CanonicalizeElement canonise un sous-arbre isolé. L'élément doit porter ses
// propres déclarations de namespace : la forme canonique d'un sous-arbre est
// indépendante de son contexte d'origine.
func CanonicalizeElement(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("teif: sérialisation du sous-arbre: %w", err)
	}
	return Canonicalize(raw)
}
