package teif

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// BuildLinSection construit la section des lignes. Au moins une ligne est
// exigée par l'assembleur; ici chaque ligne est validée et rendue, sous-lignes
// comprises (arbre possédé par le parent, imbrication Lin dans Lin).
func BuildLinSection(lines []entity.Line, defaultCurrency string) (*etree.Element, error) {
	el := etree.NewElement("LinSection")
	for _, l := range lines {
		lin, err := buildLin(l, defaultCurrency)
		if err != nil {
			return nil, err
		}
		el.AddChild(lin)
	}
	return el, nil
}

func buildLin(l entity.Line, defaultCurrency string) (*etree.Element, error) {
	const section = "Lin"
	if err := validateLineNumber(l.Number); err != nil {
		return nil, err
	}

	el := etree.NewElement("Lin")
	addText(el, "LineNumber", l.Number)
	addOptionalText(el, "ItemIdentifier", l.ItemIdentifier)

	// LinImd : code et désignation de l'article; groupe omis si vide
	if l.ItemCode != "" || l.Description != "" {
		lang := l.Lang
		if lang == "" {
			lang = teif.LangFR
		}
		imd := el.CreateElement("LinImd")
		imd.CreateAttr("lang", lang)
		addOptionalText(imd, "ItemCode", l.ItemCode)
		addOptionalText(imd, "ItemDescription", l.Description)
	}

	// LinQty : la précision de la quantité est celle de l'appelant
	if l.Quantity != nil {
		unit := l.Quantity.Unit
		if unit == "" {
			unit = teif.UnitPiece
		}
		if err := requireCode(section, "Quantity.measurementUnit", teif.TableUnitOfMeasure, unit); err != nil {
			return nil, err
		}
		qty := el.CreateElement("LinQty")
		q := addText(qty, "Quantity", formatQuantity(l.Quantity.Value))
		q.CreateAttr("measurementUnit", unit)
	}

	for _, t := range l.Taxes {
		taxEl, err := buildTax("LinTax", t, defaultCurrency)
		if err != nil {
			return nil, err
		}
		linTax := el.CreateElement("LinTax")
		linTax.AddChild(taxEl)
	}

	if len(l.Amounts) > 0 {
		linMoa := el.CreateElement("LinMoa")
		details := linMoa.CreateElement("MoaDetails")
		for _, a := range l.Amounts {
			moa, err := buildMoa("LinMoa", a, defaultCurrency)
			if err != nil {
				return nil, err
			}
			details.AddChild(moa)
		}
	}

	if len(l.FreeTexts) > 0 {
		ftx, err := buildFtxGroup("LinFtx", l.FreeTexts)
		if err != nil {
			return nil, err
		}
		el.AddChild(ftx)
	}

	for _, sub := range l.SubLines {
		subEl, err := buildLin(sub, defaultCurrency)
		if err != nil {
			return nil, err
		}
		el.AddChild(subEl)
	}
	return el, nil
}

// validateLineNumber admet un numéro décimal avec sous-niveaux ("1", "1.1",
// "2.10"); chaque segment est numérique non vide.
func validateLineNumber(n string) error {
	const section = "Lin"
	if n == "" {
		return domain.NewValidationError(section, "LineNumber", "numéro de ligne obligatoire")
	}
	segStart := 0
	for i := 0; i <= len(n); i++ {
		if i == len(n) || n[i] == '.' {
			if i == segStart {
				return domain.NewValidationError(section, "LineNumber", fmt.Sprintf("numéro %q mal formé", n))
			}
			segStart = i + 1
			continue
		}
		if n[i] < '0' || n[i] > '9' {
			return domain.NewValidationError(section, "LineNumber", fmt.Sprintf("numéro %q mal formé", n))
		}
	}
	return nil
}

// buildFtxGroup rend un groupe de textes libres sous le tag conteneur donné
// (Ftx au niveau document, LinFtx au niveau ligne).
func buildFtxGroup(containerTag string, texts []entity.FreeText) (*etree.Element, error) {
	el := etree.NewElement(containerTag)
	for _, ft := range texts {
		if err := requireCode(containerTag, "Ftx.subjectCode", teif.TableFreeTextSubject, ft.SubjectCode); err != nil {
			return nil, err
		}
		if len(ft.Texts) == 0 {
			return nil, domain.NewValidationError(containerTag, "FtxText", "texte libre sans contenu")
		}
		lang := ft.Lang
		if lang == "" {
			lang = teif.LangFR
		}
		ftx := el.CreateElement("Ftx")
		ftx.CreateAttr("subjectCode", ft.SubjectCode)
		for _, txt := range ft.Texts {
			t := addText(ftx, "FtxText", txt)
			t.CreateAttr("lang", lang)
		}
	}
	return el, nil
}
