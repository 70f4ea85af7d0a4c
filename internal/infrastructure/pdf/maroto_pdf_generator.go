// Package pdf implémente la restitution graphique lisible d'une facture TEIF,
// destinée à accompagner le XML signé (le XML reste la pièce fiscale).
//
// Mise en page A4 :
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Raison sociale + Matricule  │  N° Facture + Date   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VENDEUR: Adresse / Contact                                 │
//	│  ACHETEUR: Nom + identifiant + contact                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Qté | Désignation | P.U. HT | TVA% | Total HT       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAUX: Total HT / Total taxes / TOTAL TTC                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: identifiant d'archive + QR + mention légale        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	"github.com/shopspring/decimal"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/ttnlab/teif-engine/internal/domain/entity"
	pkgteif "github.com/ttnlab/teif-engine/pkg/teif"
)

// ── Palette ───────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 170, Green: 20, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implémente billing.PDFGenerator avec Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construit le générateur.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Render génère le PDF d'une facture et retourne ses bytes.
func (g *MarotoPDFGenerator) Render(inv *entity.Invoice, documentID string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture Électronique TEIF", true).
		WithAuthor(inv.Seller.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partnerRow("VENDEUR", inv.Seller))
	m.AddRows(partnerRow("ACHETEUR", inv.Buyer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(inv.Lines, inv.Currency) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(inv, documentID) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: génération du document: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ──────────────────────────────────────────────────────────────────

// headerRow : raison sociale + matricule (gauche), n° facture + date (droite).
func headerRow(inv *entity.Invoice) core.Row {
	date := ""
	if len(inv.Dates) > 0 {
		date = inv.Dates[0].Value.Format("02/01/2006")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.Seller.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Matricule fiscal : "+inv.Header.SenderIdentifier, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURE ÉLECTRONIQUE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.DocumentIdentifier, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partnerRow : bloc d'identification d'un intervenant.
func partnerRow(label string, p entity.Partner) core.Row {
	address := "—"
	if p.Address != nil {
		address = fmt.Sprintf("%s, %s %s", p.Address.Street, p.Address.PostalCode, p.Address.City)
	}
	contact := "—"
	if len(p.Contacts) > 0 {
		c := p.Contacts[0]
		contact = fmt.Sprintf("%s  |  %s", nonEmpty(c.Phone, "—"), nonEmpty(c.Email, "—"))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s (%s)", p.Name, nonEmpty(p.Identifier, "—")), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Adresse : %s   |   Contact : %s", address, contact),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow : en-tête de la table des lignes.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 1, align.Center),
		h("Désignation", 5, align.Left),
		h("P.U. HT", 2, align.Right),
		h("TVA%", 1, align.Center),
		h("Total HT", 3, align.Right),
	)
}

// tableLineRows : une rangée par ligne; les sous-lignes sont indentées.
func tableLineRows(lines []entity.Line, currency string) []core.Row {
	if currency == "" {
		currency = pkgteif.CurrencyTND
	}
	var result []core.Row
	var walk func(lines []entity.Line, depth int)
	walk = func(lines []entity.Line, depth int) {
		for _, l := range lines {
			qty := ""
			if l.Quantity != nil {
				qty = l.Quantity.Value.String()
			}
			indent := float64(depth * 3)
			result = append(result, row.New(7).Add(
				col.New(1).Add(text.New(qty,
					props.Text{Size: 8, Align: align.Center, Top: 1},
				)),
				col.New(5).Add(text.New(l.Number+"  "+l.Description,
					props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1 + indent},
				)),
				col.New(2).Add(text.New(money(amountOf(l.Amounts, pkgteif.AmountTypeUnitPrice), currency),
					props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
				)),
				col.New(1).Add(text.New(lineTaxRate(l),
					props.Text{Size: 8, Align: align.Center, Top: 1},
				)),
				col.New(3).Add(text.New(money(amountOf(l.Amounts, pkgteif.AmountTypeLineNet), currency),
					props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
				)),
			))
			walk(l.SubLines, depth+1)
		}
	}
	walk(lines, 0)
	return result
}

// totalsRow : bloc des totaux aligné à droite.
func totalsRow(inv *entity.Invoice) core.Row {
	currency := inv.Currency
	if currency == "" {
		currency = pkgteif.CurrencyTND
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(4).Add(
			label("Total hors taxes :"),
			label("Total des taxes :"),
			grandLabel("TOTAL TTC :"),
		),
		col.New(4).Add(
			value(money(amountOf(inv.Amounts, pkgteif.AmountTypeTotalNet), currency)),
			value(money(inv.Taxes.Total, currency)),
			grandValue(money(amountOf(inv.Amounts, pkgteif.AmountTypeTotalGross), currency)),
		),
		col.New(1),
	)
}

// footerRows : identifiant d'archive + code QR + mention légale.
func footerRows(inv *entity.Invoice, documentID string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("DOCUMENT ÉLECTRONIQUE TEIF " + pkgteif.Version, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if documentID != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Identifiant d'archive : "+documentID, props.Text{
				Size: 7, Color: colorGray, Top: 1,
			}),
		)))
		qrData := fmt.Sprintf("%s|%s|%s", inv.Header.SenderIdentifier, inv.DocumentIdentifier, documentID)
		rows = append(rows, row.New(40).Add(
			col.New(4).Add(code.NewQr(qrData, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Scannez le code QR pour retrouver\nce document dans l'archive.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Représentation graphique d'une\nFACTURE ÉLECTRONIQUE TEIF", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 20,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Seul le document XML signé fait foi. Cette restitution est fournie "+
				"pour lecture; conservez le XML comme pièce fiscale.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// amountOf retourne la valeur du premier montant du type demandé, zéro sinon.
func amountOf(amounts []entity.Amount, typeCode string) decimal.Decimal {
	for _, a := range amounts {
		if a.TypeCode == typeCode {
			return a.Value
		}
	}
	return decimal.Zero
}

// lineTaxRate retourne le taux de TVA d'une ligne ("19%"), "—" sans taxe.
func lineTaxRate(l entity.Line) string {
	for _, t := range l.Taxes {
		if t.TypeCode == pkgteif.TaxTypeTVA {
			return t.Rate.String() + "%"
		}
	}
	return "—"
}

// money formate un montant à 3 décimales suivi de la devise.
func money(d decimal.Decimal, currency string) string {
	return d.Round(3).StringFixed(3) + " " + currency
}
