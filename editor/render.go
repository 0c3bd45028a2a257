package editor

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Render wandelt den gespeicherten Text eines Blocks in Vorschau-HTML um.
// Die Umwandlung ist eine feste Folge nicht-rekursiver Durchläufe:
//
//	1. **X**                      -> <strong>X</strong>
//	2. *X*                        -> <em>X</em>
//	3. <u>X</u>                   -> unverändert (bereits gültiges HTML)
//	4. <span style="color: C">X</span> -> unverändert
//	5. # X bis zum Zeilenende     -> <h1>X</h1>, der Zeilenumbruch entfällt
//	6. verbleibende \n            -> <br>
//
// Jeder Durchlauf ist ein expliziter Links-nach-rechts-Scanner ohne
// Rückgriff. Verschachtelte oder überlappende Markierungen komponieren
// deshalb bewusst nicht; nachgelagerte Inhalte verlassen sich auf genau
// dieses Verhalten. Über die festen Muster hinaus wird nichts maskiert:
// vom Benutzer getipptes HTML passiert unverändert. Wer das nicht will,
// nimmt RenderSanitized.
func Render(text string) string {
	text = wrapPairs(text, "**", "<strong>", "</strong>")
	text = wrapPairs(text, "*", "<em>", "</em>")
	text = wrapHeadings(text)
	return strings.ReplaceAll(text, "\n", "<br>")
}

// wrapPairs ersetzt das nächstgelegene, nicht überlappende Markierungspaar
// durch die HTML-Tags. Der Inhalt darf leer sein, aber keinen Zeilenumbruch
// enthalten. Ohne schließende Markierung bleibt die öffnende stehen.
func wrapPairs(text, marker, open, close string) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if !strings.HasPrefix(text[i:], marker) {
			b.WriteByte(text[i])
			i++
			continue
		}
		rest := text[i+len(marker):]
		j := strings.Index(rest, marker)
		if j < 0 || strings.Contains(rest[:j], "\n") {
			b.WriteString(marker)
			i += len(marker)
			continue
		}
		b.WriteString(open)
		b.WriteString(rest[:j])
		b.WriteString(close)
		i += len(marker) + j + len(marker)
	}
	return b.String()
}

// wrapHeadings ersetzt "# X" bis zum Zeilenende durch <h1>X</h1> und
// verbraucht dabei den abschließenden Zeilenumbruch.
func wrapHeadings(text string) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if !strings.HasPrefix(text[i:], "# ") {
			b.WriteByte(text[i])
			i++
			continue
		}
		rest := text[i+2:]
		end := strings.IndexByte(rest, '\n')
		if end < 0 {
			b.WriteString("<h1>")
			b.WriteString(rest)
			b.WriteString("</h1>")
			i = len(text)
			continue
		}
		b.WriteString("<h1>")
		b.WriteString(rest[:end])
		b.WriteString("</h1>")
		i += 2 + end + 1
	}
	return b.String()
}

// previewPolicy erlaubt genau die Elemente, die das Markdown-Subset erzeugen
// kann, samt der Farb-Spans, und entfernt alles Übrige (insbesondere Skripte).
var previewPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "em", "u", "h1", "br", "p", "figure", "figcaption")
	p.AllowAttrs("style").OnElements("span")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowStandardURLs()
	return p
}()

// RenderSanitized rendert wie Render, filtert das Ergebnis aber durch eine
// feste bluemonday-Policy. Die Durchlass-Eigenschaft für beliebiges HTML
// geht dabei absichtlich verloren; der Aufrufer wählt pro Einsatzort.
func RenderSanitized(text string) string {
	return previewPolicy.Sanitize(Render(text))
}

// SanitizeHTML filtert bereits gerendertes Vorschau-HTML durch dieselbe Policy.
func SanitizeHTML(html string) string {
	return previewPolicy.Sanitize(html)
}

// RenderBlocks baut die Artikelvorschau aus der aktuellen Blockfolge. Sie
// wird bei jeder Änderung komplett neu berechnet; es gibt keinen Cache.
// Bildblöcke ohne URL gelten als ausstehend und werden übersprungen.
func RenderBlocks(seq []Block) string {
	var b strings.Builder
	for _, blk := range seq {
		switch blk.Type {
		case KindParagraph:
			b.WriteString("<p>")
			b.WriteString(Render(blk.Value))
			b.WriteString("</p>")
		case KindImage:
			if blk.Value == "" {
				continue
			}
			b.WriteString(`<figure><img src="`)
			b.WriteString(html.EscapeString(blk.Value))
			b.WriteString(`" alt="`)
			b.WriteString(html.EscapeString(blk.Caption))
			b.WriteString(`">`)
			if blk.Caption != "" {
				b.WriteString("<figcaption>")
				b.WriteString(html.EscapeString(blk.Caption))
				b.WriteString("</figcaption>")
			}
			b.WriteString("</figure>")
		}
	}
	return b.String()
}
