package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPassOrder(t *testing.T) {
	got := Render("**a** *b* # c\n")
	assert.Equal(t, "<strong>a</strong> <em>b</em> <h1>c</h1>", got)
}

func TestRenderBold(t *testing.T) {
	assert.Equal(t, "vorn <strong>fett</strong> hinten", Render("vorn **fett** hinten"))
	assert.Equal(t, "<strong>a</strong><strong>b</strong>", Render("**a****b**"))
}

func TestRenderItalic(t *testing.T) {
	assert.Equal(t, "vorn <em>kursiv</em> hinten", Render("vorn *kursiv* hinten"))
}

func TestRenderUnclosedMarkers(t *testing.T) {
	// Ein einzelner Stern ohne Gegenstück bleibt wörtlich stehen.
	assert.Equal(t, "5 * 3 = 15", Render("5 * 3 = 15"))

	// "**a" ohne Abschluss: der Fett-Durchlauf findet kein Paar, der
	// Kursiv-Durchlauf darauf matcht die beiden Sterne als leeres Paar.
	assert.Equal(t, "<em></em>a", Render("**a"))
}

func TestRenderMarkerPairsDoNotSpanLines(t *testing.T) {
	assert.Equal(t, "*a<br>b*", Render("*a\nb*"))
}

func TestRenderHeadingAnywhereConsumesNewline(t *testing.T) {
	assert.Equal(t, "<h1>Titel</h1>danach", Render("# Titel\ndanach"))
	assert.Equal(t, "<h1>Titel</h1>", Render("# Titel"))
	assert.Equal(t, "mitten <h1>drin</h1>weiter", Render("mitten # drin\nweiter"))
}

func TestRenderNewlinesBecomeBreaks(t *testing.T) {
	assert.Equal(t, "eins<br>zwei<br><br>drei", Render("eins\nzwei\n\ndrei"))
}

func TestRenderPassesThroughUnderlineAndColor(t *testing.T) {
	assert.Equal(t, "<u>unterstrichen</u>", Render("<u>unterstrichen</u>"))
	assert.Equal(t,
		`<span style="color: #cc0000">rot</span>`,
		Render(`<span style="color: #cc0000">rot</span>`))
}

func TestRenderDoesNotEscapeArbitraryHTML(t *testing.T) {
	// Render maskiert nichts; die Filterung ist Sache von RenderSanitized.
	raw := `<script>alert(1)</script>`
	assert.Equal(t, raw, Render(raw))
}

func TestRenderSanitizedStripsScripts(t *testing.T) {
	got := RenderSanitized("**a** <script>alert(1)</script>")
	assert.Equal(t, "<strong>a</strong> ", got)

	assert.Equal(t, "<u>u</u>", RenderSanitized("<u>u</u>"))
}

func TestSanitizeHTMLKeepsPreviewElements(t *testing.T) {
	in := `<p><strong>a</strong></p><figure><img src="https://cdn.example/a.png" alt="A"><figcaption>A</figcaption></figure><script>x()</script>`
	got := SanitizeHTML(in)

	assert.Contains(t, got, "<strong>a</strong>")
	assert.Contains(t, got, "<figcaption>A</figcaption>")
	assert.NotContains(t, got, "script")
}

func TestRenderBlocks(t *testing.T) {
	seq := []Block{
		{Type: KindParagraph, Value: "**fett**"},
		{Type: KindImage}, // ausstehend, wird übersprungen
		{Type: KindImage, Value: "https://cdn.example/a.png", Caption: `Bild "A"`},
		{Type: KindParagraph, Value: ""},
	}
	got := RenderBlocks(seq)

	assert.Equal(t,
		`<p><strong>fett</strong></p>`+
			`<figure><img src="https://cdn.example/a.png" alt="Bild &#34;A&#34;">`+
			`<figcaption>Bild &#34;A&#34;</figcaption></figure>`+
			`<p></p>`,
		got)
}
