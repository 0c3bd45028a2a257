package editor

import "fmt"

// Style ist eine Inline-Auszeichnung des Markdown-Subsets.
type Style string

const (
	StyleBold      Style = "bold"
	StyleItalic    Style = "italic"
	StyleUnderline Style = "underline"
	StyleHeading   Style = "heading"
	StyleColor     Style = "color"
)

// markers liefert das öffnende und das schließende Markierungspaar für einen
// Stil. extra trägt bei StyleColor den Hex-Wert.
func markers(style Style, extra string) (string, string) {
	switch style {
	case StyleBold:
		return "**", "**"
	case StyleItalic:
		return "*", "*"
	case StyleUnderline:
		return "<u>", "</u>"
	case StyleHeading:
		return "# ", "\n"
	case StyleColor:
		return fmt.Sprintf(`<span style="color: %s">`, extra), "</span>"
	}
	return "", ""
}

// Format umschließt die Auswahl [selStart, selEnd) im Text eines einzelnen
// Blocks mit den Markierungen des Stils und liefert den neuen Text sowie die
// verschobene Auswahl zurück. Bei leerer Auswahl werden die leeren Paare am
// Cursor eingefügt und der Cursor landet zwischen ihnen, damit direkt
// hineingeschrieben werden kann.
//
// Die Funktion ist rein: gleicher Text und gleiche Offsets ergeben immer
// dasselbe Resultat. Offsets sind Byte-Offsets in den UTF-8-Text; ungültige
// Werte werden eingeklemmt, vertauschte Grenzen getauscht.
func Format(text string, selStart, selEnd int, style Style, extra string) (newText string, newStart, newEnd int) {
	if selStart > selEnd {
		selStart, selEnd = selEnd, selStart
	}
	selStart = clamp(selStart, 0, len(text))
	selEnd = clamp(selEnd, 0, len(text))

	open, close := markers(style, extra)
	if open == "" && close == "" {
		return text, selStart, selEnd
	}

	newText = text[:selStart] + open + text[selStart:selEnd] + close + text[selEnd:]
	newStart = selStart + len(open)
	newEnd = selEnd + len(open)
	return newText, newStart, newEnd
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
