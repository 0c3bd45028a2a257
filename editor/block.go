// Package editor enthält das framework-unabhängige Herzstück des Redaktions-
// Editors: die geordnete Blockfolge eines Artikels, die reinen Operationen
// darauf, den Inline-Formatierer und den Vorschau-Renderer. Alle Funktionen
// hier sind frei von HTTP- und Datenbank-Abhängigkeiten.
package editor

import "encoding/json"

// Kind ist der Typ eines Inhaltsblocks.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindImage     Kind = "image"
)

// Block ist ein Element der geordneten Blockfolge eines Artikels.
// Bei Bildblöcken bleibt Value leer, bis ein Upload abgeschlossen ist;
// ein leerer Value bedeutet "ausstehend", nie einen Fehler.
type Block struct {
	Type    Kind   `json:"type"`
	Value   string `json:"value"`
	Caption string `json:"caption,omitempty"`

	// PublicID ist das opake Handle des Medienspeichers. Der Editor
	// interpretiert es nie, er reicht es bei der Übermittlung nur weiter.
	PublicID string `json:"public_id,omitempty"`
}

// NewBlock liefert einen frischen, leeren Block der gewünschten Art.
func NewBlock(kind Kind) Block {
	return Block{Type: kind}
}

// Pending meldet, ob ein Bildblock noch auf seinen Upload wartet.
func (b Block) Pending() bool {
	return b.Type == KindImage && b.Value == ""
}

// Normalize bringt die Blockfolge in die Übermittlungsform: Blöcke ohne
// bekannten Typ fallen weg und nur die Felder {type, value, caption?,
// public_id?} bleiben erhalten. Interne
// Zustände der Bearbeitungssitzung kommen hier nie an.
func Normalize(seq []Block) []Block {
	out := make([]Block, 0, len(seq))
	for _, b := range seq {
		switch b.Type {
		case KindParagraph:
			out = append(out, Block{Type: KindParagraph, Value: b.Value})
		case KindImage:
			out = append(out, Block{Type: KindImage, Value: b.Value, Caption: b.Caption, PublicID: b.PublicID})
		default:
			// unbekannter Typ serialisiert zu nichts Brauchbarem -> verwerfen
		}
	}
	return out
}

// DecodeBlocks liest eine Blockfolge aus ihrer JSON-Form.
func DecodeBlocks(raw []byte) ([]Block, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var seq []Block
	if err := json.Unmarshal(raw, &seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// EncodeBlocks serialisiert eine Blockfolge in ihre JSON-Form.
func EncodeBlocks(seq []Block) ([]byte, error) {
	return json.Marshal(Normalize(seq))
}
