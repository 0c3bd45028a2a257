package editor

// Field benennt ein beschreibbares Feld eines Blocks.
type Field string

const (
	FieldValue   Field = "value"
	FieldCaption Field = "caption"
)

// Insert liefert eine neue Folge mit einem frischen, leeren Block der Art
// kind unmittelbar nach index. Die relative Reihenfolge aller übrigen Blöcke
// bleibt erhalten. Aufrufer leiten index aus bestehenden Blockpositionen ab;
// Werte außerhalb des Bereichs werden eingeklemmt statt zu scheitern.
func Insert(seq []Block, index int, kind Kind) []Block {
	if index < -1 {
		index = -1
	}
	if index >= len(seq) {
		index = len(seq) - 1
	}
	out := make([]Block, 0, len(seq)+1)
	out = append(out, seq[:index+1]...)
	out = append(out, NewBlock(kind))
	out = append(out, seq[index+1:]...)
	return out
}

// Remove liefert eine neue Folge ohne den Block an index. Ein Editor hat nie
// null Blöcke: würde die Folge leer, tritt ein einzelner leerer Absatz an
// ihre Stelle.
func Remove(seq []Block, index int) []Block {
	if index < 0 || index >= len(seq) {
		return append([]Block(nil), seq...)
	}
	out := make([]Block, 0, len(seq)-1)
	out = append(out, seq[:index]...)
	out = append(out, seq[index+1:]...)
	if len(out) == 0 {
		out = append(out, NewBlock(KindParagraph))
	}
	return out
}

// MoveUp vertauscht den Block an index mit seinem Vorgänger.
// An der oberen Grenze ein No-op.
func MoveUp(seq []Block, index int) []Block {
	out := append([]Block(nil), seq...)
	if index <= 0 || index >= len(out) {
		return out
	}
	out[index-1], out[index] = out[index], out[index-1]
	return out
}

// MoveDown vertauscht den Block an index mit seinem Nachfolger.
// An der unteren Grenze ein No-op.
func MoveDown(seq []Block, index int) []Block {
	out := append([]Block(nil), seq...)
	if index < 0 || index >= len(out)-1 {
		return out
	}
	out[index], out[index+1] = out[index+1], out[index]
	return out
}

// UpdateField ersetzt genau ein Feld genau eines Blocks; Nachbarn bleiben
// unberührt.
func UpdateField(seq []Block, index int, field Field, value string) []Block {
	out := append([]Block(nil), seq...)
	if index < 0 || index >= len(out) {
		return out
	}
	switch field {
	case FieldValue:
		out[index].Value = value
	case FieldCaption:
		out[index].Caption = value
	}
	return out
}
