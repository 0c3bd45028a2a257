package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Benutzer-sichtbare Fehlertexte. Die Formulierungen sind Teil des
// Vertrags mit der Oberfläche und werden wörtlich angezeigt.
var (
	ErrInvalidImageFormat = errors.New("Invalid image format. Please use JPEG, PNG, GIF, or WebP.")
	ErrImageTooLarge      = errors.New("Image size too large. Please use images under 5MB.")
	ErrUploadInFlight     = errors.New("Please wait for all images to finish uploading.")
	ErrMissingTitle       = errors.New("Please provide an article title.")
	ErrMissingCategory    = errors.New("Please provide a category.")
	ErrNotImageBlock      = errors.New("block is not an image block")
)

// MaxImageSize ist die Obergrenze für Bild-Uploads.
const MaxImageSize = 5 * 1024 * 1024

// allowedImageTypes ist die MIME-Positivliste für Bildblöcke.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage prüft Typ und Größe einer Bilddatei gegen die Positivliste.
// Die Prüfung läuft vor jedem Netzwerkzugriff; ein abgelehntes Bild erreicht
// den Medienspeicher nie.
func ValidateImage(contentType string, size int64) error {
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return ErrInvalidImageFormat
	}
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// ImageFile beschreibt eine vom Benutzer gewählte Bilddatei.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader

	// Preview ist die lokale Vorschau-Ressource (im Browser wäre das eine
	// Objekt-URL). Die Session übernimmt die Verantwortung und gibt sie
	// beim Entfernen des Blocks oder beim Schließen wieder frei.
	Preview io.Closer
}

// UploadedImage ist das Resultat eines erfolgreichen Uploads.
type UploadedImage struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	Format   string
}

// Uploader bringt eine Bilddatei in den Medienspeicher.
type Uploader interface {
	Upload(ctx context.Context, file ImageFile) (UploadedImage, error)
}

// UploadResult meldet den Ausgang eines asynchronen Uploads.
type UploadResult struct {
	Image UploadedImage
	Err   error
	// Discarded ist true, wenn der Block vor Abschluss entfernt wurde und
	// das Resultat deshalb verworfen worden ist.
	Discarded bool
}

// slotMeta begleitet jeden Block mit sitzungsinternem Zustand. Die Kennung
// bleibt über Verschieben und Einfügen hinweg stabil, damit ein langsamer
// Upload seinen Block auch nach Umordnungen wiederfindet.
type slotMeta struct {
	id      uint64
	preview io.Closer
}

// Session ist der exklusive Besitzer eines Artikelentwurfs: Titel,
// Kategorie, Schlagworte und die Blockfolge. Sie gehört genau einer
// Bearbeitung; es gibt keine Zusammenführung konkurrierender Sitzungen
// (letzter Schreiber gewinnt, serverseitig). Die Methoden sind für den
// nebenläufigen Abschluss von Uploads intern verriegelt.
type Session struct {
	mu sync.Mutex

	Title    string
	Category string
	Tags     []string

	blocks []Block
	meta   []slotMeta
	nextID uint64

	uploading map[uint64]struct{}
	uploader  Uploader

	closed bool
}

// NewSession eröffnet eine Sitzung mit einem einzelnen leeren Absatz.
func NewSession(uploader Uploader) *Session {
	s := &Session{
		uploader:  uploader,
		uploading: make(map[uint64]struct{}),
	}
	s.blocks = []Block{NewBlock(KindParagraph)}
	s.meta = []slotMeta{{id: s.newID()}}
	return s
}

func (s *Session) newID() uint64 {
	s.nextID++
	return s.nextID
}

// Blocks liefert eine Kopie der aktuellen Blockfolge.
func (s *Session) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Block(nil), s.blocks...)
}

// Preview rendert die aktuelle Vorschau aus der Blockfolge.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RenderBlocks(s.blocks)
}

// Insert fügt einen frischen Block nach index ein.
func (s *Session) Insert(index int, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = Insert(s.blocks, index, kind)
	if index < -1 {
		index = -1
	}
	if index >= len(s.meta) {
		index = len(s.meta) - 1
	}
	m := append([]slotMeta(nil), s.meta[:index+1]...)
	m = append(m, slotMeta{id: s.newID()})
	m = append(m, s.meta[index+1:]...)
	s.meta = m
}

// Remove entfernt den Block an index und gibt dessen Vorschau-Ressource
// frei. Die Folge wird nie leer; als letzter Rest bleibt ein leerer Absatz.
func (s *Session) Remove(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.blocks) {
		return
	}
	s.releasePreview(&s.meta[index])
	s.blocks = Remove(s.blocks, index)
	m := append([]slotMeta(nil), s.meta[:index]...)
	m = append(m, s.meta[index+1:]...)
	if len(m) == 0 {
		m = append(m, slotMeta{id: s.newID()})
	}
	s.meta = m
}

// MoveUp verschiebt den Block an index um eine Position nach oben.
func (s *Session) MoveUp(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = MoveUp(s.blocks, index)
	if index > 0 && index < len(s.meta) {
		s.meta[index-1], s.meta[index] = s.meta[index], s.meta[index-1]
	}
}

// MoveDown verschiebt den Block an index um eine Position nach unten.
func (s *Session) MoveDown(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = MoveDown(s.blocks, index)
	if index >= 0 && index < len(s.meta)-1 {
		s.meta[index], s.meta[index+1] = s.meta[index+1], s.meta[index]
	}
}

// UpdateField schreibt ein Feld eines Blocks neu.
func (s *Session) UpdateField(index int, field Field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = UpdateField(s.blocks, index, field, value)
}

// FormatBlock wendet eine Inline-Auszeichnung auf die Auswahl im Absatz an
// index an und liefert die neue Auswahl zurück.
func (s *Session) FormatBlock(index, selStart, selEnd int, style Style, extra string) (newStart, newEnd int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.blocks) {
		return selStart, selEnd
	}
	text, ns, ne := Format(s.blocks[index].Value, selStart, selEnd, style, extra)
	s.blocks[index].Value = text
	return ns, ne
}

// Uploading meldet, ob irgendein Block noch auf einen Upload wartet.
func (s *Session) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploading) > 0
}

// UploadImage validiert die Datei lokal und stößt dann den Upload für den
// Bildblock an index an. Validierungsfehler kommen sofort zurück, ohne dass
// etwas das Netz erreicht. Der Ausgang des Uploads wird auf dem gelieferten
// Kanal gemeldet: bei Erfolg stehen URL und Medien-Handle im Block, bei
// Fehlschlag ist der Wert des Blocks wieder leer und der Fehler trägt die
// Originalmeldung des Uploads. Wurde der Block zwischenzeitlich entfernt,
// wird das Resultat stillschweigend verworfen.
func (s *Session) UploadImage(ctx context.Context, index int, file ImageFile) (<-chan UploadResult, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.blocks) || s.blocks[index].Type != KindImage {
		s.mu.Unlock()
		return nil, ErrNotImageBlock
	}
	if err := ValidateImage(file.ContentType, file.Size); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	id := s.meta[index].id
	s.uploading[id] = struct{}{}
	s.releasePreview(&s.meta[index])
	s.meta[index].preview = file.Preview
	s.mu.Unlock()

	done := make(chan UploadResult, 1)
	go func() {
		img, err := s.uploader.Upload(ctx, file)
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.uploading, id)

		slot := s.slotByID(id)
		if slot < 0 {
			// Block wurde während des Uploads entfernt; das Resultat
			// landet in einem losgelösten Objekt und verfällt.
			done <- UploadResult{Image: img, Err: err, Discarded: true}
			return
		}
		if err != nil {
			s.blocks[slot].Value = ""
			s.blocks[slot].PublicID = ""
			done <- UploadResult{Err: err}
			return
		}
		s.blocks[slot].Value = img.URL
		s.blocks[slot].PublicID = img.PublicID
		done <- UploadResult{Image: img}
	}()
	return done, nil
}

// slotByID findet die aktuelle Position einer Slot-Kennung, -1 wenn entfernt.
func (s *Session) slotByID(id uint64) int {
	for i := range s.meta {
		if s.meta[i].id == id {
			return i
		}
	}
	return -1
}

func (s *Session) releasePreview(m *slotMeta) {
	if m.preview != nil {
		_ = m.preview.Close()
		m.preview = nil
	}
}

// Submission ist die an das Backend übermittelte Form eines Entwurfs.
type Submission struct {
	Title     string   `json:"title"`
	Content   []Block  `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status,omitempty"`
	Published bool     `json:"published"`
}

// Assemble prüft den Entwurf und baut die Übermittlungsform. Solange noch
// ein Upload läuft, darf keine Übermittlung stattfinden; der Aufruf ist dann
// ein No-op mit ErrUploadInFlight. Veröffentlichen verlangt Titel und
// Kategorie, ein Entwurf nur den Titel (die Kategorie fällt auf "General"
// zurück).
func (s *Session) Assemble(publish bool) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.uploading) > 0 {
		return Submission{}, ErrUploadInFlight
	}
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return Submission{}, ErrMissingTitle
	}
	category := strings.TrimSpace(s.Category)
	if publish && category == "" {
		return Submission{}, ErrMissingCategory
	}
	if category == "" {
		category = "General"
	}

	sub := Submission{
		Title:     title,
		Content:   Normalize(s.blocks),
		Category:  category,
		Tags:      append([]string(nil), s.Tags...),
		Published: publish,
	}
	if publish {
		sub.Status = "published"
	} else {
		sub.Status = "draft"
	}
	return sub, nil
}

// Close gibt alle noch gehaltenen Vorschau-Ressourcen frei. Nach Close ist
// die Sitzung verbraucht.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for i := range s.meta {
		s.releasePreview(&s.meta[i])
	}
	return nil
}
