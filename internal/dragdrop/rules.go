package dragdrop

import (
	"errors"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/models"
)

// ErrInvalidMove marks drop-legality failures so callers can tell them apart
// from transport errors. Use errors.Is.
var ErrInvalidMove = errors.New("invalid move")

// MoveError carries the user-facing message for a rejected drop.
type MoveError struct {
	Message string
}

func (e *MoveError) Error() string { return e.Message }

func (e *MoveError) Unwrap() error { return ErrInvalidMove }

func reject(msg string) error { return &MoveError{Message: msg} }

// Rejection messages, kept verbatim from the client UI.
const (
	msgClassifyFirst   = "Classifique o take para move-lo a uma cena!"
	msgAudioIntoTakes  = "Áudios só podem ser movidos para a coluna de áudio"
	msgVideoIntoAudios = "Videos só podem ser movidos para a coluna de takes"
	msgSceneHasAV      = "Essa cena já contém um AV e não pode receber mais takes!"
	msgSceneHasVideo   = "Essa cena já contém um vídeo, portanto não pode receber um AV!"
	msgSceneHasAudio   = "Essa cena já contém um áudio, portanto não pode receber um AV!"
	msgAudioToTake     = "Não pode mover audio para take"
	msgTakeToAudio     = "Não pode mover take para audio"
)

// CheckMove validates a drop of item from origin into target against the
// document's current contents. Rules run in a fixed order and the first
// failing rule wins. A nil return means the drop is legal.
func CheckMove(doc models.Document, item models.Timecode, origin, target decoupage.ContainerRef) error {
	if target.Kind == decoupage.KindPool {
		return nil // moving back to the pool is always allowed
	}

	// 1. Items must be classified before entering a scene.
	if !item.IsClassified() {
		return reject(msgClassifyFirst)
	}

	// 2–3. Column affinity by type.
	if target.Kind == decoupage.KindTakes && item.Type == models.TypeAudio {
		return reject(msgAudioIntoTakes)
	}
	if target.Kind == decoupage.KindAudios &&
		(item.Type == models.TypeVideo || item.Type == models.TypeAudioVideo) {
		return reject(msgVideoIntoAudios)
	}

	// 4. Scene capacity, evaluated against the target scene's current
	// contents, skipping the item itself when it already lives there.
	scene := doc.Script[target.Scene]
	for _, tc := range scene.Timecodes {
		if tc.ID == item.ID {
			continue
		}
		// One AV take closes the scene for further takes and for audios.
		if tc.Type == models.TypeAudioVideo {
			return reject(msgSceneHasAV)
		}
		if tc.Type == models.TypeVideo && item.Type == models.TypeAudioVideo {
			return reject(msgSceneHasVideo)
		}
	}
	for _, tc := range scene.Audios {
		if tc.ID == item.ID {
			continue
		}
		if tc.Type == models.TypeAudio && item.Type == models.TypeAudioVideo {
			return reject(msgSceneHasAudio)
		}
	}

	// 5. Takes and audios never exchange items directly; only through the pool.
	if origin.Kind == decoupage.KindAudios && target.Kind == decoupage.KindTakes {
		return reject(msgAudioToTake)
	}
	if origin.Kind == decoupage.KindTakes && target.Kind == decoupage.KindAudios {
		return reject(msgTakeToAudio)
	}

	return nil
}

// ValidateDocument checks every scene-resident item against the placement
// rules, as if each had just been dropped where it sits. Full documents
// supplied by clients go through this before replacing the stored state, so a
// move applied on the client cannot smuggle in a placement a drop would have
// rejected.
func ValidateDocument(doc models.Document) error {
	for s, scene := range doc.Script {
		takes := decoupage.ContainerRef{Kind: decoupage.KindTakes, Scene: s}
		audios := decoupage.ContainerRef{Kind: decoupage.KindAudios, Scene: s}
		for _, item := range scene.Timecodes {
			if err := CheckMove(doc, item, takes, takes); err != nil {
				return err
			}
		}
		for _, item := range scene.Audios {
			if err := CheckMove(doc, item, audios, audios); err != nil {
				return err
			}
		}
	}
	return nil
}
