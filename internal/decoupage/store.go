// Package decoupage holds the in-memory snapshot operations for a project's
// script document: the unassigned timecode pool plus the ordered scene list.
// All operations work on a cloned snapshot and hand the result back to the
// caller, which is responsible for persisting it.
package decoupage

import (
	"fmt"

	"decoupage/api-gateway/models"
)

// ContainerKind identifies one of the three droppable container families.
type ContainerKind string

const (
	// KindPool is the unassigned-timecode grid.
	KindPool ContainerKind = "timecodes"
	// KindTakes is a scene's takes column.
	KindTakes ContainerKind = "takes"
	// KindAudios is a scene's audio column.
	KindAudios ContainerKind = "audios"
)

// ContainerRef addresses one concrete container. Scene is the scene index and
// is ignored for the pool.
type ContainerRef struct {
	Kind  ContainerKind `json:"kind"`
	Scene int           `json:"scene"`
}

func (r ContainerRef) String() string {
	if r.Kind == KindPool {
		return string(KindPool)
	}
	return fmt.Sprintf("%s[%d]", r.Kind, r.Scene)
}

// Valid reports whether the reference addresses an existing container in doc.
func (r ContainerRef) Valid(doc models.Document) bool {
	switch r.Kind {
	case KindPool:
		return true
	case KindTakes, KindAudios:
		return r.Scene >= 0 && r.Scene < len(doc.Script)
	default:
		return false
	}
}

// Clone deep-copies a document so mutations never leak into the snapshot the
// caller is still rendering from.
func Clone(doc models.Document) models.Document {
	out := models.Document{
		Timecodes: append([]models.Timecode(nil), doc.Timecodes...),
		Script:    make([]models.Scene, len(doc.Script)),
	}
	for i, scene := range doc.Script {
		scene.ActiveFields = append([]string(nil), scene.ActiveFields...)
		scene.Timecodes = append([]models.Timecode(nil), scene.Timecodes...)
		scene.Audios = append([]models.Timecode(nil), scene.Audios...)
		out.Script[i] = scene
	}
	return out
}

// list returns the slice addressed by ref inside doc, or nil when the
// reference is out of range.
func list(doc *models.Document, ref ContainerRef) *[]models.Timecode {
	switch ref.Kind {
	case KindPool:
		return &doc.Timecodes
	case KindTakes:
		if ref.Scene < 0 || ref.Scene >= len(doc.Script) {
			return nil
		}
		return &doc.Script[ref.Scene].Timecodes
	case KindAudios:
		if ref.Scene < 0 || ref.Scene >= len(doc.Script) {
			return nil
		}
		return &doc.Script[ref.Scene].Audios
	}
	return nil
}

// Container returns a copy of the timecodes held by ref.
func Container(doc models.Document, ref ContainerRef) []models.Timecode {
	l := list(&doc, ref)
	if l == nil {
		return nil
	}
	return append([]models.Timecode(nil), *l...)
}

// Find locates a timecode by id and returns its container and index.
func Find(doc models.Document, id string) (ContainerRef, int, bool) {
	for i, tc := range doc.Timecodes {
		if tc.ID == id {
			return ContainerRef{Kind: KindPool}, i, true
		}
	}
	for s, scene := range doc.Script {
		for i, tc := range scene.Timecodes {
			if tc.ID == id {
				return ContainerRef{Kind: KindTakes, Scene: s}, i, true
			}
		}
		for i, tc := range scene.Audios {
			if tc.ID == id {
				return ContainerRef{Kind: KindAudios, Scene: s}, i, true
			}
		}
	}
	return ContainerRef{}, 0, false
}

// Move relocates the timecode with the given id from src to dst at toIndex.
// toIndex == -1 appends. Within a single container the target index is
// adjusted for the removed source element, so dropping an item back onto its
// own position is a no-op with respect to order. Returns the updated document
// and false when the item is not actually present in src (stale reference),
// in which case the document is returned unchanged.
func Move(doc models.Document, id string, src, dst ContainerRef, toIndex int) (models.Document, bool) {
	out := Clone(doc)

	srcList := list(&out, src)
	dstList := list(&out, dst)
	if srcList == nil || dstList == nil {
		return doc, false
	}

	fromIndex := -1
	for i, tc := range *srcList {
		if tc.ID == id {
			fromIndex = i
			break
		}
	}
	if fromIndex == -1 {
		return doc, false
	}

	item := (*srcList)[fromIndex]
	*srcList = append((*srcList)[:fromIndex], (*srcList)[fromIndex+1:]...)

	if toIndex < 0 || toIndex > len(*dstList) {
		toIndex = len(*dstList)
	} else if src == dst && toIndex > fromIndex {
		toIndex--
	}

	rest := append([]models.Timecode(nil), (*dstList)[toIndex:]...)
	*dstList = append(append((*dstList)[:toIndex], item), rest...)
	return out, true
}

// RenumberScenes reassigns positional ids and names ("scene-N" / "Cena N").
// Must run after every insert/delete/reorder of scenes.
func RenumberScenes(script []models.Scene) {
	for i := range script {
		script[i].ID = fmt.Sprintf("scene-%d", i+1)
		script[i].Name = fmt.Sprintf("Cena %d", i+1)
	}
}

// InsertScene adds an empty scene right after the given index and renumbers.
// after == -1 (or an empty script) prepends.
func InsertScene(doc models.Document, after int) models.Document {
	out := Clone(doc)
	at := after + 1
	if at < 0 {
		at = 0
	}
	if at > len(out.Script) {
		at = len(out.Script)
	}
	scene := models.Scene{
		ActiveFields: []string{},
		Timecodes:    []models.Timecode{},
		Audios:       []models.Timecode{},
	}
	rest := append([]models.Scene(nil), out.Script[at:]...)
	out.Script = append(append(out.Script[:at], scene), rest...)
	RenumberScenes(out.Script)
	return out
}

// RemoveScene deletes the scene at index, discarding its contained timecodes.
// Items are not migrated back to the pool; the caller confirms with the user
// before asking for this.
func RemoveScene(doc models.Document, index int) (models.Document, bool) {
	if index < 0 || index >= len(doc.Script) {
		return doc, false
	}
	out := Clone(doc)
	out.Script = append(out.Script[:index], out.Script[index+1:]...)
	RenumberScenes(out.Script)
	return out, true
}

// MoveScene relocates the scene at from to position to and renumbers.
func MoveScene(doc models.Document, from, to int) (models.Document, bool) {
	if from < 0 || from >= len(doc.Script) || to < 0 || to >= len(doc.Script) {
		return doc, false
	}
	out := Clone(doc)
	scene := out.Script[from]
	out.Script = append(out.Script[:from], out.Script[from+1:]...)
	rest := append([]models.Scene(nil), out.Script[to:]...)
	out.Script = append(append(out.Script[:to], scene), rest...)
	RenumberScenes(out.Script)
	return out, true
}

// Remove deletes the timecode with the given id wherever it lives.
func Remove(doc models.Document, id string) (models.Document, bool) {
	out := Clone(doc)
	ref, idx, ok := Find(out, id)
	if !ok {
		return doc, false
	}
	l := list(&out, ref)
	*l = append((*l)[:idx], (*l)[idx+1:]...)
	return out, true
}

// update applies fn to the timecode with the given id wherever it lives.
func update(doc models.Document, id string, fn func(*models.Timecode)) (models.Document, bool) {
	out := Clone(doc)
	ref, idx, ok := Find(out, id)
	if !ok {
		return doc, false
	}
	l := list(&out, ref)
	fn(&(*l)[idx])
	return out, true
}

// SetClassification sets the item's type. Scene-capacity invariants are only
// enforced at drop time; reclassifying an item already resident in a scene is
// deliberately left unchecked, matching how existing documents were produced.
func SetClassification(doc models.Document, id, typ string) (models.Document, bool) {
	return update(doc, id, func(tc *models.Timecode) { tc.Type = typ })
}

// SetRating sets the 0-3 classification weight.
func SetRating(doc models.Document, id string, rating int) (models.Document, bool) {
	if rating < 0 {
		rating = 0
	}
	if rating > 3 {
		rating = 3
	}
	return update(doc, id, func(tc *models.Timecode) { tc.Rating = rating })
}

// SetText replaces the free-form annotation.
func SetText(doc models.Document, id, text string) (models.Document, bool) {
	return update(doc, id, func(tc *models.Timecode) { tc.Text = text })
}

// IDs returns every timecode id across pool and scenes, in container order.
func IDs(doc models.Document) []string {
	var ids []string
	for _, tc := range doc.Timecodes {
		ids = append(ids, tc.ID)
	}
	for _, scene := range doc.Script {
		for _, tc := range scene.Timecodes {
			ids = append(ids, tc.ID)
		}
		for _, tc := range scene.Audios {
			ids = append(ids, tc.ID)
		}
	}
	return ids
}
