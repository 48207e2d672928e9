package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/models"
)

func scopeHandler() *ApplicationHandler {
	return &ApplicationHandler{}
}

func scopeDoc() models.Document {
	return models.Document{
		Timecodes: []models.Timecode{
			{ID: "t1", Type: models.TypeVideo, Text: "antes"},
		},
		Script: []models.Scene{
			{
				ID: "scene-1", Name: "Cena 1",
				ActiveFields: []string{"description"},
				Timecodes:    []models.Timecode{{ID: "t2", Type: models.TypeVideo}},
				Audios:       []models.Timecode{{ID: "t3", Type: models.TypeAudio}},
			},
		},
	}
}

func TestApplyScope_PoolTimecode(t *testing.T) {
	h := scopeHandler()
	out, _, msg := h.applyScope(scopeDoc(), updatePayload{
		Scope:    "timecodes",
		Timecode: &models.Timecode{ID: "t1", Type: models.TypeVideo, Text: "depois", Rating: 2},
	})
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if out.Timecodes[0].Text != "depois" || out.Timecodes[0].Rating != 2 {
		t.Fatalf("pool timecode not replaced: %+v", out.Timecodes[0])
	}
}

func TestApplyScope_SceneTimecodeAndAudio(t *testing.T) {
	h := scopeHandler()

	out, _, msg := h.applyScope(scopeDoc(), updatePayload{
		Scope:    "script-timecodes",
		SceneID:  "scene-1",
		Timecode: &models.Timecode{ID: "t2", Type: models.TypeVideo, Text: "take anotado"},
	})
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if out.Script[0].Timecodes[0].Text != "take anotado" {
		t.Fatalf("scene take not replaced")
	}

	out, _, msg = h.applyScope(scopeDoc(), updatePayload{
		Scope:    "script-audios",
		SceneID:  "scene-1",
		Timecode: &models.Timecode{ID: "t3", Type: models.TypeAudio, Rating: 3},
	})
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if out.Script[0].Audios[0].Rating != 3 {
		t.Fatalf("scene audio not replaced")
	}
}

func TestApplyScope_UnknownTargetsRejected(t *testing.T) {
	h := scopeHandler()

	_, status, msg := h.applyScope(scopeDoc(), updatePayload{
		Scope:    "timecodes",
		Timecode: &models.Timecode{ID: "ghost"},
	})
	if msg == "" || status != fiber.StatusNotFound {
		t.Fatalf("ghost pool update: status=%d msg=%q", status, msg)
	}

	_, status, msg = h.applyScope(scopeDoc(), updatePayload{
		Scope:    "script-timecodes",
		SceneID:  "scene-9",
		Timecode: &models.Timecode{ID: "t2"},
	})
	if msg == "" || status != fiber.StatusNotFound {
		t.Fatalf("unknown scene update: status=%d msg=%q", status, msg)
	}

	_, status, msg = h.applyScope(scopeDoc(), updatePayload{Scope: "timecodes"})
	if msg == "" || status != fiber.StatusBadRequest {
		t.Fatalf("missing timecode payload: status=%d msg=%q", status, msg)
	}
}

func TestApplyScope_SceneFields(t *testing.T) {
	h := scopeHandler()
	desc := "nova descrição"
	fields := []string{"description", "takes", "audios"}

	out, _, msg := h.applyScope(scopeDoc(), updatePayload{
		Scope:   "script",
		SceneID: "scene-1",
		Scene:   &scenePatch{Description: &desc, ActiveFields: &fields},
	})
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	scene := out.Script[0]
	if scene.Description != desc {
		t.Fatalf("description not updated: %q", scene.Description)
	}
	if len(scene.ActiveFields) != 3 {
		t.Fatalf("active fields not updated: %v", scene.ActiveFields)
	}
	// Untouched fields keep their values.
	if scene.Locution != "" || len(scene.Timecodes) != 1 {
		t.Fatalf("unrelated scene state disturbed")
	}
}

func TestApplyScope_FullDocumentReplace(t *testing.T) {
	h := scopeHandler()
	next := scopeDoc()
	next.Timecodes = append(next.Timecodes, models.Timecode{ID: "t9"})

	out, _, msg := h.applyScope(scopeDoc(), updatePayload{Scope: "timecode-move", Document: &next})
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if len(out.Timecodes) != 2 {
		t.Fatalf("document not replaced")
	}
}

func TestApplyScope_FullDocumentReplaceRejectsDuplicates(t *testing.T) {
	h := scopeHandler()
	next := scopeDoc()
	// Same id in the pool and in a scene column.
	next.Timecodes = append(next.Timecodes, models.Timecode{ID: "t2"})

	_, status, msg := h.applyScope(scopeDoc(), updatePayload{Scope: "timecode-move", Document: &next})
	if msg == "" || status != fiber.StatusUnprocessableEntity {
		t.Fatalf("duplicate document accepted: status=%d msg=%q", status, msg)
	}
}

func TestApplyScope_FullDocumentReplaceRejectsIllegalPlacement(t *testing.T) {
	h := scopeHandler()

	// An AV take next to the resident video would have been refused at drop
	// time; the full-document path must refuse it too.
	next := scopeDoc()
	next.Script[0].Timecodes = append(next.Script[0].Timecodes,
		models.Timecode{ID: "t8", Type: models.TypeAudioVideo})

	out, status, msg := h.applyScope(scopeDoc(), updatePayload{Scope: "timecode-move", Document: &next})
	if msg == "" || status != fiber.StatusUnprocessableEntity {
		t.Fatalf("illegal placement accepted: status=%d msg=%q", status, msg)
	}
	if len(out.Script[0].Timecodes) != 1 {
		t.Fatalf("stored document changed on rejected replace")
	}

	// An unclassified item inside a takes column is equally off-limits.
	next = scopeDoc()
	next.Script[0].Timecodes[0].Type = models.TypeUnset
	_, status, msg = h.applyScope(scopeDoc(), updatePayload{Scope: "timecode-move", Document: &next})
	if msg == "" || status != fiber.StatusUnprocessableEntity {
		t.Fatalf("unclassified scene item accepted: status=%d msg=%q", status, msg)
	}
}
