package dragdrop

import (
	"errors"
	"testing"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/models"
)

func tc(id, typ string) models.Timecode {
	return models.Timecode{ID: id, Type: typ}
}

var (
	pool   = decoupage.ContainerRef{Kind: decoupage.KindPool}
	takes0 = decoupage.ContainerRef{Kind: decoupage.KindTakes, Scene: 0}
	audio0 = decoupage.ContainerRef{Kind: decoupage.KindAudios, Scene: 0}
)

func docWithScene(scene models.Scene) models.Document {
	return models.Document{Script: []models.Scene{scene}}
}

func assertRejected(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected rejection %q, got nil", want)
	}
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("error does not wrap ErrInvalidMove: %v", err)
	}
	var moveErr *MoveError
	if !errors.As(err, &moveErr) || moveErr.Message != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckMove_UnclassifiedCannotEnterScene(t *testing.T) {
	doc := docWithScene(models.Scene{})
	err := CheckMove(doc, tc("x", models.TypeUnset), pool, takes0)
	assertRejected(t, err, "Classifique o take para move-lo a uma cena!")
}

func TestCheckMove_PoolAlwaysAccepts(t *testing.T) {
	doc := docWithScene(models.Scene{})
	if err := CheckMove(doc, tc("x", models.TypeUnset), takes0, pool); err != nil {
		t.Fatalf("move to pool rejected: %v", err)
	}
}

func TestCheckMove_ColumnAffinity(t *testing.T) {
	doc := docWithScene(models.Scene{})

	assertRejected(t, CheckMove(doc, tc("a", models.TypeAudio), pool, takes0),
		"Áudios só podem ser movidos para a coluna de áudio")
	assertRejected(t, CheckMove(doc, tc("v", models.TypeVideo), pool, audio0),
		"Videos só podem ser movidos para a coluna de takes")
	assertRejected(t, CheckMove(doc, tc("av", models.TypeAudioVideo), pool, audio0),
		"Videos só podem ser movidos para a coluna de takes")

	if err := CheckMove(doc, tc("v", models.TypeVideo), pool, takes0); err != nil {
		t.Fatalf("video into takes rejected: %v", err)
	}
	if err := CheckMove(doc, tc("a", models.TypeAudio), pool, audio0); err != nil {
		t.Fatalf("audio into audios rejected: %v", err)
	}
}

func TestCheckMove_AVClosesScene(t *testing.T) {
	doc := docWithScene(models.Scene{
		Timecodes: []models.Timecode{tc("av", models.TypeAudioVideo)},
	})

	assertRejected(t, CheckMove(doc, tc("v", models.TypeVideo), pool, takes0),
		"Essa cena já contém um AV e não pode receber mais takes!")
	assertRejected(t, CheckMove(doc, tc("av2", models.TypeAudioVideo), pool, takes0),
		"Essa cena já contém um AV e não pode receber mais takes!")
}

func TestCheckMove_AVConflictsWithResidentVideo(t *testing.T) {
	doc := docWithScene(models.Scene{
		Timecodes: []models.Timecode{tc("v", models.TypeVideo)},
	})
	assertRejected(t, CheckMove(doc, tc("av", models.TypeAudioVideo), pool, takes0),
		"Essa cena já contém um vídeo, portanto não pode receber um AV!")

	// A plain video can still join.
	if err := CheckMove(doc, tc("v2", models.TypeVideo), pool, takes0); err != nil {
		t.Fatalf("second video rejected: %v", err)
	}
}

func TestCheckMove_AVConflictsWithResidentAudio(t *testing.T) {
	doc := docWithScene(models.Scene{
		Audios: []models.Timecode{tc("a", models.TypeAudio)},
	})
	assertRejected(t, CheckMove(doc, tc("av", models.TypeAudioVideo), pool, takes0),
		"Essa cena já contém um áudio, portanto não pode receber um AV!")
}

func TestCheckMove_ExcludesMovedItemFromSceneScan(t *testing.T) {
	// Reordering an AV inside its own takes column must not trip the
	// AV-capacity rule on itself.
	doc := docWithScene(models.Scene{
		Timecodes: []models.Timecode{tc("av", models.TypeAudioVideo)},
	})
	if err := CheckMove(doc, doc.Script[0].Timecodes[0], takes0, takes0); err != nil {
		t.Fatalf("self reorder rejected: %v", err)
	}
}

func TestValidateDocument_AcceptsLegalPlacements(t *testing.T) {
	doc := models.Document{
		Timecodes: []models.Timecode{tc("u", models.TypeUnset)}, // unclassified is fine in the pool
		Script: []models.Scene{
			{
				Timecodes: []models.Timecode{tc("v1", models.TypeVideo), tc("v2", models.TypeVideo)},
				Audios:    []models.Timecode{tc("a1", models.TypeAudio)},
			},
			{
				Timecodes: []models.Timecode{tc("av", models.TypeAudioVideo)},
			},
		},
	}
	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("legal document rejected: %v", err)
	}
}

func TestValidateDocument_RejectsIllegalPlacements(t *testing.T) {
	tests := []struct {
		name  string
		scene models.Scene
		want  string
	}{
		{
			"unclassified in takes",
			models.Scene{Timecodes: []models.Timecode{tc("u", models.TypeUnset)}},
			"Classifique o take para move-lo a uma cena!",
		},
		{
			"audio in takes",
			models.Scene{Timecodes: []models.Timecode{tc("a", models.TypeAudio)}},
			"Áudios só podem ser movidos para a coluna de áudio",
		},
		{
			"video in audios",
			models.Scene{Audios: []models.Timecode{tc("v", models.TypeVideo)}},
			"Videos só podem ser movidos para a coluna de takes",
		},
		{
			"two AVs in one scene",
			models.Scene{Timecodes: []models.Timecode{
				tc("av1", models.TypeAudioVideo), tc("av2", models.TypeAudioVideo),
			}},
			"Essa cena já contém um AV e não pode receber mais takes!",
		},
		{
			// Takes are checked first, so the AV trips on the resident audio.
			"audio alongside an AV take",
			models.Scene{
				Timecodes: []models.Timecode{tc("av", models.TypeAudioVideo)},
				Audios:    []models.Timecode{tc("a", models.TypeAudio)},
			},
			"Essa cena já contém um áudio, portanto não pode receber um AV!",
		},
	}
	for _, tt := range tests {
		assertRejected(t, ValidateDocument(docWithScene(tt.scene)), tt.want)
	}
}

func TestCheckMove_TakesAndAudiosNeverExchangeDirectly(t *testing.T) {
	doc := docWithScene(models.Scene{})
	// "image" passes column affinity for takes but is still blocked from
	// crossing out of the audio column directly.
	assertRejected(t, CheckMove(doc, tc("i", models.TypeImage), audio0, takes0),
		"Não pode mover audio para take")
}
