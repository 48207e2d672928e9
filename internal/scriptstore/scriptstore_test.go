package scriptstore

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"

	"decoupage/api-gateway/models"
)

// fakeRest emulates the scripts table of the REST endpoint: GETs answer with
// the stored rows, POSTs upsert by project name.
type fakeRest struct {
	mu   sync.Mutex
	rows map[string]json.RawMessage
}

func (f *fakeRest) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/scripts") {
			w.Write([]byte("[]"))
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			project := strings.TrimPrefix(r.URL.Query().Get("project_name"), "eq.")
			out := make([]row, 0, 1)
			if doc, ok := f.rows[project]; ok {
				out = append(out, row{ProjectName: project, Document: doc})
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			var incoming row
			if err := json.Unmarshal(body, &incoming); err != nil {
				t.Errorf("unmarshal upsert body: %v", err)
			}
			f.rows[incoming.ProjectName] = incoming.Document
			w.Write([]byte("[]"))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}
}

func testStore(t *testing.T) (*Store, *fakeRest) {
	t.Helper()
	fake := &fakeRest{rows: make(map[string]json.RawMessage)}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, err := supa.NewClient(srv.URL, "test-key", nil)
	if err != nil {
		t.Fatalf("supabase client: %v", err)
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(client, log), fake
}

func TestLoad_MissingProjectYieldsEmptyDocument(t *testing.T) {
	store, _ := testStore(t)

	doc, err := store.Load("unknown")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Timecodes == nil || doc.Script == nil {
		t.Fatalf("empty document has nil slices: %+v", doc)
	}
	if len(doc.Timecodes) != 0 || len(doc.Script) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestLoad_NormalizesNilSlices(t *testing.T) {
	store, fake := testStore(t)
	fake.rows["p"] = json.RawMessage(`{"timecodes":null,"script":null}`)

	doc, err := store.Load("p")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Timecodes == nil || doc.Script == nil {
		t.Fatalf("nil slices survived normalization")
	}
}

func TestSaveThenLoad(t *testing.T) {
	store, _ := testStore(t)

	in := models.Document{
		Timecodes: []models.Timecode{{ID: "t1", InTime: 3, OutTime: 9, Type: models.TypeVideo}},
		Script:    []models.Scene{{ID: "scene-1", Name: "Cena 1"}},
	}
	saved, err := store.Save("p", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saved.Timecodes) != 1 || saved.Timecodes[0].ID != "t1" {
		t.Fatalf("saved document mismatch: %+v", saved)
	}

	loaded, err := store.Load("p")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Script) != 1 || loaded.Script[0].Name != "Cena 1" {
		t.Fatalf("loaded document mismatch: %+v", loaded)
	}
}
