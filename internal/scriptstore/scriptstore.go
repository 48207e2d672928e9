// Package scriptstore persists project script documents. Each project owns a
// single row in the `scripts` table holding the full {timecodes, script}
// document as JSONB; reads are authoritative and every mutation writes the
// whole document back.
package scriptstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"decoupage/api-gateway/models"
)

const (
	scriptsTable  = "scripts"
	projectsTable = "projects"
)

// row maps to the scripts table.
type row struct {
	ProjectName string          `json:"project_name"`
	Document    json.RawMessage `json:"document"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

// Store wraps the Supabase client for script document access.
type Store struct {
	db  *supa.Client
	log *logrus.Logger
}

// New creates a Store with the given dependencies.
func New(db *supa.Client, log *logrus.Logger) *Store {
	return &Store{db: db, log: log}
}

// Load fetches the document for a project. A project with no saved document
// yet yields an empty one rather than an error.
func (s *Store) Load(projectName string) (models.Document, error) {
	empty := models.Document{Timecodes: []models.Timecode{}, Script: []models.Scene{}}

	body, _, err := s.db.From(scriptsTable).
		Select("project_name,document", "", false).
		Eq("project_name", projectName).
		Execute()
	if err != nil {
		return empty, fmt.Errorf("load script for %q: %w", projectName, err)
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return empty, fmt.Errorf("unmarshal script rows for %q: %w", projectName, err)
	}
	if len(rows) == 0 {
		return empty, nil
	}

	var doc models.Document
	if err := json.Unmarshal(rows[0].Document, &doc); err != nil {
		return empty, fmt.Errorf("unmarshal script document for %q: %w", projectName, err)
	}
	if doc.Timecodes == nil {
		doc.Timecodes = []models.Timecode{}
	}
	if doc.Script == nil {
		doc.Script = []models.Scene{}
	}
	return doc, nil
}

// Save upserts the full document for a project and returns the stored copy.
func (s *Store) Save(projectName string, doc models.Document) (models.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return doc, fmt.Errorf("marshal script document for %q: %w", projectName, err)
	}

	payload := row{
		ProjectName: projectName,
		Document:    raw,
		UpdatedAt:   time.Now(),
	}

	_, _, err = s.db.From(scriptsTable).
		Insert(payload, true, "project_name", "representation", "").
		Execute()
	if err != nil {
		return doc, fmt.Errorf("save script for %q: %w", projectName, err)
	}

	// Re-read so the caller refreshes from the confirmed state rather than
	// trusting the optimistic copy.
	return s.Load(projectName)
}

// ListProjects returns all known projects, newest first.
func (s *Store) ListProjects() ([]models.Project, error) {
	body, _, err := s.db.From(projectsTable).
		Select("", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []models.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("unmarshal projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// CreateProject inserts a project row and returns the stored record.
func (s *Store) CreateProject(p models.Project) (models.Project, error) {
	body, _, err := s.db.From(projectsTable).
		Insert(p, false, "", "representation", "").
		Execute()
	if err != nil {
		return p, fmt.Errorf("create project %q: %w", p.Name, err)
	}

	var results []models.Project
	if err := json.Unmarshal(body, &results); err != nil {
		return p, fmt.Errorf("unmarshal created project: %w", err)
	}
	if len(results) == 0 {
		return p, fmt.Errorf("create project %q returned no data", p.Name)
	}
	return results[0], nil
}
