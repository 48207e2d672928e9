package models

// Scene is one unit of the script. Scenes are positionally identified: ID and
// Name are recomputed from the scene's index after every structural change and
// carry no identity of their own.
type Scene struct {
	ID           string     `json:"id"`   // "scene-N"
	Name         string     `json:"name"` // "Cena N"
	Description  string     `json:"description"`
	Audio        string     `json:"audio"`
	Locution     string     `json:"locution"`
	ActiveFields []string   `json:"activeFields"`
	Timecodes    []Timecode `json:"timecodes"` // takes column (V, AV, image)
	Audios       []Timecode `json:"audios"`    // audio column (A only)
}

// HasField reports whether the named UI block is enabled for this scene.
func (s Scene) HasField(field string) bool {
	for _, f := range s.ActiveFields {
		if f == field {
			return true
		}
	}
	return false
}

// Document is the full persisted state of one project: the unassigned pool
// plus the ordered scene collection.
type Document struct {
	Timecodes []Timecode `json:"timecodes"`
	Script    []Scene    `json:"script"`
}
