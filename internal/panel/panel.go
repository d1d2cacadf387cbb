package panel

import (
	"github.com/jgivc/cfgpanel/internal/entity"
)

// Buttons holds which panel actions are enabled.
type Buttons struct {
	Delete      bool `json:"delete"`
	AddLink     bool `json:"addLink"`
	Save        bool `json:"save"`
	SetCopyPath bool `json:"setCopyPath"`
	Copy        bool `json:"copy"`
}

// State is the view state of the admin panel: the selected file and its link list.
// Dirty marks local edits not yet saved.
type State struct {
	Selected string        `json:"selected"`
	Links    []entity.Link `json:"links"`
	Dirty    bool          `json:"dirty"`
}

// Load selects file with its stored links.
func (s *State) Load(file *entity.ConfigFile) {
	s.Selected = file.Filename
	s.Links = append([]entity.Link(nil), file.Links...)
	s.Dirty = false
}

func (s *State) Buttons() Buttons {
	selected := s.Selected != ""

	return Buttons{
		Delete:      selected && !entity.IsProtected(s.Selected),
		AddLink:     selected,
		Save:        selected && s.Dirty,
		SetCopyPath: selected,
		Copy:        selected,
	}
}
