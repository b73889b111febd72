// Package selector models the media picker workflow as a pure state machine.
// Every event takes a State by value and returns the next State; callers own
// all I/O (searches, uploads) and feed results back in as events.
package selector

import (
	"github.com/google/uuid"

	"github.com/storelane/storelane-backend/pkg/db/models"
)

// Phase is the picker lifecycle stage.
type Phase string

const (
	PhaseClosed    Phase = "CLOSED"
	PhaseBrowsing  Phase = "BROWSING"
	PhaseUploading Phase = "UPLOADING"
)

// Config fixes the selection behavior for the life of the picker.
type Config struct {
	// Multi allows more than one item to be selected.
	Multi bool
	// MaxItems caps the selection in multi mode; 0 means unlimited.
	MaxItems int
}

// State is the full picker state. It is a value; transitions never mutate
// their receiver.
type State struct {
	Phase     Phase
	Config    Config
	Query     string
	Library   []models.Media
	Selection []uuid.UUID

	// SearchSeq is the sequence number of the latest issued search;
	// ResolvedSeq the latest applied resolution. Responses carrying any
	// other sequence number are stale and dropped.
	SearchSeq   uint64
	ResolvedSeq uint64
	Searching   bool
}

// New returns a closed picker with the given configuration.
func New(cfg Config) State {
	return State{Phase: PhaseClosed, Config: cfg}
}

// Open transitions the picker to browsing, keeping any prior selection.
func (s State) Open() State {
	if s.Phase != PhaseClosed {
		return s
	}
	next := s
	next.Phase = PhaseBrowsing
	return next
}

// OpenWithSelection opens the picker pre-seeded with a selection.
func (s State) OpenWithSelection(selected []uuid.UUID) State {
	next := s.Open()
	if next.Phase != PhaseBrowsing {
		return next
	}
	next.Selection = cloneIDs(selected)
	if !next.Config.Multi && len(next.Selection) > 1 {
		next.Selection = next.Selection[:1]
	}
	return next
}

// Close shuts the picker. In-flight searches keep their sequence numbers so a
// late resolution after reopening is still recognized as stale.
func (s State) Close() State {
	next := s
	next.Phase = PhaseClosed
	next.Searching = false
	return next
}

// QueryChanged records new search input and issues the next sequence number.
// The caller runs the search tagged with the returned state's SearchSeq.
func (s State) QueryChanged(q string) State {
	if s.Phase != PhaseBrowsing {
		return s
	}
	next := s
	next.Query = q
	next.SearchSeq++
	next.Searching = true
	return next
}

// SearchResolved applies search results. Only the response matching the
// latest issued sequence number wins; anything else arrived too late and is
// dropped, as is any response delivered while the picker is closed.
func (s State) SearchResolved(seq uint64, items []models.Media) State {
	if s.Phase == PhaseClosed {
		return s
	}
	if seq != s.SearchSeq || seq <= s.ResolvedSeq {
		return s
	}
	next := s
	next.Library = cloneItems(items)
	next.ResolvedSeq = seq
	next.Searching = false
	return next
}

// Toggle flips the selection state of the given item. Single mode replaces
// the selection and closes the picker; multi mode appends and removes, and a
// full selection makes additional toggles of new items no-ops.
func (s State) Toggle(item models.Media) State {
	if s.Phase != PhaseBrowsing {
		return s
	}
	next := s

	if !s.Config.Multi {
		if len(s.Selection) == 1 && s.Selection[0] == item.ID {
			next.Selection = nil
		} else {
			next.Selection = []uuid.UUID{item.ID}
		}
		next.Phase = PhaseClosed
		next.Searching = false
		return next
	}

	if idx := indexOf(s.Selection, item.ID); idx >= 0 {
		selection := cloneIDs(s.Selection)
		next.Selection = append(selection[:idx], selection[idx+1:]...)
		return next
	}
	if s.Config.MaxItems > 0 && len(s.Selection) >= s.Config.MaxItems {
		return s
	}
	next.Selection = append(cloneIDs(s.Selection), item.ID)
	return next
}

// UploadStarted moves the picker into the uploading phase.
func (s State) UploadStarted() State {
	if s.Phase != PhaseBrowsing {
		return s
	}
	next := s
	next.Phase = PhaseUploading
	return next
}

// UploadSucceeded prepends the new item to the library and selects it under
// the same rules as Toggle: single mode closes with it selected, multi mode
// appends unless the selection is full.
func (s State) UploadSucceeded(item models.Media) State {
	if s.Phase != PhaseUploading {
		return s
	}
	next := s
	next.Library = append([]models.Media{item}, s.Library...)

	if !s.Config.Multi {
		next.Selection = []uuid.UUID{item.ID}
		next.Phase = PhaseClosed
		next.Searching = false
		return next
	}

	next.Phase = PhaseBrowsing
	if indexOf(s.Selection, item.ID) >= 0 {
		return next
	}
	if s.Config.MaxItems > 0 && len(s.Selection) >= s.Config.MaxItems {
		return next
	}
	next.Selection = append(cloneIDs(s.Selection), item.ID)
	return next
}

// UploadFailed returns to browsing with everything else untouched.
func (s State) UploadFailed() State {
	if s.Phase != PhaseUploading {
		return s
	}
	next := s
	next.Phase = PhaseBrowsing
	return next
}

// IsSelected reports whether the id is part of the current selection.
func (s State) IsSelected(id uuid.UUID) bool {
	return indexOf(s.Selection, id) >= 0
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func cloneItems(items []models.Media) []models.Media {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.Media, len(items))
	copy(out, items)
	return out
}
