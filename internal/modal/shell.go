// Package modal implements the visibility primitive shared by the storefront
// modals: which modals are shown, the page scroll lock, and dismissal.
package modal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownModal is returned when showing a modal the page does not carry.
var ErrUnknownModal = errors.New("modal: not present on page")

// ID identifies a modal on a page.
type ID string

const (
	Purchase    ID = "purchase-modal"
	Appointment ID = "rendezvous-modal"
)

// TriggerKind is what the visitor did to dismiss.
type TriggerKind string

const (
	TriggerClose    TriggerKind = "close"
	TriggerBackdrop TriggerKind = "backdrop"
	TriggerEscape   TriggerKind = "escape"
)

// Trigger describes a dismissal attempt.
type Trigger struct {
	Kind TriggerKind
	// InsidePanel is set when a backdrop click landed inside the content panel.
	InsidePanel bool
	// StopPropagation is set when the clicked element is marked to not propagate.
	StopPropagation bool
}

// Shell owns modal visibility and the scroll lock for one page.
type Shell struct {
	mu           sync.Mutex
	present      map[ID]struct{}
	visible      map[ID]struct{}
	busy         map[ID]struct{}
	scrollLocked bool
}

// NewShell returns a shell for a page carrying the given modals.
func NewShell(ids ...ID) *Shell {
	s := &Shell{
		present: make(map[ID]struct{}, len(ids)),
		visible: make(map[ID]struct{}),
		busy:    make(map[ID]struct{}),
	}
	for _, id := range ids {
		s.present[id] = struct{}{}
	}
	return s
}

// Has reports whether the page carries the modal.
func (s *Shell) Has(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.present[id]
	return ok
}

// Show marks the modal visible and locks page scroll.
func (s *Shell) Show(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.present[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModal, id)
	}
	s.visible[id] = struct{}{}
	s.scrollLocked = true
	return nil
}

// Hide marks the modal invisible. Scroll is restored once nothing is visible.
func (s *Shell) Hide(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.visible, id)
	delete(s.busy, id)
	s.scrollLocked = len(s.visible) > 0
}

// HideIdle hides every visible modal that is not busy and returns the ones
// it hid.
func (s *Shell) HideIdle() []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	hidden := make([]ID, 0, len(s.visible))
	for id := range s.visible {
		if _, busy := s.busy[id]; busy {
			continue
		}
		hidden = append(hidden, id)
		delete(s.visible, id)
	}
	sort.Slice(hidden, func(i, j int) bool { return hidden[i] < hidden[j] })
	s.scrollLocked = len(s.visible) > 0
	return hidden
}

func (s *Shell) hideAllLocked() []ID {
	hidden := make([]ID, 0, len(s.visible))
	for id := range s.visible {
		hidden = append(hidden, id)
	}
	sort.Slice(hidden, func(i, j int) bool { return hidden[i] < hidden[j] })
	s.visible = make(map[ID]struct{})
	s.busy = make(map[ID]struct{})
	s.scrollLocked = false
	return hidden
}

// Visible reports whether the modal is shown.
func (s *Shell) Visible(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visible[id]
	return ok
}

// ScrollLocked reports whether background scroll is locked.
func (s *Shell) ScrollLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollLocked
}

// SetBusy marks a visible modal as mid-operation. Dismissal is ignored while
// any visible modal is busy.
func (s *Shell) SetBusy(id ID, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !busy {
		delete(s.busy, id)
		return
	}
	if _, ok := s.visible[id]; ok {
		s.busy[id] = struct{}{}
	}
}

// Dismiss applies a dismissal trigger and returns the modals it hid.
func (s *Shell) Dismiss(t Trigger) []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.visible) == 0 || len(s.busy) > 0 {
		return nil
	}
	switch t.Kind {
	case TriggerClose, TriggerEscape:
	case TriggerBackdrop:
		if t.InsidePanel || t.StopPropagation {
			return nil
		}
	default:
		return nil
	}
	return s.hideAllLocked()
}

// PressKey dismisses on Escape and ignores every other key.
func (s *Shell) PressKey(key string) []ID {
	if key != "Escape" && key != "Esc" {
		return nil
	}
	return s.Dismiss(Trigger{Kind: TriggerEscape})
}

// State is a snapshot of the shell.
type State struct {
	Visible      []ID `json:"visible"`
	ScrollLocked bool `json:"scroll_locked"`
}

// Snapshot returns the visible modals and the scroll lock.
func (s *Shell) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]ID, 0, len(s.visible))
	for id := range s.visible {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return State{Visible: ids, ScrollLocked: s.scrollLocked}
}
