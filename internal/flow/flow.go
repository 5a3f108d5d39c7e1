// Package flow tracks one user's way through the social frames screens:
// pick a photo, choose a frame, then save or share it.
package flow

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

type Step int

const (
	StepUpload Step = iota
	StepFrameSelect
	StepShare
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepFrameSelect:
		return "frame-select"
	case StepShare:
		return "share"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrBusy              = errors.New("session is busy")
)

// transitions lists, for each step, the steps it may move to.
var transitions = map[Step][]Step{
	StepUpload:      {StepFrameSelect},
	StepFrameSelect: {StepFrameSelect, StepShare, StepUpload},
	StepShare:       {StepFrameSelect},
}

func CanTransition(from, to Step) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const startingPoints = 120

// Session is the per-user state carried between screens.
type Session struct {
	ID         string
	EmployeeID string
	UserName   string
	Points     int

	// op is held for a whole operation. mu guards the fields below and is
	// only held long enough to read or swap them.
	op         sync.Mutex
	mu         sync.RWMutex
	compositor *frame.Compositor
	step       Step
	source     *loader.Source
	styleKey   string
	current    *frame.Composited
}

func NewSession(c *frame.Compositor) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Points:     startingPoints,
		compositor: c,
		step:       StepUpload,
		styleKey:   style.Default,
	}
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	Step      Step
	StyleKey  string
	Composite *frame.Composited
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Step: s.step, StyleKey: s.styleKey, Composite: s.current}
}

func (s *Session) Step() Step { return s.Snapshot().Step }

// Current returns the composite shown for the current style, or nil
// before a photo has been chosen.
func (s *Session) Current() *frame.Composited { return s.Snapshot().Composite }

// Exportable returns the composite to save or share. Only the share step
// has one.
func (s *Session) Exportable() (*frame.Composited, error) {
	snap := s.Snapshot()
	if snap.Step != StepShare {
		return nil, fmt.Errorf("%w: export in %s", ErrInvalidTransition, snap.Step)
	}
	if snap.Composite == nil {
		return nil, frame.ErrNoSource
	}
	return snap.Composite, nil
}

// begin claims the session for one operation. A second operation started
// while one is running gets ErrBusy rather than queueing behind it.
// Readers never hold op, so they cannot make an operation busy.
func (s *Session) begin(to Step) error {
	if !s.op.TryLock() {
		return ErrBusy
	}
	if !CanTransition(s.step, to) {
		from := s.step
		s.op.Unlock()
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// SelectPhoto takes ownership of src, renders it with the selected style
// and moves to frame selection. Any previous photo is released.
func (s *Session) SelectPhoto(src *loader.Source) error {
	if err := s.begin(StepFrameSelect); err != nil {
		return err
	}
	defer s.op.Unlock()
	if s.step != StepUpload {
		return fmt.Errorf("%w: %s to %s with a new photo", ErrInvalidTransition, s.step, StepFrameSelect)
	}

	out, err := s.compositor.Compose(src, s.styleKey)
	if err != nil {
		return err
	}
	old := s.source
	s.mu.Lock()
	s.source = src
	s.current = out
	s.step = StepFrameSelect
	s.mu.Unlock()
	if old != src {
		old.Release()
	}
	log.Printf("session %s: photo %dx%d selected", s.ID, src.Width(), src.Height())
	return nil
}

// ChooseStyle renders the photo again from scratch with the style key.
func (s *Session) ChooseStyle(key string) error {
	if err := s.begin(StepFrameSelect); err != nil {
		return err
	}
	defer s.op.Unlock()
	if s.step != StepFrameSelect {
		return fmt.Errorf("%w: choose style in %s", ErrInvalidTransition, s.step)
	}

	out, err := s.compositor.Compose(s.source, key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.styleKey = key
	s.current = out
	s.mu.Unlock()
	if !out.Found {
		log.Printf("session %s: unknown style %q, using %s", s.ID, key, out.Style.Key)
	}
	return nil
}

// Next moves from frame selection to sharing.
func (s *Session) Next() error {
	return s.move(StepShare, StepFrameSelect)
}

// EditFrame goes back from sharing to frame selection.
func (s *Session) EditFrame() error {
	return s.move(StepFrameSelect, StepShare)
}

// ChangePhoto drops the current photo and returns to upload.
func (s *Session) ChangePhoto() error {
	if err := s.begin(StepUpload); err != nil {
		return err
	}
	defer s.op.Unlock()
	s.mu.Lock()
	old := s.source
	s.source = nil
	s.current = nil
	s.step = StepUpload
	s.mu.Unlock()
	old.Release()
	return nil
}

func (s *Session) move(to, from Step) error {
	if err := s.begin(to); err != nil {
		return err
	}
	defer s.op.Unlock()
	if s.step != from {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s.step, to)
	}
	s.mu.Lock()
	s.step = to
	s.mu.Unlock()
	return nil
}

// Close releases the photo held by the session, waiting for a running
// operation to finish first.
func (s *Session) Close() {
	s.op.Lock()
	defer s.op.Unlock()
	s.mu.Lock()
	old := s.source
	s.source = nil
	s.current = nil
	s.mu.Unlock()
	old.Release()
}
