package store

import (
	"empires-legacy/internal/game"
)

// Update types recorded for history moves.
const (
	UpdateUndo = "UNDO"
	UpdateRedo = "REDO"
)

func (s *Store) pushUndo(st *game.GameState) {
	s.undo = append(s.undo, st)
	if over := len(s.undo) - s.opts.UndoDepth; over > 0 {
		s.undo = append([]*game.GameState(nil), s.undo[over:]...)
	}
}

// CanUndo reports whether there is history to step back to.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether an undone state can be restored.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Undo restores the state before the last applied action. The restored
// state gets a fresh version so observers never see the version go
// backwards.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.state)
	s.commit(s.restore(prev, UpdateUndo))
	return true
}

// Redo reapplies the most recently undone action.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.pushUndo(s.state)
	s.commit(s.restore(next, UpdateRedo))
	return true
}

func (s *Store) restore(target *game.GameState, kind string) *game.GameState {
	msg := "Last action undone"
	if kind == UpdateRedo {
		msg = "Last undone action restored"
	}
	r := target.Clone()
	r.Version = s.state.Version + 1
	r.Updates = append(r.Updates, game.Update{
		Type:      kind,
		Message:   msg,
		Timestamp: s.opts.Clock().UnixMilli(),
		PlayerID:  r.CurrentPlayer,
		Turn:      r.Turn,
		Phase:     r.Phase,
	})
	return r
}
