package rsgview

import (
	"errors"
	"fmt"
)

// GameState is the match information the server sends ahead of the scene
// graph header. Keys absent from a message keep their previous value.
type GameState struct {
	FieldLength float64
	FieldWidth  float64
	FieldHeight float64
	GoalWidth   float64
	GoalDepth   float64
	GoalHeight  float64
	BallRadius  float64

	PlayModes  []string
	PlayMode   int
	Time       float64
	Half       int
	ScoreLeft  int
	ScoreRight int
	TeamLeft   string
	TeamRight  string
}

// DefaultGameState returns the standard 3D league field dimensions, used
// until the server reports its own.
func DefaultGameState() GameState {
	return GameState{
		FieldLength: 30,
		FieldWidth:  20,
		FieldHeight: 40,
		GoalWidth:   2.1,
		GoalDepth:   0.6,
		GoalHeight:  0.8,
		BallRadius:  0.042,
		PlayMode:    -1,
	}
}

// PlayModeName resolves PlayMode against PlayModes.
func (s GameState) PlayModeName() string {
	if s.PlayMode < 0 || s.PlayMode >= len(s.PlayModes) {
		return "unknown"
	}
	return s.PlayModes[s.PlayMode]
}

// TeamName returns the name reported for side, or "" if none yet.
func (s GameState) TeamName(side Side) string {
	if side == SideRight {
		return s.TeamRight
	}
	return s.TeamLeft
}

type stateKey func(s *GameState, args []SExpr) error

func floatKey(field func(*GameState) *float64) stateKey {
	return func(s *GameState, args []SExpr) error {
		v, err := floats(args, 1)
		if err != nil {
			return err
		}
		*field(s) = v[0]
		return nil
	}
}

func intKey(field func(*GameState) *int) stateKey {
	return func(s *GameState, args []SExpr) error {
		if len(args) != 1 {
			return fmt.Errorf("want one integer, got %d values", len(args))
		}
		v, err := args[0].Int()
		if err != nil {
			return err
		}
		*field(s) = v
		return nil
	}
}

func stringKey(field func(*GameState) *string) stateKey {
	return func(s *GameState, args []SExpr) error {
		if len(args) != 1 || args[0].IsList {
			return fmt.Errorf("want one name: %w", ErrMalformedExpression)
		}
		*field(s) = args[0].Atom
		return nil
	}
}

var stateKeys = map[string]stateKey{
	"FieldLength": floatKey(func(s *GameState) *float64 { return &s.FieldLength }),
	"FieldWidth":  floatKey(func(s *GameState) *float64 { return &s.FieldWidth }),
	"FieldHeight": floatKey(func(s *GameState) *float64 { return &s.FieldHeight }),
	"GoalWidth":   floatKey(func(s *GameState) *float64 { return &s.GoalWidth }),
	"GoalDepth":   floatKey(func(s *GameState) *float64 { return &s.GoalDepth }),
	"GoalHeight":  floatKey(func(s *GameState) *float64 { return &s.GoalHeight }),
	"BallRadius":  floatKey(func(s *GameState) *float64 { return &s.BallRadius }),
	"time":        floatKey(func(s *GameState) *float64 { return &s.Time }),
	"half":        intKey(func(s *GameState) *int { return &s.Half }),
	"score_left":  intKey(func(s *GameState) *int { return &s.ScoreLeft }),
	"score_right": intKey(func(s *GameState) *int { return &s.ScoreRight }),
	"play_mode":   intKey(func(s *GameState) *int { return &s.PlayMode }),
	"team_left":   stringKey(func(s *GameState) *string { return &s.TeamLeft }),
	"team_right":  stringKey(func(s *GameState) *string { return &s.TeamRight }),
	"play_modes": func(s *GameState, args []SExpr) error {
		modes := make([]string, 0, len(args))
		for _, a := range args {
			if a.IsList {
				return fmt.Errorf("play mode is a list: %w", ErrMalformedExpression)
			}
			modes = append(modes, a.Atom)
		}
		s.PlayModes = modes
		return nil
	},
}

// Update applies a ((key value...) ...) expression. Unknown keys are
// ignored; malformed values leave their field unchanged and are reported
// together in the returned error.
func (s *GameState) Update(e SExpr) error {
	if !e.IsList {
		return fmt.Errorf("game state %s is not a list: %w", e, ErrMalformedExpression)
	}
	var errs []error
	for _, kv := range e.List {
		fn, ok := stateKeys[kv.Head()]
		if !ok {
			continue
		}
		if err := fn(s, kv.Args()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kv.Head(), err))
		}
	}
	return errors.Join(errs...)
}
