package dragondice

// EffectDuration says when an active effect expires.
type EffectDuration string

const (
	// DurationUntilNextTurn expires at the start of the caster's next turn.
	DurationUntilNextTurn EffectDuration = "until_next_turn"
	// DurationPermanent lasts until something removes it explicitly.
	DurationPermanent EffectDuration = "permanent"
)

// Effect is one active spell or terrain effect.
type Effect struct {
	Description string
	Source      string
	Target      string // army identifier or terrain name
	Caster      string
	Duration    EffectDuration
}

// EffectList tracks active effects and their expiry.
type EffectList struct {
	effects []Effect
}

// Add registers an active effect.
func (l *EffectList) Add(e Effect) {
	l.effects = append(l.effects, e)
}

// Active returns the active effects.
func (l *EffectList) Active() []Effect {
	return l.effects
}

// ExpireForPlayer removes every until-next-turn effect the given player
// cast, returning the expired effects. Runs at the start of that player's
// turn.
func (l *EffectList) ExpireForPlayer(player string) []Effect {
	var expired []Effect
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.Duration == DurationUntilNextTurn && e.Caster == player {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	l.effects = kept
	return expired
}

// RemoveByTarget drops every effect attached to a target, e.g. when a
// terrain face moves off its eighth face.
func (l *EffectList) RemoveByTarget(target string) []Effect {
	var removed []Effect
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.Target == target {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	l.effects = kept
	return removed
}

func (l EffectList) clone() EffectList {
	if l.effects == nil {
		return EffectList{}
	}
	c := make([]Effect, len(l.effects))
	copy(c, l.effects)
	return EffectList{effects: c}
}
