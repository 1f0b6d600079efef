package contracts

// ShiftMode selects which cards move together with the target card.
type ShiftMode int

const (
	// SingleCard moves only the target; overlaps are reported as
	// warnings, not errors.
	SingleCard ShiftMode = iota
	// ShiftFollowing moves the target and every card starting strictly
	// after it by the same delta.
	ShiftFollowing
	// ShiftPreceding moves the target and every card starting strictly
	// before it by the same delta.
	ShiftPreceding
	// ShiftAll moves every card in the day by the same delta.
	ShiftAll
)

// PlacementChange is one card's proposed new position, in minutes from
// day start. Durations are always preserved.
type PlacementChange struct {
	ActivityID string
	NewStart   int
	NewEnd     int
}

// PlacementResult is a proposed move. Nothing is mutated until the
// proposal is applied; a day-boundary violation by any affected card
// rejects the whole proposal atomically instead of producing a result.
type PlacementResult struct {
	Delta   int
	Mode    ShiftMode
	Changes []PlacementChange

	// Conflicts lists the ids of cards the moved card would overlap.
	// Only SingleCard reports conflicts, and they are advisory: the
	// caller decides whether to apply anyway.
	Conflicts []string
}
