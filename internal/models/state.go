package models

// State is the position of one conversation inside the form dialogue.
type State int

const (
	StateUninitialized State = iota
	StateCategory
	StateCity
	StateDistrict
	StateDays
	StateDetails
	StateConfirm
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateCategory:      "awaiting_category",
	StateCity:          "awaiting_city",
	StateDistrict:      "awaiting_district",
	StateDays:          "awaiting_days",
	StateDetails:       "awaiting_details",
	StateConfirm:       "awaiting_confirmation",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, bool) {
	for st, n := range stateNames {
		if n == name {
			return st, true
		}
	}
	return StateUninitialized, false
}
