package models

// Saksrolle is the role a person has in a sak, derived from the persongalleri.
type Saksrolle string

const (
	RolleSoeker      Saksrolle = "SOEKER"
	RolleAvdoed      Saksrolle = "AVDOED"
	RolleGjenlevende Saksrolle = "GJENLEVENDE"
	RolleSoesken     Saksrolle = "SOESKEN"
	RolleUkjent      Saksrolle = "UKJENT"
)

// Roller in precedence order. A person listed under several roles gets the first.
var Roller = []Saksrolle{RolleSoeker, RolleAvdoed, RolleGjenlevende, RolleSoesken}

func (r Saksrolle) Valid() bool {
	switch r {
	case RolleSoeker, RolleAvdoed, RolleGjenlevende, RolleSoesken, RolleUkjent:
		return true
	}
	return false
}

// Rang is the precedence index; lower wins. Unknown sorts last.
func (r Saksrolle) Rang() int {
	for i, rolle := range Roller {
		if rolle == r {
			return i
		}
	}
	return len(Roller)
}
