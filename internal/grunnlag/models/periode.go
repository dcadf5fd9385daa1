package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Maaned is a calendar month without day or zone.
type Maaned struct {
	Year  int
	Month time.Month
}

// NyMaaned returns the month containing t.
func NyMaaned(t time.Time) Maaned {
	return Maaned{Year: t.Year(), Month: t.Month()}
}

// ParseMaaned parses "YYYY-MM".
func ParseMaaned(s string) (Maaned, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Maaned{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return NyMaaned(t), nil
}

func MustMaaned(s string) Maaned {
	m, err := ParseMaaned(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Maaned) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Maaned) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compare returns -1, 0 or +1.
func (m Maaned) Compare(o Maaned) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

func (m Maaned) Before(o Maaned) bool { return m.Compare(o) < 0 }

func (m Maaned) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Maaned) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMaaned(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Periode is a validity window in whole months. A nil Tom is open-ended.
type Periode struct {
	Fom Maaned  `json:"fom"`
	Tom *Maaned `json:"tom,omitempty"`
}

func (p Periode) Validate() error {
	if p.Fom.IsZero() {
		return fmt.Errorf("periode: fom is required")
	}
	if p.Tom != nil && p.Tom.Before(p.Fom) {
		return fmt.Errorf("periode: tom %s is before fom %s", p.Tom, p.Fom)
	}
	return nil
}

// SammeVindu reports whether both periods cover exactly the same window.
func (p Periode) SammeVindu(o Periode) bool {
	if p.Fom != o.Fom {
		return false
	}
	if p.Tom == nil || o.Tom == nil {
		return p.Tom == nil && o.Tom == nil
	}
	return *p.Tom == *o.Tom
}

// Compare orders by Fom, then Tom with open-ended last.
func (p Periode) Compare(o Periode) int {
	if c := p.Fom.Compare(o.Fom); c != 0 {
		return c
	}
	switch {
	case p.Tom == nil && o.Tom == nil:
		return 0
	case p.Tom == nil:
		return 1
	case o.Tom == nil:
		return -1
	}
	return p.Tom.Compare(*o.Tom)
}

// Inneholder reports whether m falls inside the period.
func (p Periode) Inneholder(m Maaned) bool {
	if m.Before(p.Fom) {
		return false
	}
	return p.Tom == nil || !p.Tom.Before(m)
}
