package models

import (
	"encoding/json"
	"fmt"

	"grunnlag/pkg/domain"
)

// Opplysningsgrunnlag is the snapshot assembled by replaying a sak's
// opplysninger up to Versjon. It is derived and never stored, except in the
// snapshot cache keyed by (SakID, Versjon).
type Opplysningsgrunnlag struct {
	SakID         domain.SakID          `json:"sakId"`
	Versjon       int64                 `json:"versjon"`
	Persongalleri *Persongalleri        `json:"persongalleri,omitempty"`
	Sak           Opplysninger          `json:"sak"`
	Personer      []Persongrunnlag      `json:"personer"`
	Konflikter    []Integritetskonflikt `json:"konflikter,omitempty"`
}

// Tomt returns the snapshot of a sak without facts.
func Tomt(sakID domain.SakID) *Opplysningsgrunnlag {
	return &Opplysningsgrunnlag{
		SakID:    sakID,
		Sak:      Opplysninger{},
		Personer: []Persongrunnlag{},
	}
}

// Persongrunnlag is the resolved facts about one person in the sak.
type Persongrunnlag struct {
	Rolle        Saksrolle                         `json:"rolle"`
	Fnr          domain.Folkeregisteridentifikator `json:"fnr"`
	Opplysninger Opplysninger                      `json:"opplysninger"`
}

// Opplysninger maps each type to its resolved value.
type Opplysninger map[Opplysningstype]Grunnlagsverdi

// Grunnlagsverdi holds exactly one of Konstant or Periodisert.
type Grunnlagsverdi struct {
	Konstant    *Konstantverdi     `json:"konstant,omitempty"`
	Periodisert []PeriodisertVerdi `json:"periodisert,omitempty"`
}

// Konstantverdi is the winning record of a constant group.
type Konstantverdi struct {
	ID             domain.OpplysningID
	Hendelsenummer int64
	Type           Opplysningstype
	Kilde          Kilde
	Verdi          Verdi
}

// PeriodisertVerdi is one retained record of a periodized group.
type PeriodisertVerdi struct {
	ID             domain.OpplysningID
	Hendelsenummer int64
	Type           Opplysningstype
	Kilde          Kilde
	Verdi          Verdi
	Periode        Periode
}

// Integritetskonflikt identifies a group that mixes constant and periodized records.
type Integritetskonflikt struct {
	Rolle         Saksrolle                          `json:"rolle,omitempty"`
	Fnr           *domain.Folkeregisteridentifikator `json:"fnr,omitempty"`
	Type          Opplysningstype                    `json:"opplysningType"`
	Hendelsenumre []int64                            `json:"hendelsenumre"`
}

func (k Integritetskonflikt) String() string {
	if k.Rolle == "" {
		return fmt.Sprintf("sak/%s", k.Type)
	}
	return fmt.Sprintf("%s/%s", k.Rolle, k.Type)
}

// Soeker returns the applicant, or nil.
func (g *Opplysningsgrunnlag) Soeker() *Persongrunnlag {
	for i := range g.Personer {
		if g.Personer[i].Rolle == RolleSoeker {
			return &g.Personer[i]
		}
	}
	return nil
}

// Person returns the entry for fnr in the given role, or nil.
func (g *Opplysningsgrunnlag) Person(rolle Saksrolle, fnr domain.Folkeregisteridentifikator) *Persongrunnlag {
	for i := range g.Personer {
		if g.Personer[i].Rolle == rolle && g.Personer[i].Fnr == fnr {
			return &g.Personer[i]
		}
	}
	return nil
}

// PersonerMedRolle returns every person with the given role, in snapshot order.
func (g *Opplysningsgrunnlag) PersonerMedRolle(rolle Saksrolle) []Persongrunnlag {
	var out []Persongrunnlag
	for _, p := range g.Personer {
		if p.Rolle == rolle {
			out = append(out, p)
		}
	}
	return out
}

// Err returns a *DataIntegrityError when the snapshot has conflicts.
func (g *Opplysningsgrunnlag) Err() error {
	if len(g.Konflikter) == 0 {
		return nil
	}
	return &DataIntegrityError{SakID: g.SakID, Konflikter: g.Konflikter}
}

// Canonical returns deterministic JSON for the snapshot.
func (g *Opplysningsgrunnlag) Canonical() ([]byte, error) {
	return json.Marshal(g)
}

// Konstant returns the constant value of t, or nil.
func (o Opplysninger) Konstant(t Opplysningstype) *Konstantverdi {
	return o[t].Konstant
}

// Periodisert returns the periodized values of t.
func (o Opplysninger) Periodisert(t Opplysningstype) []PeriodisertVerdi {
	return o[t].Periodisert
}

type grunnlagsverdiJSON struct {
	ID             domain.OpplysningID `json:"id"`
	Hendelsenummer int64               `json:"hendelsenummer"`
	Type           Opplysningstype     `json:"opplysningType"`
	Kilde          json.RawMessage     `json:"kilde"`
	Verdi          json.RawMessage     `json:"opplysning"`
	Periode        *Periode            `json:"periode,omitempty"`
}

func marshalVerdi(id domain.OpplysningID, hnr int64, t Opplysningstype, k Kilde, v Verdi, p *Periode) ([]byte, error) {
	kilde, err := json.Marshal(k)
	if err != nil {
		return nil, err
	}
	verdi, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(grunnlagsverdiJSON{ID: id, Hendelsenummer: hnr, Type: t, Kilde: kilde, Verdi: verdi, Periode: p})
}

func (k Konstantverdi) MarshalJSON() ([]byte, error) {
	return marshalVerdi(k.ID, k.Hendelsenummer, k.Type, k.Kilde, k.Verdi, nil)
}

func (k *Konstantverdi) UnmarshalJSON(b []byte) error {
	var w grunnlagsverdiJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kilde, verdi, err := decodeKildeOgVerdi(w.Type, w.Kilde, w.Verdi)
	if err != nil {
		return err
	}
	*k = Konstantverdi{ID: w.ID, Hendelsenummer: w.Hendelsenummer, Type: w.Type, Kilde: kilde, Verdi: verdi}
	return nil
}

func (p PeriodisertVerdi) MarshalJSON() ([]byte, error) {
	periode := p.Periode
	return marshalVerdi(p.ID, p.Hendelsenummer, p.Type, p.Kilde, p.Verdi, &periode)
}

func (p *PeriodisertVerdi) UnmarshalJSON(b []byte) error {
	var w grunnlagsverdiJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Periode == nil {
		return invalid("%s: periodized value without periode", w.Type)
	}
	kilde, verdi, err := decodeKildeOgVerdi(w.Type, w.Kilde, w.Verdi)
	if err != nil {
		return err
	}
	*p = PeriodisertVerdi{ID: w.ID, Hendelsenummer: w.Hendelsenummer, Type: w.Type, Kilde: kilde, Verdi: verdi, Periode: *w.Periode}
	return nil
}
