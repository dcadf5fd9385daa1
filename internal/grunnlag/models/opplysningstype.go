package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// Opplysningstype names a kind of fact. The set is closed.
type Opplysningstype string

const (
	TypePersongalleri      Opplysningstype = "PERSONGALLERI_V1"
	TypePersonrolle        Opplysningstype = "PERSONROLLE"
	TypeNavn               Opplysningstype = "NAVN"
	TypeFoedselsdato       Opplysningstype = "FOEDSELSDATO"
	TypeDoedsdato          Opplysningstype = "DOEDSDATO"
	TypeFoedeland          Opplysningstype = "FOEDELAND"
	TypeStatsborgerskap    Opplysningstype = "STATSBORGERSKAP"
	TypeAdressebeskyttelse Opplysningstype = "ADRESSEBESKYTTELSE"
	TypeBostedsadresse     Opplysningstype = "BOSTEDSADRESSE"
	TypeKontaktadresse     Opplysningstype = "KONTAKTADRESSE"
	TypeOppholdsadresse    Opplysningstype = "OPPHOLDSADRESSE"
	TypeSivilstand         Opplysningstype = "SIVILSTAND"
	TypeFamilierelasjon    Opplysningstype = "FAMILIERELASJON"
	TypeUtland             Opplysningstype = "UTLAND"
	TypeUtlandstilknytning Opplysningstype = "UTLANDSTILKNYTNING"
	TypeSoeknadMottattDato Opplysningstype = "SOEKNAD_MOTTATT_DATO"
	TypeSpraak             Opplysningstype = "SPRAAK"
)

// Subjekt says whether records of a type are about a person or about the sak.
type Subjekt int

const (
	SubjektPerson Subjekt = iota
	SubjektSak
)

type typeEntry struct {
	verdi   reflect.Type
	subjekt Subjekt
}

func entry[T Verdi](subjekt Subjekt) typeEntry {
	return typeEntry{verdi: reflect.TypeOf((*T)(nil)).Elem(), subjekt: subjekt}
}

var registry = map[Opplysningstype]typeEntry{
	TypePersongalleri:      entry[Persongalleri](SubjektSak),
	TypePersonrolle:        entry[Personrolle](SubjektPerson),
	TypeNavn:               entry[Navn](SubjektPerson),
	TypeFoedselsdato:       entry[Dato](SubjektPerson),
	TypeDoedsdato:          entry[Dato](SubjektPerson),
	TypeFoedeland:          entry[Land](SubjektPerson),
	TypeStatsborgerskap:    entry[Land](SubjektPerson),
	TypeAdressebeskyttelse: entry[Adressebeskyttelse](SubjektPerson),
	TypeBostedsadresse:     entry[Adresse](SubjektPerson),
	TypeKontaktadresse:     entry[Adresse](SubjektPerson),
	TypeOppholdsadresse:    entry[Adresse](SubjektPerson),
	TypeSivilstand:         entry[Sivilstand](SubjektPerson),
	TypeFamilierelasjon:    entry[Familierelasjon](SubjektPerson),
	TypeUtland:             entry[Utland](SubjektPerson),
	TypeUtlandstilknytning: entry[Utlandstilknytning](SubjektSak),
	TypeSoeknadMottattDato: entry[Dato](SubjektSak),
	TypeSpraak:             entry[Spraak](SubjektSak),
}

func (t Opplysningstype) Valid() bool {
	_, ok := registry[t]
	return ok
}

// Subjekt panics for unknown types; check Valid first.
func (t Opplysningstype) Subjekt() Subjekt {
	s, ok := registry[t]
	if !ok {
		panic(fmt.Sprintf("unknown opplysningstype %q", t))
	}
	return s.subjekt
}

// Opplysningstyper returns every known type in sorted order.
func Opplysningstyper() []Opplysningstype {
	out := make([]Opplysningstype, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// DecodeVerdi decodes raw into the payload struct registered for t.
func DecodeVerdi(t Opplysningstype, raw []byte) (Verdi, error) {
	s, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("unknown opplysningstype %q", t)
	}
	ptr := reflect.New(s.verdi)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return ptr.Elem().Interface().(Verdi), nil
}

// normalizeVerdi checks that v is the payload registered for t and returns it
// by value. Pointers to the registered struct are accepted.
func normalizeVerdi(t Opplysningstype, v Verdi) (Verdi, error) {
	s, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("unknown opplysningstype %q", t)
	}
	if v == nil {
		return nil, fmt.Errorf("%s: verdi is required", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%s: verdi is required", t)
		}
		rv = rv.Elem()
	}
	if rv.Type() != s.verdi {
		return nil, fmt.Errorf("%s: expected verdi %s, got %s", t, s.verdi.Name(), rv.Type().Name())
	}
	normalized := rv.Interface().(Verdi)
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return normalized, nil
}
