package models

import (
	"fmt"
	"regexp"
	"time"

	"grunnlag/pkg/domain"
)

// Verdi is the typed payload of an opplysning. Which struct belongs to which
// Opplysningstype is fixed by the registry in opplysningstype.go.
type Verdi interface {
	Validate() error
}

// Persongalleri lists the people involved in a sak.
type Persongalleri struct {
	Soeker      domain.Folkeregisteridentifikator   `json:"soeker"`
	Innsender   *domain.Folkeregisteridentifikator  `json:"innsender,omitempty"`
	Gjenlevende []domain.Folkeregisteridentifikator `json:"gjenlevende,omitempty"`
	Avdoed      []domain.Folkeregisteridentifikator `json:"avdoed,omitempty"`
	Soesken     []domain.Folkeregisteridentifikator `json:"soesken,omitempty"`
}

func (p Persongalleri) Validate() error {
	if p.Soeker.IsZero() {
		return fmt.Errorf("persongalleri: soeker is required")
	}
	return nil
}

// Personrolle is the role a person claims in the sak, as reported by the source.
type Personrolle struct {
	Rolle Saksrolle `json:"rolle"`
}

func (p Personrolle) Validate() error {
	if !p.Rolle.Valid() || p.Rolle == RolleUkjent {
		return fmt.Errorf("personrolle: invalid rolle %q", p.Rolle)
	}
	return nil
}

type Navn struct {
	Fornavn    string `json:"fornavn"`
	Mellomnavn string `json:"mellomnavn,omitempty"`
	Etternavn  string `json:"etternavn"`
}

func (n Navn) Validate() error {
	if n.Fornavn == "" && n.Etternavn == "" {
		return fmt.Errorf("navn: fornavn or etternavn is required")
	}
	return nil
}

// Dato is a civil date, "YYYY-MM-DD".
type Dato struct {
	Dato string `json:"dato"`
}

func NyDato(t time.Time) Dato {
	return Dato{Dato: t.Format(time.DateOnly)}
}

func (d Dato) Validate() error {
	if _, err := time.Parse(time.DateOnly, d.Dato); err != nil {
		return fmt.Errorf("dato: %w", err)
	}
	return nil
}

// Tid returns the date at midnight UTC.
func (d Dato) Tid() time.Time {
	t, _ := time.Parse(time.DateOnly, d.Dato)
	return t
}

var landkodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Land holds an ISO 3166-1 alpha-3 country code.
type Land struct {
	Land string `json:"land"`
}

func (l Land) Validate() error {
	if !landkodePattern.MatchString(l.Land) {
		return fmt.Errorf("land: %q is not an alpha-3 code", l.Land)
	}
	return nil
}

type Gradering string

const (
	GraderingUgradert               Gradering = "UGRADERT"
	GraderingFortrolig              Gradering = "FORTROLIG"
	GraderingStrengtFortrolig       Gradering = "STRENGT_FORTROLIG"
	GraderingStrengtFortroligUtland Gradering = "STRENGT_FORTROLIG_UTLAND"
)

type Adressebeskyttelse struct {
	Gradering Gradering `json:"gradering"`
}

func (a Adressebeskyttelse) Validate() error {
	switch a.Gradering {
	case GraderingUgradert, GraderingFortrolig, GraderingStrengtFortrolig, GraderingStrengtFortroligUtland:
		return nil
	}
	return fmt.Errorf("adressebeskyttelse: unknown gradering %q", a.Gradering)
}

type AdresseType string

const (
	AdresseVegadresse        AdresseType = "VEGADRESSE"
	AdresseMatrikkeladresse  AdresseType = "MATRIKKELADRESSE"
	AdresseUtenlandskAdresse AdresseType = "UTENLANDSKADRESSE"
	AdresseUkjentBosted      AdresseType = "UKJENT_BOSTED"
)

// Adresse is the payload of all address types. Addresses are periodized.
type Adresse struct {
	Type          AdresseType `json:"type"`
	Coadresse     string      `json:"coAdresseNavn,omitempty"`
	Adresselinje1 string      `json:"adresseLinje1,omitempty"`
	Adresselinje2 string      `json:"adresseLinje2,omitempty"`
	Adresselinje3 string      `json:"adresseLinje3,omitempty"`
	Postnr        string      `json:"postnr,omitempty"`
	Poststed      string      `json:"poststed,omitempty"`
	Land          string      `json:"land,omitempty"`
}

func (a Adresse) Validate() error {
	switch a.Type {
	case AdresseVegadresse, AdresseMatrikkeladresse, AdresseUtenlandskAdresse, AdresseUkjentBosted:
	default:
		return fmt.Errorf("adresse: unknown type %q", a.Type)
	}
	if a.Land != "" && !landkodePattern.MatchString(a.Land) {
		return fmt.Errorf("adresse: %q is not an alpha-3 code", a.Land)
	}
	return nil
}

type SivilstandStatus string

const (
	SivilstandUgift              SivilstandStatus = "UGIFT"
	SivilstandGift               SivilstandStatus = "GIFT"
	SivilstandEnkeEllerEnkemann  SivilstandStatus = "ENKE_ELLER_ENKEMANN"
	SivilstandSkilt              SivilstandStatus = "SKILT"
	SivilstandSeparert           SivilstandStatus = "SEPARERT"
	SivilstandRegistrertPartner  SivilstandStatus = "REGISTRERT_PARTNER"
	SivilstandGjenlevendePartner SivilstandStatus = "GJENLEVENDE_PARTNER"
	SivilstandUoppgitt           SivilstandStatus = "UOPPGITT"
)

type Sivilstand struct {
	Status                SivilstandStatus                   `json:"sivilstatus"`
	RelatertVedSivilstand *domain.Folkeregisteridentifikator `json:"relatertVedSiviltilstand,omitempty"`
	Gyldighetsdato        string                             `json:"gyldigFraOgMed,omitempty"`
}

func (s Sivilstand) Validate() error {
	switch s.Status {
	case SivilstandUgift, SivilstandGift, SivilstandEnkeEllerEnkemann, SivilstandSkilt,
		SivilstandSeparert, SivilstandRegistrertPartner, SivilstandGjenlevendePartner, SivilstandUoppgitt:
	default:
		return fmt.Errorf("sivilstand: unknown status %q", s.Status)
	}
	if s.Gyldighetsdato != "" {
		if _, err := time.Parse(time.DateOnly, s.Gyldighetsdato); err != nil {
			return fmt.Errorf("sivilstand: %w", err)
		}
	}
	return nil
}

type Familierelasjon struct {
	AnsvarligeForeldre []domain.Folkeregisteridentifikator `json:"ansvarligeForeldre,omitempty"`
	Foreldre           []domain.Folkeregisteridentifikator `json:"foreldre,omitempty"`
	Barn               []domain.Folkeregisteridentifikator `json:"barn,omitempty"`
}

func (Familierelasjon) Validate() error { return nil }

// Flytting is a single move across the border.
type Flytting struct {
	Land string `json:"land"`
	Dato string `json:"dato,omitempty"`
}

type Utland struct {
	InnflyttingTilNorge []Flytting `json:"innflyttingTilNorge,omitempty"`
	UtflyttingFraNorge  []Flytting `json:"utflyttingFraNorge,omitempty"`
}

func (u Utland) Validate() error {
	for _, f := range append(append([]Flytting{}, u.InnflyttingTilNorge...), u.UtflyttingFraNorge...) {
		if !landkodePattern.MatchString(f.Land) {
			return fmt.Errorf("utland: %q is not an alpha-3 code", f.Land)
		}
		if f.Dato != "" {
			if _, err := time.Parse(time.DateOnly, f.Dato); err != nil {
				return fmt.Errorf("utland: %w", err)
			}
		}
	}
	return nil
}

type UtlandstilknytningType string

const (
	Nasjonal        UtlandstilknytningType = "NASJONAL"
	Utlandstilsnitt UtlandstilknytningType = "UTLANDSTILSNITT"
	BosattUtland    UtlandstilknytningType = "BOSATT_UTLAND"
)

type Utlandstilknytning struct {
	Type        UtlandstilknytningType `json:"type"`
	Begrunnelse string                 `json:"begrunnelse,omitempty"`
}

func (u Utlandstilknytning) Validate() error {
	switch u.Type {
	case Nasjonal, Utlandstilsnitt, BosattUtland:
		return nil
	}
	return fmt.Errorf("utlandstilknytning: unknown type %q", u.Type)
}

type Spraakkode string

const (
	Bokmaal Spraakkode = "NB"
	Nynorsk Spraakkode = "NN"
	Engelsk Spraakkode = "EN"
)

type Spraak struct {
	Spraak Spraakkode `json:"spraak"`
}

func (s Spraak) Validate() error {
	switch s.Spraak {
	case Bokmaal, Nynorsk, Engelsk:
		return nil
	}
	return fmt.Errorf("spraak: unknown code %q", s.Spraak)
}
