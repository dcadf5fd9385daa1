package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

var (
	kariFnr   = domain.MustFolkeregisteridentifikator("09498230323")
	tidspunkt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestPeriode(t *testing.T) {
	jan := MustMaaned("2024-01")
	mar := MustMaaned("2024-03")

	t.Run("tom before fom is rejected", func(t *testing.T) {
		assert.Error(t, Periode{Fom: mar, Tom: &jan}.Validate())
		assert.NoError(t, Periode{Fom: jan, Tom: &mar}.Validate())
		assert.NoError(t, Periode{Fom: jan}.Validate())
		assert.Error(t, Periode{}.Validate())
	})

	t.Run("same window requires equal fom and tom", func(t *testing.T) {
		assert.True(t, Periode{Fom: jan}.SammeVindu(Periode{Fom: jan}))
		assert.False(t, Periode{Fom: jan}.SammeVindu(Periode{Fom: jan, Tom: &mar}))
		mar2 := MustMaaned("2024-03")
		assert.True(t, Periode{Fom: jan, Tom: &mar}.SammeVindu(Periode{Fom: jan, Tom: &mar2}))
	})

	t.Run("open-ended sorts after bounded with same fom", func(t *testing.T) {
		assert.Equal(t, 1, Periode{Fom: jan}.Compare(Periode{Fom: jan, Tom: &mar}))
		assert.Equal(t, -1, Periode{Fom: jan}.Compare(Periode{Fom: mar}))
	})

	t.Run("contains months within the window", func(t *testing.T) {
		p := Periode{Fom: jan, Tom: &mar}
		assert.True(t, p.Inneholder(MustMaaned("2024-02")))
		assert.True(t, p.Inneholder(mar))
		assert.False(t, p.Inneholder(MustMaaned("2024-04")))
	})

	t.Run("json form is YYYY-MM", func(t *testing.T) {
		b, err := json.Marshal(Periode{Fom: jan, Tom: &mar})
		require.NoError(t, err)
		assert.JSONEq(t, `{"fom":"2024-01","tom":"2024-03"}`, string(b))
	})
}

func TestUnmarshalKilde(t *testing.T) {
	t.Run("type tag selects the variant", func(t *testing.T) {
		in := Saksbehandler{Ident: "Z123456", Registrert: tidspunkt}
		b, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"type":"saksbehandler"`)

		out, err := UnmarshalKilde(b)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("privatperson keeps the fnr", func(t *testing.T) {
		b, err := json.Marshal(Privatperson{Fnr: kariFnr, Registrert: tidspunkt})
		require.NoError(t, err)

		out, err := UnmarshalKilde(b)
		require.NoError(t, err)
		assert.Equal(t, kariFnr, out.(Privatperson).Fnr)
	})

	t.Run("unknown tag is rejected", func(t *testing.T) {
		_, err := UnmarshalKilde([]byte(`{"type":"gjetning","tidspunkt":"2024-03-01T12:00:00Z"}`))
		assert.Error(t, err)
	})
}

func TestNyOpplysningNormalize(t *testing.T) {
	pdl := Folkeregisteret{Registerreferanse: "pdl-1", Registrert: tidspunkt}

	tests := []struct {
		name    string
		ny      NyOpplysning
		wantErr bool
	}{
		{
			name: "person fact with subject",
			ny:   NyOpplysning{Fnr: &kariFnr, Type: TypeNavn, Kilde: pdl, Verdi: Navn{Fornavn: "Kari"}},
		},
		{
			name: "pointer payload is accepted",
			ny:   NyOpplysning{Fnr: &kariFnr, Type: TypeNavn, Kilde: pdl, Verdi: &Navn{Fornavn: "Kari"}},
		},
		{
			name:    "unknown type",
			ny:      NyOpplysning{Fnr: &kariFnr, Type: "SKOSTOERRELSE", Kilde: pdl, Verdi: Navn{Fornavn: "Kari"}},
			wantErr: true,
		},
		{
			name:    "payload does not match type",
			ny:      NyOpplysning{Fnr: &kariFnr, Type: TypeNavn, Kilde: pdl, Verdi: Land{Land: "NOR"}},
			wantErr: true,
		},
		{
			name:    "person fact without subject",
			ny:      NyOpplysning{Type: TypeNavn, Kilde: pdl, Verdi: Navn{Fornavn: "Kari"}},
			wantErr: true,
		},
		{
			name:    "sak fact with subject",
			ny:      NyOpplysning{Fnr: &kariFnr, Type: TypeSpraak, Kilde: pdl, Verdi: Spraak{Spraak: Bokmaal}},
			wantErr: true,
		},
		{
			name:    "missing kilde",
			ny:      NyOpplysning{Fnr: &kariFnr, Type: TypeNavn, Verdi: Navn{Fornavn: "Kari"}},
			wantErr: true,
		},
		{
			name: "inverted periode",
			ny: NyOpplysning{Fnr: &kariFnr, Type: TypeBostedsadresse, Kilde: pdl, Verdi: Adresse{Type: AdresseVegadresse},
				Periode: &Periode{Fom: MustMaaned("2024-05"), Tom: ptr(MustMaaned("2024-01"))}},
			wantErr: true,
		},
		{
			name:    "invalid attestasjon json",
			ny:      NyOpplysning{Type: TypeSpraak, Kilde: pdl, Verdi: Spraak{Spraak: Bokmaal}, Attestasjon: json.RawMessage(`{`)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ny.Normalize()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidOpplysning)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, Navn{}, got.Verdi)
		})
	}
}

func TestNormalizeReturnsDetachedCopy(t *testing.T) {
	fnr := kariFnr
	tom := MustMaaned("2024-12")
	avdoed := []domain.Folkeregisteridentifikator{kariFnr}
	ny := NyOpplysning{
		Fnr:         &fnr,
		Type:        TypeBostedsadresse,
		Kilde:       Folkeregisteret{Registerreferanse: "pdl-1", Registrert: tidspunkt},
		Verdi:       Adresse{Type: AdresseVegadresse},
		Periode:     &Periode{Fom: MustMaaned("2024-01"), Tom: &tom},
		Attestasjon: json.RawMessage(`{"a":1}`),
	}
	got, err := ny.Normalize()
	require.NoError(t, err)

	assert.NotSame(t, ny.Fnr, got.Fnr)
	assert.NotSame(t, ny.Periode, got.Periode)
	assert.NotSame(t, ny.Periode.Tom, got.Periode.Tom)
	ny.Attestasjon[1] = 'X'
	assert.JSONEq(t, `{"a":1}`, string(got.Attestasjon))

	galleri, err := NyOpplysning{Type: TypePersongalleri, Kilde: UkjentInnsender{Registrert: tidspunkt},
		Verdi: Persongalleri{Soeker: kariFnr, Avdoed: avdoed}}.Normalize()
	require.NoError(t, err)
	avdoed[0] = domain.MustFolkeregisteridentifikator("05117920005")
	assert.Equal(t, kariFnr, galleri.Verdi.(Persongalleri).Avdoed[0])

	o := Opplysning{Fnr: got.Fnr, Periode: got.Periode, Verdi: galleri.Verdi}
	c := o.Clone()
	c.Periode.Fom = MustMaaned("1999-01")
	c.Verdi.(Persongalleri).Avdoed[0] = domain.MustFolkeregisteridentifikator("05117920005")
	assert.Equal(t, MustMaaned("2024-01"), o.Periode.Fom)
	assert.Equal(t, kariFnr, o.Verdi.(Persongalleri).Avdoed[0])
}

func TestNyOpplysningJSON(t *testing.T) {
	fom := MustMaaned("2024-01")
	in := NyOpplysning{
		Fnr:     &kariFnr,
		Type:    TypeBostedsadresse,
		Kilde:   Folkeregisteret{Registerreferanse: "pdl-7", Registrert: tidspunkt},
		Verdi:   Adresse{Type: AdresseVegadresse, Adresselinje1: "Storgata 1", Postnr: "0150", Land: "NOR"},
		Periode: &Periode{Fom: fom},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out NyOpplysning
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	var bad NyOpplysning
	err = json.Unmarshal([]byte(`{"opplysningType":"NAVN","kilde":{"type":"pdl"},"opplysning":{"fornavn":1}}`), &bad)
	assert.ErrorIs(t, err, ErrInvalidOpplysning)
}

func TestErrors(t *testing.T) {
	t.Run("storage error matches both sentinels and the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := error(NewStorageError("append", cause))
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("version not found", func(t *testing.T) {
		err := error(&VersionNotFoundError{SakID: 1, Versjon: 9, Siste: 3})
		assert.ErrorIs(t, err, ErrVersionNotFound)
		assert.Contains(t, err.Error(), "latest is 3")
	})

	t.Run("snapshot Err reports conflicts", func(t *testing.T) {
		g := Tomt(1)
		assert.NoError(t, g.Err())
		g.Konflikter = []Integritetskonflikt{{Rolle: RolleSoeker, Type: TypeBostedsadresse, Hendelsenumre: []int64{1, 2}}}
		assert.ErrorIs(t, g.Err(), ErrDataIntegrityConflict)
	})
}

func TestOpplysningsgrunnlagJSON(t *testing.T) {
	fom := MustMaaned("2024-01")
	g := &Opplysningsgrunnlag{
		SakID:   42,
		Versjon: 3,
		Sak: Opplysninger{
			TypeSpraak: {Konstant: &Konstantverdi{ID: domain.NewOpplysningID(), Hendelsenummer: 1, Type: TypeSpraak,
				Kilde: UkjentInnsender{Registrert: tidspunkt}, Verdi: Spraak{Spraak: Nynorsk}}},
		},
		Personer: []Persongrunnlag{{
			Rolle: RolleSoeker,
			Fnr:   kariFnr,
			Opplysninger: Opplysninger{
				TypeBostedsadresse: {Periodisert: []PeriodisertVerdi{{ID: domain.NewOpplysningID(), Hendelsenummer: 3,
					Type: TypeBostedsadresse, Kilde: Folkeregisteret{Registerreferanse: "r", Registrert: tidspunkt},
					Verdi: Adresse{Type: AdresseVegadresse}, Periode: Periode{Fom: fom}}}},
			},
		}},
	}

	b, err := g.Canonical()
	require.NoError(t, err)

	var decoded Opplysningsgrunnlag
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, g.Sak, decoded.Sak)
	assert.Equal(t, g.Personer, decoded.Personer)

	again, err := decoded.Canonical()
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func ptr[T any](v T) *T { return &v }
