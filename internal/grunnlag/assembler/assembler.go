// Package assembler rebuilds an Opplysningsgrunnlag from a sak's opplysninger.
//
// The assembler is pure: no I/O, no clock. Given the same records it returns
// the same snapshot, whatever order the records arrive in.
package assembler

import (
	"cmp"
	"slices"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
)

// Assembly is the result of a replay.
type Assembly struct {
	Grunnlag *models.Opplysningsgrunnlag
	// Droppet counts records whose subject is not in the persongalleri.
	Droppet int
}

type personKey struct {
	rolle models.Saksrolle
	fnr   domain.Folkeregisteridentifikator
}

type groupKey struct {
	person personKey
	sak    bool
	typ    models.Opplysningstype
}

// Assemble replays records for sakID. Records must all belong to sakID and be
// bounded by the caller to the version being read.
//
// Rules:
//   - persongalleri records only drive role resolution
//   - records about people outside the gallery are dropped
//   - constant groups keep the highest hendelsenummer
//   - periodized groups keep every record, a later one replacing an earlier one with the exact same window
//   - groups mixing both shapes are left out and reported in Konflikter
func Assemble(sakID domain.SakID, records []models.Opplysning) Assembly {
	out := models.Tomt(sakID)
	if len(records) == 0 {
		return Assembly{Grunnlag: out}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.Opplysning) int {
		return cmp.Compare(a.Hendelsenummer, b.Hendelsenummer)
	})
	out.Versjon = sorted[len(sorted)-1].Hendelsenummer

	gallery, _ := ResolveGallery(sorted)
	out.Persongalleri = gallery

	persons := map[personKey]models.Opplysninger{}
	for fnr, rolle := range Members(gallery) {
		persons[personKey{rolle: rolle, fnr: fnr}] = models.Opplysninger{}
	}

	groups := map[groupKey][]models.Opplysning{}
	var order []groupKey
	dropped := 0
	for _, r := range sorted {
		if r.Type == models.TypePersongalleri {
			continue
		}
		key := groupKey{typ: r.Type}
		if r.Fnr == nil {
			key.sak = true
		} else {
			rolle := RoleFor(gallery, *r.Fnr)
			if rolle == models.RolleUkjent {
				dropped++
				continue
			}
			key.person = personKey{rolle: rolle, fnr: *r.Fnr}
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	for _, key := range order {
		verdi, conflict := resolve(groups[key])
		if conflict != nil {
			if !key.sak {
				fnr := key.person.fnr
				conflict.Rolle = key.person.rolle
				conflict.Fnr = &fnr
			}
			out.Konflikter = append(out.Konflikter, *conflict)
			continue
		}
		if key.sak {
			out.Sak[key.typ] = verdi
			continue
		}
		target, ok := persons[key.person]
		if !ok {
			target = models.Opplysninger{}
			persons[key.person] = target
		}
		target[key.typ] = verdi
	}

	for key, opplysninger := range persons {
		out.Personer = append(out.Personer, models.Persongrunnlag{
			Rolle:        key.rolle,
			Fnr:          key.fnr,
			Opplysninger: opplysninger,
		})
	}
	slices.SortFunc(out.Personer, func(a, b models.Persongrunnlag) int {
		return cmpOr(
			cmp.Compare(a.Rolle.Rang(), b.Rolle.Rang()),
			cmp.Compare(a.Fnr.String(), b.Fnr.String()),
		)
	})
	slices.SortFunc(out.Konflikter, compareKonflikt)

	return Assembly{Grunnlag: out, Droppet: dropped}
}

// resolve collapses one group. Records are in ascending hendelsenummer order.
func resolve(records []models.Opplysning) (models.Grunnlagsverdi, *models.Integritetskonflikt) {
	var konstante, periodiserte int
	for _, r := range records {
		if r.Periodisert() {
			periodiserte++
		} else {
			konstante++
		}
	}

	if konstante > 0 && periodiserte > 0 {
		hnr := make([]int64, 0, len(records))
		for _, r := range records {
			hnr = append(hnr, r.Hendelsenummer)
		}
		return models.Grunnlagsverdi{}, &models.Integritetskonflikt{Type: records[0].Type, Hendelsenumre: hnr}
	}

	if konstante > 0 {
		last := records[len(records)-1]
		return models.Grunnlagsverdi{Konstant: &models.Konstantverdi{
			ID:             last.ID,
			Hendelsenummer: last.Hendelsenummer,
			Type:           last.Type,
			Kilde:          last.Kilde,
			Verdi:          last.Verdi,
		}}, nil
	}

	retained := make([]models.PeriodisertVerdi, 0, len(records))
	for _, r := range records {
		v := models.PeriodisertVerdi{
			ID:             r.ID,
			Hendelsenummer: r.Hendelsenummer,
			Type:           r.Type,
			Kilde:          r.Kilde,
			Verdi:          r.Verdi,
			Periode:        *r.Periode,
		}
		idx := slices.IndexFunc(retained, func(p models.PeriodisertVerdi) bool {
			return p.Periode.SammeVindu(v.Periode)
		})
		if idx >= 0 {
			retained[idx] = v
			continue
		}
		retained = append(retained, v)
	}
	slices.SortFunc(retained, func(a, b models.PeriodisertVerdi) int {
		return cmpOr(a.Periode.Compare(b.Periode), cmp.Compare(a.Hendelsenummer, b.Hendelsenummer))
	})
	return models.Grunnlagsverdi{Periodisert: retained}, nil
}

func compareKonflikt(a, b models.Integritetskonflikt) int {
	ra, rb := -1, -1
	var fa, fb string
	if a.Fnr != nil {
		ra, fa = a.Rolle.Rang(), a.Fnr.String()
	}
	if b.Fnr != nil {
		rb, fb = b.Rolle.Rang(), b.Fnr.String()
	}
	return cmpOr(cmp.Compare(ra, rb), cmp.Compare(fa, fb), cmp.Compare(a.Type, b.Type))
}
