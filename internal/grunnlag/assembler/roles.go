package assembler

import (
	"slices"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
)

// ResolveGallery returns the persongalleri with the highest hendelsenummer in
// records. Callers bound records to the version they replay.
func ResolveGallery(records []models.Opplysning) (*models.Persongalleri, bool) {
	var (
		latest *models.Persongalleri
		hnr    int64
	)
	for _, r := range records {
		if r.Type != models.TypePersongalleri || r.Hendelsenummer < hnr {
			continue
		}
		g, ok := r.Verdi.(models.Persongalleri)
		if !ok {
			continue
		}
		latest, hnr = &g, r.Hendelsenummer
	}
	return latest, latest != nil
}

// RoleFor resolves fnr against the gallery. A person listed under several
// roles gets the one with the highest precedence: soeker, avdoed, gjenlevende,
// soesken. People not in the gallery are RolleUkjent.
func RoleFor(g *models.Persongalleri, fnr domain.Folkeregisteridentifikator) models.Saksrolle {
	if g == nil || fnr.IsZero() {
		return models.RolleUkjent
	}
	if g.Soeker == fnr {
		return models.RolleSoeker
	}
	if slices.Contains(g.Avdoed, fnr) {
		return models.RolleAvdoed
	}
	if slices.Contains(g.Gjenlevende, fnr) {
		return models.RolleGjenlevende
	}
	if slices.Contains(g.Soesken, fnr) {
		return models.RolleSoesken
	}
	return models.RolleUkjent
}

// Members lists every person in the gallery once, with their resolved role.
func Members(g *models.Persongalleri) map[domain.Folkeregisteridentifikator]models.Saksrolle {
	out := map[domain.Folkeregisteridentifikator]models.Saksrolle{}
	if g == nil {
		return out
	}
	all := make([]domain.Folkeregisteridentifikator, 0, 1+len(g.Avdoed)+len(g.Gjenlevende)+len(g.Soesken))
	all = append(all, g.Soeker)
	all = append(all, g.Avdoed...)
	all = append(all, g.Gjenlevende...)
	all = append(all, g.Soesken...)
	for _, fnr := range all {
		if fnr.IsZero() {
			continue
		}
		out[fnr] = RoleFor(g, fnr)
	}
	return out
}
