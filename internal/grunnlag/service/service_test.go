package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,SnapshotCache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"grunnlag/internal/grunnlag/cache"
	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/grunnlag/service/mocks"
	"grunnlag/internal/grunnlag/store"
	"grunnlag/pkg/domain"
	dErrors "grunnlag/pkg/domain-errors"
	"grunnlag/pkg/platform/sentinel"
)

const sakID domain.SakID = 7

var (
	kari = domain.MustFolkeregisteridentifikator("09498230323")
	ola  = domain.MustFolkeregisteridentifikator("05117920005")
	anne = domain.MustFolkeregisteridentifikator("11057523044")
	now  = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pdl  = models.Folkeregisteret{Registerreferanse: "pdl-1", Registrert: now}
)

func galleri(g models.Persongalleri) models.NyOpplysning {
	return models.NyOpplysning{Type: models.TypePersongalleri, Kilde: models.UkjentInnsender{Registrert: now}, Verdi: g}
}

func navn(fnr domain.Folkeregisteridentifikator, fornavn string) models.NyOpplysning {
	return models.NyOpplysning{Fnr: &fnr, Type: models.TypeNavn, Kilde: pdl, Verdi: models.Navn{Fornavn: fornavn}}
}

// ServiceSuite runs the service against the in-memory store.
type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore(store.WithMemoryClock(func() time.Time { return now }))
	s.service = New(s.store, WithCache(cache.NewInMemoryCache(time.Minute, 16)))
}

func (s *ServiceSuite) seedKari() {
	_, err := s.service.AppendAll(s.ctx, sakID, []models.NyOpplysning{
		galleri(models.Persongalleri{Soeker: kari, Avdoed: []domain.Folkeregisteridentifikator{ola}}),
		navn(kari, "Kari"),
		navn(ola, "Ola"),
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestAppend() {
	s.Run("returns dense hendelsenumre", func() {
		numre, err := s.service.AppendAll(s.ctx, sakID, []models.NyOpplysning{
			galleri(models.Persongalleri{Soeker: kari}),
			navn(kari, "Kari"),
		})
		s.Require().NoError(err)
		s.Equal([]int64{1, 2}, numre)

		hnr, err := s.service.Append(s.ctx, sakID, navn(kari, "Kari Anne"))
		s.Require().NoError(err)
		s.Equal(int64(3), hnr)
	})

	s.Run("invalid opplysning is a bad request and appends nothing", func() {
		_, err := s.service.Append(s.ctx, sakID, models.NyOpplysning{Type: models.TypeNavn, Kilde: pdl, Verdi: models.Navn{Fornavn: "Uten fnr"}})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.ErrorIs(err, models.ErrInvalidOpplysning)

		max, err := s.store.MaxHendelsenummer(s.ctx, sakID)
		s.Require().NoError(err)
		s.Equal(int64(3), max)
	})

	s.Run("concurrent appends get distinct numbers", func() {
		const workers = 20
		var wg sync.WaitGroup
		var mu sync.Mutex
		seen := make(map[int64]bool)
		for i := 0; i < workers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				hnr, err := s.service.Append(s.ctx, 99, galleri(models.Persongalleri{Soeker: kari, Soesken: []domain.Folkeregisteridentifikator{anne}}))
				s.NoError(err, "worker %d", i)
				mu.Lock()
				seen[hnr] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		s.Len(seen, workers)
		for hnr := int64(1); hnr <= workers; hnr++ {
			s.True(seen[hnr], "missing hendelsenummer %d", hnr)
		}
	})
}

func (s *ServiceSuite) TestCurrentSnapshot() {
	s.Run("sak without facts is empty", func() {
		g, err := s.service.CurrentSnapshot(s.ctx, 1234)
		s.Require().NoError(err)
		s.Equal(int64(0), g.Versjon)
		s.Empty(g.Personer)
		s.Nil(g.Persongalleri)
	})

	s.Run("reflects latest facts", func() {
		s.seedKari()
		_, err := s.service.Append(s.ctx, sakID, navn(kari, "Kari Anne"))
		s.Require().NoError(err)

		g, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.Require().NoError(err)
		s.Equal(int64(4), g.Versjon)
		s.Require().NotNil(g.Soeker())
		s.Equal("Kari Anne", g.Soeker().Opplysninger.Konstant(models.TypeNavn).Verdi.(models.Navn).Fornavn)
		s.Len(g.PersonerMedRolle(models.RolleAvdoed), 1)
		s.NoError(g.Err())
	})
}

func (s *ServiceSuite) TestSnapshotAsOf() {
	s.seedKari()
	_, err := s.service.Append(s.ctx, sakID, navn(kari, "Kari Anne"))
	s.Require().NoError(err)

	s.Run("historical version ignores later facts", func() {
		g, err := s.service.SnapshotAsOf(s.ctx, sakID, 2)
		s.Require().NoError(err)
		s.Equal(int64(2), g.Versjon)
		s.Equal("Kari", g.Soeker().Opplysninger.Konstant(models.TypeNavn).Verdi.(models.Navn).Fornavn)
		s.Nil(g.Person(models.RolleAvdoed, ola).Opplysninger.Konstant(models.TypeNavn))
	})

	s.Run("same version twice is identical", func() {
		first, err := s.service.SnapshotAsOf(s.ctx, sakID, 3)
		s.Require().NoError(err)
		second, err := s.service.SnapshotAsOf(s.ctx, sakID, 3)
		s.Require().NoError(err)
		a, err := first.Canonical()
		s.Require().NoError(err)
		b, err := second.Canonical()
		s.Require().NoError(err)
		s.JSONEq(string(a), string(b))
	})

	s.Run("editing a returned snapshot does not change later reads", func() {
		first, err := s.service.SnapshotAsOf(s.ctx, sakID, 2)
		s.Require().NoError(err)
		want, err := first.Canonical()
		s.Require().NoError(err)

		delete(first.Soeker().Opplysninger, models.TypeNavn)
		first.Personer = nil

		cached, err := s.service.SnapshotAsOf(s.ctx, sakID, 2)
		s.Require().NoError(err)
		s.NotSame(first, cached)
		got, err := cached.Canonical()
		s.Require().NoError(err)
		s.JSONEq(string(want), string(got))

		cached.Soeker().Opplysninger[models.TypeSpraak] = models.Grunnlagsverdi{}
		cached.Konflikter = append(cached.Konflikter, models.Integritetskonflikt{Type: models.TypeNavn})

		again, err := s.service.SnapshotAsOf(s.ctx, sakID, 2)
		s.Require().NoError(err)
		got, err = again.Canonical()
		s.Require().NoError(err)
		s.JSONEq(string(want), string(got))
	})

	s.Run("version above latest is not found", func() {
		_, err := s.service.SnapshotAsOf(s.ctx, sakID, 5)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		var vnf *models.VersionNotFoundError
		s.Require().ErrorAs(err, &vnf)
		s.Equal(int64(4), vnf.Siste)
	})

	s.Run("version below one is a bad request", func() {
		_, err := s.service.SnapshotAsOf(s.ctx, sakID, 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.ErrorIs(err, models.ErrInvalidVersion)
	})
}

func (s *ServiceSuite) TestFactOfType() {
	s.seedKari()

	s.Run("latest of type", func() {
		o, found, err := s.service.FactOfType(s.ctx, sakID, models.TypeNavn)
		s.Require().NoError(err)
		s.True(found)
		s.Equal(int64(3), o.Hendelsenummer)
	})

	s.Run("periodized type returns the latest window, not the resolved list", func() {
		adresse := func(fom string) models.NyOpplysning {
			return models.NyOpplysning{
				Fnr:     &kari,
				Type:    models.TypeBostedsadresse,
				Kilde:   pdl,
				Verdi:   models.Adresse{Type: models.AdresseVegadresse, Adresselinje1: "Storgata 1", Postnr: "0150", Land: "NOR"},
				Periode: &models.Periode{Fom: models.MustMaaned(fom)},
			}
		}
		nummer, err := s.service.AppendAll(s.ctx, sakID, []models.NyOpplysning{adresse("2023-01"), adresse("2024-01")})
		s.Require().NoError(err)

		o, found, err := s.service.FactOfType(s.ctx, sakID, models.TypeBostedsadresse)
		s.Require().NoError(err)
		s.True(found)
		s.Equal(nummer[1], o.Hendelsenummer)
		s.Equal(models.MustMaaned("2024-01"), o.Periode.Fom)

		g, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.Require().NoError(err)
		s.Len(g.Soeker().Opplysninger.Periodisert(models.TypeBostedsadresse), 2)
	})

	s.Run("absent type", func() {
		o, found, err := s.service.FactOfType(s.ctx, sakID, models.TypeSpraak)
		s.Require().NoError(err)
		s.False(found)
		s.Nil(o)
	})

	s.Run("unknown type", func() {
		_, _, err := s.service.FactOfType(s.ctx, sakID, "SKOSTOERRELSE")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestPersongalleri() {
	_, err := s.service.Persongalleri(s.ctx, sakID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.seedKari()
	g, err := s.service.Persongalleri(s.ctx, sakID)
	s.Require().NoError(err)
	s.Equal(kari, g.Soeker)
	s.Equal([]domain.Folkeregisteridentifikator{ola}, g.Avdoed)
}

func (s *ServiceSuite) TestSakerForPerson() {
	s.seedKari()
	_, err := s.service.Append(s.ctx, 8, galleri(models.Persongalleri{Soeker: anne, Gjenlevende: []domain.Folkeregisteridentifikator{kari}}))
	s.Require().NoError(err)

	saker, err := s.service.SakerForPerson(s.ctx, kari)
	s.Require().NoError(err)
	s.ElementsMatch([]models.SakOgRolle{
		{SakID: sakID, Rolle: models.RolleSoeker},
		{SakID: 8, Rolle: models.RolleGjenlevende},
	}, saker)

	none, err := s.service.SakerForPerson(s.ctx, domain.MustFolkeregisteridentifikator("01010112345"))
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *ServiceSuite) TestBehandling() {
	behandlingID := domain.BehandlingID(uuid.New())

	s.Run("cannot pin an empty sak", func() {
		_, err := s.service.KnyttBehandling(s.ctx, behandlingID, sakID)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.seedKari()

	s.Run("pinned snapshot ignores later facts", func() {
		bv, err := s.service.KnyttBehandling(s.ctx, behandlingID, sakID)
		s.Require().NoError(err)
		s.Equal(int64(3), bv.Hendelsenummer)

		_, err = s.service.Append(s.ctx, sakID, navn(kari, "Kari Anne"))
		s.Require().NoError(err)

		g, err := s.service.SnapshotForBehandling(s.ctx, behandlingID)
		s.Require().NoError(err)
		s.Equal(int64(3), g.Versjon)
		s.Equal("Kari", g.Soeker().Opplysninger.Konstant(models.TypeNavn).Verdi.(models.Navn).Fornavn)
	})

	s.Run("re-pinning moves to the latest version", func() {
		bv, err := s.service.KnyttBehandling(s.ctx, behandlingID, sakID)
		s.Require().NoError(err)
		s.Equal(int64(4), bv.Hendelsenummer)
	})

	s.Run("locked behandling cannot be re-pinned", func() {
		s.Require().NoError(s.service.LaasBehandling(s.ctx, behandlingID))
		_, err := s.service.Append(s.ctx, sakID, navn(ola, "Ola Nordmann"))
		s.Require().NoError(err)

		_, err = s.service.KnyttBehandling(s.ctx, behandlingID, sakID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.ErrorIs(err, models.ErrBehandlingLaast)
	})

	s.Run("unknown behandling", func() {
		_, err := s.service.SnapshotForBehandling(s.ctx, domain.BehandlingID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// ServiceErrorSuite drives the failure paths through a mocked store.
type ServiceErrorSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	mockCache *mocks.MockSnapshotCache
	service   *Service
}

func TestServiceErrorSuite(t *testing.T) {
	suite.Run(t, new(ServiceErrorSuite))
}

func (s *ServiceErrorSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockCache = mocks.NewMockSnapshotCache(s.ctrl)
	s.service = New(s.mockStore, WithCache(s.mockCache))
}

func (s *ServiceErrorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceErrorSuite) TestStorageUnavailable() {
	unavailable := models.NewStorageError("append", errors.New("connection refused"))

	s.Run("append", func() {
		s.mockStore.EXPECT().Append(gomock.Any(), sakID, gomock.Any()).Return(nil, unavailable)

		_, err := s.service.Append(s.ctx, sakID, navn(kari, "Kari"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.ErrorIs(err, models.ErrStorageUnavailable)
	})

	s.Run("snapshot", func() {
		s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(0), unavailable)

		_, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("records read after version check", func() {
		s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(2), nil)
		s.mockCache.EXPECT().Get(gomock.Any(), sakID, int64(2)).Return(nil, sentinel.ErrNotFound)
		s.mockStore.EXPECT().RecordsUpTo(gomock.Any(), sakID, int64(2)).Return(nil, unavailable)

		_, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("saker for person fan-out", func() {
		s.mockStore.EXPECT().SakerMedPerson(gomock.Any(), kari).Return([]domain.SakID{1, 2}, nil)
		s.mockStore.EXPECT().LatestOfType(gomock.Any(), gomock.Any(), models.TypePersongalleri).Return(nil, unavailable).AnyTimes()

		_, err := s.service.SakerForPerson(s.ctx, kari)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ServiceErrorSuite) TestCache() {
	cached := &models.Opplysningsgrunnlag{SakID: sakID, Versjon: 3, Sak: models.Opplysninger{}}

	s.Run("hit skips replay", func() {
		s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(3), nil)
		s.mockCache.EXPECT().Get(gomock.Any(), sakID, int64(3)).Return(cached, nil)

		g, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.Require().NoError(err)
		s.Same(cached, g)
	})

	s.Run("cache failures fall back to replay", func() {
		s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(1), nil)
		s.mockCache.EXPECT().Get(gomock.Any(), sakID, int64(1)).Return(nil, errors.New("redis down"))
		s.mockStore.EXPECT().RecordsUpTo(gomock.Any(), sakID, int64(1)).Return([]models.Opplysning{{
			ID:             domain.NewOpplysningID(),
			SakID:          sakID,
			Hendelsenummer: 1,
			Type:           models.TypePersongalleri,
			Kilde:          pdl,
			Verdi:          models.Persongalleri{Soeker: kari},
		}}, nil)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		g, err := s.service.CurrentSnapshot(s.ctx, sakID)
		s.Require().NoError(err)
		s.Equal(int64(1), g.Versjon)
		s.Require().NotNil(g.Soeker())
	})
}

func (s *ServiceErrorSuite) TestContextErrors() {
	s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(0), context.DeadlineExceeded)

	_, err := s.service.CurrentSnapshot(s.ctx, sakID)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *ServiceErrorSuite) TestConflictIsReportedNotFatal() {
	mixed := []models.Opplysning{
		{ID: domain.NewOpplysningID(), SakID: sakID, Hendelsenummer: 1, Type: models.TypePersongalleri, Kilde: pdl, Verdi: models.Persongalleri{Soeker: kari}},
		{ID: domain.NewOpplysningID(), SakID: sakID, Hendelsenummer: 2, Fnr: &kari, Type: models.TypeSivilstand, Kilde: pdl, Verdi: models.Sivilstand{Status: models.SivilstandGift}},
		{ID: domain.NewOpplysningID(), SakID: sakID, Hendelsenummer: 3, Fnr: &kari, Type: models.TypeSivilstand, Kilde: pdl, Verdi: models.Sivilstand{Status: models.SivilstandEnkeEllerEnkemann}, Periode: &models.Periode{Fom: models.MustMaaned("2023-01")}},
	}
	s.mockStore.EXPECT().MaxHendelsenummer(gomock.Any(), sakID).Return(int64(3), nil)
	s.mockCache.EXPECT().Get(gomock.Any(), sakID, int64(3)).Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().RecordsUpTo(gomock.Any(), sakID, int64(3)).Return(mixed, nil)
	s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

	g, err := s.service.CurrentSnapshot(s.ctx, sakID)
	s.Require().NoError(err)
	s.Require().Len(g.Konflikter, 1)
	s.Equal(models.TypeSivilstand, g.Konflikter[0].Type)
	s.Equal([]int64{2, 3}, g.Konflikter[0].Hendelsenumre)
	s.ErrorIs(g.Err(), models.ErrDataIntegrityConflict)
}
