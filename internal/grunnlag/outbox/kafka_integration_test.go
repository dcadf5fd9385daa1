//go:build integration

package outbox_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/grunnlag/outbox"
	"grunnlag/internal/grunnlag/store"
	"grunnlag/internal/platform/kafka"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/testutil/containers"
)

const topic = "grunnlag.opplysning-lagt-til"

type KafkaRelaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	store    *store.PostgresStore
	producer *kgo.Client
}

func TestKafkaRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaRelaySuite))
}

func (s *KafkaRelaySuite) SetupSuite() {
	ctx := context.Background()
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())

	_, err := store.Migrate(ctx, s.postgres.DB)
	s.Require().NoError(err)
	s.store = store.NewPostgresStore(s.postgres.DB)

	s.producer, err = kgo.NewClient(kgo.SeedBrokers(s.redpanda.Brokers...))
	s.Require().NoError(err)
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer, topic, 3, 1))
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer, topic, 3, 1), "existing topic is not an error")
}

func (s *KafkaRelaySuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaRelaySuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"grunnlagshendelse", "grunnlag_sekvens", "grunnlag_outbox", "behandling_versjon")
	s.Require().NoError(err)
}

func (s *KafkaRelaySuite) TestRelayPublishesKeyedBySak() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kari := domain.MustFolkeregisteridentifikator("09498230323")
	for _, sakID := range []domain.SakID{11, 12} {
		_, err := s.store.Append(ctx, sakID, []models.NyOpplysning{
			{Type: models.TypePersongalleri, Kilde: models.UkjentInnsender{Registrert: time.Now()}, Verdi: models.Persongalleri{Soeker: kari}},
			{Fnr: &kari, Type: models.TypeNavn, Kilde: models.Folkeregisteret{Registerreferanse: "pdl", Registrert: time.Now()}, Verdi: models.Navn{Fornavn: "Kari"}},
		})
		s.Require().NoError(err)
	}

	relay := outbox.NewRelay(s.store, outbox.NewKafkaPublisher(s.producer, topic))
	n, err := relay.Drain(ctx)
	s.Require().NoError(err)
	s.Equal(4, n)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	perSak := map[string][]int64{}
	for count := 0; count < 4; {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out waiting for events")
		fetches.EachRecord(func(r *kgo.Record) {
			var payload outbox.OpplysningLagtTil
			s.Require().NoError(json.Unmarshal(r.Value, &payload))
			s.Equal(string(r.Key), payload.SakID.String())
			perSak[string(r.Key)] = append(perSak[string(r.Key)], payload.Hendelsenummer)
			count++
		})
	}
	s.Equal([]int64{1, 2}, perSak["11"])
	s.Equal([]int64{1, 2}, perSak["12"])

	again, err := relay.Drain(ctx)
	s.Require().NoError(err)
	s.Zero(again)
}
