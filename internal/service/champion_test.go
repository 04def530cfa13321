package service

import (
	"context"
	"sync/atomic"
	"testing"

	"garen-bot/internal/catalog"
	"garen-bot/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFreeRotation(t *testing.T) {
	t.Parallel()

	riot := newFakeRiot()
	riot.rotation = &domain.ChampionRotation{
		FreeChampionIDs:              []int{266, 7777},
		FreeChampionIDsForNewPlayers: []int{62},
		MaxNewPlayerLevel:            10,
	}
	svc := NewChampionService(riot, newCatalog(t), zerolog.Nop())

	rot, err := svc.FreeRotation(context.Background())
	require.NoError(t, err)
	require.Len(t, rot.Champions, 2)
	require.Equal(t, "Aatrox", rot.Champions[0].Name)
	require.Equal(t, "Unknown", rot.Champions[1].Name)
	require.Empty(t, rot.Champions[1].IconURL)
	require.Equal(t, "Wukong", rot.NewPlayerChampions[0].Name)
	require.Equal(t, 10, rot.MaxNewPlayerLevel)
}

func TestFreeRotationUpstreamError(t *testing.T) {
	t.Parallel()

	svc := NewChampionService(newFakeRiot(), newCatalog(t), zerolog.Nop())
	_, err := svc.FreeRotation(context.Background())
	require.Error(t, err)
}

type downDataDragon struct {
	calls atomic.Int32
}

func (d *downDataDragon) GetChampions(context.Context) ([]domain.Champion, error) {
	d.calls.Add(1)
	return nil, errors.New("ddragon unavailable")
}

func TestFreeRotationColdCatalogNeverDownloads(t *testing.T) {
	t.Parallel()

	riot := newFakeRiot()
	riot.rotation = &domain.ChampionRotation{FreeChampionIDs: []int{266}}
	fetcher := &downDataDragon{}
	cold := catalog.New(fetcher, "https://ddragon.test/cdn", "15.24.1", zerolog.Nop())
	svc := NewChampionService(riot, cold, zerolog.Nop())

	for range 5 {
		rot, err := svc.FreeRotation(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Unknown", rot.Champions[0].Name)
	}
	require.EqualValues(t, 0, fetcher.calls.Load())
}
