package api

import (
	"context"
	"testing"
	"time"

	"garen-bot/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const patchListURL = "https://www.leagueoflegends.com/fr-fr/news/tags/patch-notes/"

func newPatchNotes(routes map[string]string) (*PatchNotesClient, *routeDoer) {
	doer := &routeDoer{routes: routes}
	client := NewClient("key", nil, time.Second, 3, zerolog.Nop(), WithDoer(doer))
	return NewPatchNotesClient(client, patchListURL, zerolog.Nop()), doer
}

func TestLatestPatchNote(t *testing.T) {
	t.Parallel()

	notes, doer := newPatchNotes(map[string]string{
		"www.leagueoflegends.com/fr-fr/news/tags/patch-notes/": `<html><body>
			<a href="/fr-fr/news/dev/dev-update/">dev</a>
			<a href="/fr-fr/news/game-updates/patch-25-24-notes/">25.24</a>
			<a href="/fr-fr/news/game-updates/patch-25-23-notes/">25.23</a>
		</body></html>`,
		"www.leagueoflegends.com/fr-fr/news/game-updates/patch-25-24-notes/": `<html><head>
			<meta property="og:image" content="//cdn.example.test/patch-25-24.jpg">
		</head><body><h1>  Notes de patch 25.24 </h1></body></html>`,
	})

	note, err := notes.LatestPatchNote(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Notes de patch 25.24", note.Title)
	require.Equal(t, "https://www.leagueoflegends.com/fr-fr/news/game-updates/patch-25-24-notes/", note.URL)
	require.Equal(t, "https://cdn.example.test/patch-25-24.jpg", note.ImageURL)
	require.Len(t, doer.seen, 2)
}

func TestLatestPatchNoteFallsBackToArticleImage(t *testing.T) {
	t.Parallel()

	notes, _ := newPatchNotes(map[string]string{
		"www.leagueoflegends.com/fr-fr/news/tags/patch-notes/": `<a href="https://www.leagueoflegends.com/fr-fr/news/game-updates/patch-25-24-notes/">x</a>`,
		"www.leagueoflegends.com/fr-fr/news/game-updates/patch-25-24-notes/": `<html><body>
			<h1>Patch 25.24</h1>
			<section></section><section></section>
			<section><div><div><div><div><div>
				<div></div>
				<div><div><div><span><a><img data-src="/images/banner.png"></a></span></div></div></div>
			</div></div></div></div></div></section>
		</body></html>`,
	})

	note, err := notes.LatestPatchNote(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://www.leagueoflegends.com/images/banner.png", note.ImageURL)
}

func TestLatestPatchNoteWithoutLinksIsNotFound(t *testing.T) {
	t.Parallel()

	notes, _ := newPatchNotes(map[string]string{
		"www.leagueoflegends.com/fr-fr/news/tags/patch-notes/": `<html><body><p>maintenance</p></body></html>`,
	})

	_, err := notes.LatestPatchNote(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLatestPatchNoteRequiresTitle(t *testing.T) {
	t.Parallel()

	notes, _ := newPatchNotes(map[string]string{
		"www.leagueoflegends.com/fr-fr/news/tags/patch-notes/":    `<a href="/fr-fr/news/game-updates/patch-1/">x</a>`,
		"www.leagueoflegends.com/fr-fr/news/game-updates/patch-1/": `<html><body></body></html>`,
	})

	_, err := notes.LatestPatchNote(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrNotFound)
}
