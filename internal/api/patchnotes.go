package api

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"garen-bot/internal/config"
	"garen-bot/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	patchLinkSelector = "a[href*='/news/game-updates/patch-']"
	// layout-bound fallback when the page carries no og:image
	patchImageSelector = "section:nth-of-type(3) div div div div div div:nth-of-type(2) div div span a img"
)

// PatchNotesClient scrapes the public League site for the latest patch notes.
type PatchNotesClient struct {
	client  *Client
	listURL string
	logger  zerolog.Logger
}

func NewPatchNotesClient(client *Client, listURL string, logger zerolog.Logger) *PatchNotesClient {
	return &PatchNotesClient{client: client, listURL: listURL, logger: logger}
}

// NewPatchNotesClientFromConfig is the fx constructor.
func NewPatchNotesClientFromConfig(cfg *config.Config, client *Client, logger zerolog.Logger) *PatchNotesClient {
	return NewPatchNotesClient(client, cfg.PatchNotesURL, logger)
}

func (p *PatchNotesClient) LatestPatchNote(ctx context.Context) (*domain.PatchNote, error) {
	list, err := p.page(ctx, "patchnotes.list", p.listURL)
	if err != nil {
		return nil, err
	}

	href, ok := list.Find(patchLinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, errors.Wrapf(domain.ErrNotFound, "no patch link on %s", p.listURL)
	}
	patchURL, err := resolve(p.listURL, href)
	if err != nil {
		return nil, err
	}

	doc, err := p.page(ctx, "patchnotes.article", patchURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, errors.Newf("patch page %s has no title", patchURL)
	}

	note := &domain.PatchNote{Title: title, URL: patchURL}
	if img := patchImage(doc); img != "" {
		if note.ImageURL, err = resolve(patchURL, img); err != nil {
			return nil, err
		}
	}

	p.logger.Debug().Str("title", note.Title).Str("url", note.URL).Msg("latest patch note scraped")
	return note, nil
}

func (p *PatchNotesClient) page(ctx context.Context, endpoint, pageURL string) (*goquery.Document, error) {
	raw, found, err := p.client.get(ctx, endpoint, pageURL, requestOptions{static: true, accept: "text/html"})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(domain.ErrNotFound, "%s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", pageURL)
	}
	return doc, nil
}

func patchImage(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:image']").Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	img := doc.Find(patchImageSelector).First()
	if src, ok := img.Attr("src"); ok && src != "" {
		return src
	}
	src, _ := img.Attr("data-src")
	return src
}

// resolve turns relative and protocol-relative links into absolute URLs.
func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "parse base url %q", base)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", errors.Wrapf(err, "parse link %q", ref)
	}
	return b.ResolveReference(r).String(), nil
}
