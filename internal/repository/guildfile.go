package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"garen-bot/internal/config"
	"garen-bot/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// errNoChange lets an update callback skip the write without failing.
var errNoChange = errors.New("no change")

var guildIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// GuildFiles owns the per-guild JSON files. Every read-modify-write for a guild
// runs under that guild's lock, and files are replaced atomically.
type GuildFiles struct {
	dir    string
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGuildFiles(dir string, logger zerolog.Logger) (*GuildFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &GuildFiles{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// NewGuildFilesFromConfig is the fx constructor.
func NewGuildFilesFromConfig(cfg *config.Config, logger zerolog.Logger) (*GuildFiles, error) {
	return NewGuildFiles(cfg.DataDir, logger)
}

func (g *GuildFiles) lock(guildID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	return l
}

func (g *GuildFiles) path(guildID, suffix string) (string, error) {
	if !guildIDPattern.MatchString(guildID) {
		return "", errors.Wrapf(domain.ErrInvalidGuildID, "%q", guildID)
	}
	return filepath.Join(g.dir, guildID+suffix+".json"), nil
}

// updateFile loads the document (or empty() when missing), applies fn and
// saves the result. fn returning an error leaves the file untouched.
func updateFile[T any](ctx context.Context, g *GuildFiles, guildID, suffix string, empty func() T, fn func(*T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := g.path(guildID, suffix)
	if err != nil {
		return err
	}

	l := g.lock(guildID)
	l.Lock()
	defer l.Unlock()

	doc, err := readFile(path, empty)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return g.writeFile(path, doc)
}

func viewFile[T any](ctx context.Context, g *GuildFiles, guildID, suffix string, empty func() T) (T, error) {
	if err := ctx.Err(); err != nil {
		return empty(), err
	}
	path, err := g.path(guildID, suffix)
	if err != nil {
		return empty(), err
	}

	l := g.lock(guildID)
	l.Lock()
	defer l.Unlock()

	return readFile(path, empty)
}

func readFile[T any](path string, empty func() T) (T, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return empty(), nil
	}
	if err != nil {
		return empty(), errors.Wrapf(err, "read %s", path)
	}

	doc := empty()
	if err := sonic.ConfigStd.Unmarshal(raw, &doc); err != nil {
		return empty(), errors.Wrapf(err, "decode %s", path)
	}
	return doc, nil
}

func (g *GuildFiles) writeFile(path string, doc any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return errors.Wrap(err, "failed to generate nanoid")
	}
	tmp := path + ".tmp-" + suffix

	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replace %s", path)
	}

	g.logger.Debug().Str("file", filepath.Base(path)).Int("bytes", len(raw)).Msg("guild file saved")
	return nil
}
