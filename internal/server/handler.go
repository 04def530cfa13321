package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"garen-bot/internal/api"
	"garen-bot/internal/service"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Summoners interface {
	Lookup(ctx context.Context, riotID string) (*service.SummonerProfile, error)
}

type Leaderboards interface {
	AddAccount(ctx context.Context, guildID, discordUserID, riotID string) (*service.AddResult, error)
	Info(ctx context.Context, guildID string) (*service.GuildInfo, error)
	Ranking(ctx context.Context, guildID string, limit int) (*service.GuildRanking, error)
}

type Rotations interface {
	FreeRotation(ctx context.Context) (*service.Rotation, error)
}

type Lobbies interface {
	Lobby(ctx context.Context, riotID string) (*service.Lobby, error)
}

type PatchNotes interface {
	Latest(ctx context.Context) (*service.PatchNoteView, error)
}

type Catalog interface {
	Loaded() bool
}

type RateLimits interface {
	RateLimitInfo() api.RateLimitInfo
}

// Handler exposes the bot commands as JSON endpoints.
type Handler struct {
	summoners    Summoners
	leaderboards Leaderboards
	rotations    Rotations
	lobbies      Lobbies
	patchNotes   PatchNotes
	catalog      Catalog
	rateLimits   RateLimits
	validator    *validator.Validate
	logger       zerolog.Logger
}

func NewHandler(
	summoners Summoners,
	leaderboards Leaderboards,
	rotations Rotations,
	lobbies Lobbies,
	patchNotes PatchNotes,
	catalog Catalog,
	rateLimits RateLimits,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		summoners:    summoners,
		leaderboards: leaderboards,
		rotations:    rotations,
		lobbies:      lobbies,
		patchNotes:   patchNotes,
		catalog:      catalog,
		rateLimits:   rateLimits,
		validator:    validator.New(),
		logger:       logger,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /guilds/{guildID}/accounts", h.AddAccount)
	mux.HandleFunc("GET /guilds/{guildID}/info", h.GuildInfo)
	mux.HandleFunc("GET /guilds/{guildID}/leaderboard", h.Leaderboard)
	mux.HandleFunc("GET /summoners/{riotID}", h.Summoner)
	mux.HandleFunc("GET /lobbies/{riotID}", h.Lobby)
	mux.HandleFunc("GET /champions/rotation", h.Rotation)
	mux.HandleFunc("GET /patchnotes/latest", h.LatestPatchNote)
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}

type addAccountRequest struct {
	DiscordUserID string `json:"discord_user_id" validate:"required,max=32"`
	RiotID        string `json:"riot_id" validate:"required,max=64"`
}

func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addAccountRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, errors.Mark(errors.Wrap(err, "invalid JSON payload"), errInvalidInput))
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		writeError(ctx, w, errors.Mark(errors.Wrap(err, "invalid request"), errInvalidInput))
		return
	}

	res, err := h.leaderboards.AddAccount(ctx, r.PathValue("guildID"), req.DiscordUserID, req.RiotID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, res)
}

func (h *Handler) GuildInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.leaderboards.Info(ctx, r.PathValue("guildID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, info)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(ctx, w, errors.Mark(errors.Newf("limit must be a positive integer, got %q", raw), errInvalidInput))
			return
		}
		limit = n
	}

	board, err := h.leaderboards.Ranking(ctx, r.PathValue("guildID"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, board)
}

func (h *Handler) Summoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.summoners.Lookup(ctx, r.PathValue("riotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profile)
}

func (h *Handler) Lobby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lobby, err := h.lobbies.Lobby(ctx, r.PathValue("riotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lobby)
}

func (h *Handler) Rotation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rotation, err := h.rotations.FreeRotation(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rotation)
}

func (h *Handler) LatestPatchNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.patchNotes.Latest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, note)
}

type healthResponse struct {
	Status        string            `json:"status"`
	CatalogLoaded bool              `json:"catalog_loaded"`
	RateLimit     api.RateLimitInfo `json:"rate_limit"`
	Time          time.Time         `json:"time"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, healthResponse{
		Status:        "ok",
		CatalogLoaded: h.catalog.Loaded(),
		RateLimit:     h.rateLimits.RateLimitInfo(),
		Time:          time.Now().UTC(),
	})
}
