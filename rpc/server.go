package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"degenerus/core"
	"degenerus/native/assets"
	"degenerus/native/batch"
	"degenerus/native/coin"
	"degenerus/native/game"
	"degenerus/native/gate"
	"degenerus/observability"
)

// Server exposes the world over HTTP. All mutating routes are POST with JSON
// bodies; queries are GET.
type Server struct {
	world *core.World
	log   *slog.Logger
	now   func() int64

	router http.Handler
}

// Config captures the dependencies required to construct the server.
type Config struct {
	World *core.World
	Log   *slog.Logger
	// Now overrides the clock, used by tests to drive day boundaries.
	Now func() int64
}

// New constructs a configured HTTP router over the world.
func New(cfg Config) *Server {
	srv := &Server{world: cfg.World, log: cfg.Log, now: cfg.Now}
	if srv.log == nil {
		srv.log = slog.Default()
	}
	if srv.now == nil {
		srv.now = func() int64 { return time.Now().Unix() }
	}
	srv.router = srv.buildRouter()
	return srv
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/game", func(gr chi.Router) {
			gr.Post("/advance", s.handleAdvance)
			gr.Post("/settlement-batch", s.handleSettlementBatch)
			gr.Post("/mints", s.handlePurchaseMints)
			gr.Post("/burn", s.handleBurn)
			gr.Get("/round", s.handleRound)
			gr.Get("/exterminator/{round}", s.handleExterminator)
			gr.Get("/asset/{id}", s.handleAsset)
			gr.Get("/events", s.handleEvents)
		})
		v1.Route("/coin", func(cr chi.Router) {
			cr.Post("/stake", s.handleStake)
			cr.Post("/flip", s.handleFlip)
			cr.Post("/claim", s.handleClaim)
			cr.Post("/transfer", s.handleTransfer)
			cr.Post("/mint", s.handleMintCredits)
			cr.Get("/player/{addr}", s.handlePlayer)
			cr.Get("/leaderboard/{name}", s.handleLeaderboard)
			cr.Get("/lanes/{round}/{addr}", s.handleLanes)
			cr.Get("/bounty", s.handleBounty)
			cr.Route("/affiliate", func(ar chi.Router) {
				ar.Post("/register", s.handleRegisterCode)
				ar.Post("/bind", s.handleBindReferral)
				ar.Post("/optout", s.handleOptOut)
				ar.Post("/claim", s.handleClaimAffiliate)
				ar.Get("/{code}", s.handleAffiliate)
			})
		})
		v1.Route("/gate", func(gr chi.Router) {
			gr.Post("/fulfill", s.handleFulfill)
			gr.Post("/nudge", s.handleNudge)
			gr.Post("/rotate", s.handleRotateProvider)
			gr.Get("/status", s.handleGateStatus)
		})
	})

	return r
}

// instrument records per-route request counters and latency.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		outcome := "ok"
		if ww.Status() >= http.StatusBadRequest {
			outcome = "error"
			observability.ModuleMetrics().RecordError(route, strconv.Itoa(ww.Status()))
		}
		observability.ModuleMetrics().RecordRequest(route, outcome, time.Since(start))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps engine sentinels onto HTTP statuses: guard violations are
// client errors, sequencing conflicts are 409, retry-later sentinels are 425.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrAwaitingRandomness),
		errors.Is(err, game.ErrNothingToAdvance):
		return http.StatusTooEarly
	case errors.Is(err, game.ErrShutdown):
		return http.StatusGone
	case errors.Is(err, game.ErrNotParticipant),
		errors.Is(err, gate.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, gate.ErrNudgeLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, gate.ErrLocked),
		errors.Is(err, gate.ErrWordConsumed),
		errors.Is(err, gate.ErrNotStalled),
		errors.Is(err, batch.ErrRoundMismatch),
		errors.Is(err, coin.ErrFlipPending),
		errors.Is(err, coin.ErrCodeTaken),
		errors.Is(err, coin.ErrReferralBound),
		errors.Is(err, coin.ErrSelfReferral),
		errors.Is(err, assets.ErrStaleAsset):
		return http.StatusConflict
	case errors.Is(err, coin.ErrUnknownCode),
		errors.Is(err, assets.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, coin.ErrInvalidAmount),
		errors.Is(err, coin.ErrBelowMinimum),
		errors.Is(err, coin.ErrInsufficientBalance),
		errors.Is(err, coin.ErrRiskRange),
		errors.Is(err, coin.ErrStakeDistance),
		errors.Is(err, coin.ErrNothingToClaim),
		errors.Is(err, game.ErrNoAssets),
		errors.Is(err, assets.ErrNotAssetOwner),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
