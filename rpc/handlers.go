package rpc

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"degenerus/native/coin"
)

// --- game ---

type advanceRequest struct {
	Caller      string `json:"caller"`
	CapOverride bool   `json:"capOverride,omitempty"`
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := parseAddr(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.Advance(caller, req.CapOverride, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "advanced"})
}

type settlementBatchRequest struct {
	Budget uint64 `json:"budget,omitempty"`
}

func (s *Server) handleSettlementBatch(w http.ResponseWriter, r *http.Request) {
	var req settlementBatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.world.ProcessSettlementBatch(req.Budget, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

type purchaseMintsRequest struct {
	Player string `json:"player"`
	Count  uint32 `json:"count"`
}

func (s *Server) handlePurchaseMints(w http.ResponseWriter, r *http.Request) {
	var req purchaseMintsRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.PurchaseMints(player, req.Count, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "queued", "count": req.Count})
}

type burnRequest struct {
	Caller string   `json:"caller"`
	IDs    []uint64 `json:"ids"`
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := parseAddr(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.BurnForReward(caller, req.IDs, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "burned", "count": len(req.IDs)})
}

type roundView struct {
	Number                uint64 `json:"number"`
	Phase                 string `json:"phase"`
	PrizePool             string `json:"prizePool"`
	NextPrizePool         string `json:"nextPrizePool"`
	RewardPool            string `json:"rewardPool"`
	BurnedAssets          uint64 `json:"burnedAssets"`
	JackpotCounter        uint8  `json:"jackpotCounter"`
	DayIndex              uint64 `json:"dayIndex"`
	LastExterminatedTrait uint16 `json:"lastExterminatedTrait"`
	PurchaseDeadlineDay   uint64 `json:"purchaseDeadlineDay,omitempty"`
	StartedAt             int64  `json:"startedAt"`
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.world.Round()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, roundView{
		Number:                round.Number,
		Phase:                 round.Phase.String(),
		PrizePool:             formatAmount(round.PrizePool),
		NextPrizePool:         formatAmount(round.NextPrizePool),
		RewardPool:            formatAmount(round.RewardPool),
		BurnedAssets:          round.BurnedAssets,
		JackpotCounter:        round.JackpotCounter,
		DayIndex:              round.DayIndex,
		LastExterminatedTrait: round.LastExterminatedTrait,
		PurchaseDeadlineDay:   round.PurchaseDeadlineDay,
		StartedAt:             round.StartedAt,
	})
}

func (s *Server) handleExterminator(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.ParseUint(chi.URLParam(r, "round"), 10, 64)
	if err != nil {
		s.writeError(w, badRequestf("invalid round"))
		return
	}
	who, ok, err := s.world.Exterminator(round)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "no exterminator recorded"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"player": formatAddr(who)})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, badRequestf("invalid asset id"))
		return
	}
	asset, ok, err := s.world.Asset(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown asset"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":         id,
		"owner":      formatAddr(asset.Owner),
		"trait":      asset.Trait,
		"generation": asset.Gen,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	buffered := s.world.RecentEvents()
	out := make([]map[string]any, 0, len(buffered))
	for _, event := range buffered {
		out = append(out, map[string]any{"type": event.EventType(), "event": event})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// --- coin ---

type stakeRequest struct {
	Player      string `json:"player"`
	Amount      string `json:"amount"`
	TargetRound uint64 `json:"targetRound"`
	Risk        uint8  `json:"risk"`
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.Stake(player, amount, req.TargetRound, req.Risk); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "staked"})
}

type flipRequest struct {
	Player string `json:"player"`
	Amount string `json:"amount"`
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.DepositCoinflip(player, amount); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deposited"})
}

type claimRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	claimed, err := s.world.Claim(player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"claimed": formatAmount(claimed)})
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !s.decode(w, r, &req) {
		return
	}
	from, err := parseAddr(req.From)
	if err != nil {
		s.writeError(w, err)
		return
	}
	to, err := parseAddr(req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.Transfer(from, to, amount); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

type mintCreditsRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleMintCredits(w http.ResponseWriter, r *http.Request) {
	var req mintCreditsRequest
	if !s.decode(w, r, &req) {
		return
	}
	to, err := parseAddr(req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.MintCredits(to, amount); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "minted"})
}

type playerView struct {
	Address     string `json:"address"`
	Balance     string `json:"balance"`
	Claimable   string `json:"claimable"`
	PendingFlip string `json:"pendingFlip"`
	FlipRound   uint64 `json:"flipRound,omitempty"`
	Luckbox     uint64 `json:"luckbox"`
	LastBurnDay uint64 `json:"lastBurnDay,omitempty"`
	TotalBurned string `json:"totalBurned"`
	TotalStaked string `json:"totalStaked"`
	TotalMints  uint64 `json:"totalMints"`
	OwedMints   uint32 `json:"owedMints,omitempty"`
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddr(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.world.Player(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, playerView{
		Address:     formatAddr(addr),
		Balance:     formatAmount(view.Balance),
		Claimable:   formatAmount(view.Claimable),
		PendingFlip: formatAmount(view.PendingFlip),
		FlipRound:   view.FlipRound,
		Luckbox:     view.Luckbox,
		LastBurnDay: view.LastBurnDay,
		TotalBurned: formatAmount(view.TotalBurned),
		TotalStaked: formatAmount(view.TotalStaked),
		TotalMints:  view.TotalMints,
		OwedMints:   view.OwedMints,
	})
}

type boardEntryView struct {
	Player string `json:"player"`
	Score  string `json:"score"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != coin.BoardAffiliates && name != coin.BoardStakers {
		s.writeError(w, badRequestf("unknown board %q", name))
		return
	}
	board, err := s.world.Leaderboard(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries := make([]boardEntryView, 0, len(board.Entries))
	for _, e := range board.Entries {
		entries = append(entries, boardEntryView{Player: formatAddr(e.Player), Score: formatAmount(e.Score)})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"board": name, "entries": entries})
}

func (s *Server) handleLanes(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.ParseUint(chi.URLParam(r, "round"), 10, 64)
	if err != nil {
		s.writeError(w, badRequestf("invalid round"))
		return
	}
	addr, err := parseAddr(chi.URLParam(r, "addr"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	book, err := s.world.LaneBook(round, addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	principals := make([]string, len(book.Principals))
	for i, p := range book.Principals {
		principals[i] = formatAmount(p)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"round": round, "principals": principals})
}

func (s *Server) handleBounty(w http.ResponseWriter, r *http.Request) {
	pool, err := s.world.BountyPool()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"pool": formatAmount(pool)})
}

type registerCodeRequest struct {
	Owner string `json:"owner"`
	Code  string `json:"code"`
}

func (s *Server) handleRegisterCode(w http.ResponseWriter, r *http.Request) {
	var req registerCodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	owner, err := parseAddr(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	code, err := parseCode(req.Code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.RegisterCode(owner, code); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "registered", "code": formatCode(code)})
}

type bindReferralRequest struct {
	Player string `json:"player"`
	Code   string `json:"code"`
}

func (s *Server) handleBindReferral(w http.ResponseWriter, r *http.Request) {
	var req bindReferralRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	code, err := parseCode(req.Code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.BindReferral(player, code); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "bound"})
}

type optOutRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleOptOut(w http.ResponseWriter, r *http.Request) {
	var req optOutRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.OptOutReferral(player); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "opted out"})
}

type claimAffiliateRequest struct {
	Caller string `json:"caller"`
	Code   string `json:"code"`
}

func (s *Server) handleClaimAffiliate(w http.ResponseWriter, r *http.Request) {
	var req claimAffiliateRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := parseAddr(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	code, err := parseCode(req.Code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	claimed, err := s.world.ClaimAffiliate(caller, code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"claimed": formatAmount(claimed)})
}

func (s *Server) handleAffiliate(w http.ResponseWriter, r *http.Request) {
	code, err := parseCode(chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, ok, err := s.world.Affiliate(code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown code"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"owner":        formatAddr(record.Owner),
		"upline":       formatCode(record.Upline),
		"totalEarned":  formatAmount(record.TotalEarned),
		"pendingClaim": formatAmount(record.PendingClaim),
	})
}

// --- gate ---

type fulfillRequest struct {
	RequestID uint64 `json:"requestId"`
	Word      string `json:"word"`
	Source    string `json:"source"`
}

func (s *Server) handleFulfill(w http.ResponseWriter, r *http.Request) {
	var req fulfillRequest
	if !s.decode(w, r, &req) {
		return
	}
	word, err := parseWord(req.Word)
	if err != nil {
		s.writeError(w, err)
		return
	}
	source, err := parseAddr(req.Source)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.FulfillRandomness(req.RequestID, word, source); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "fulfilled"})
}

type nudgeRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, err := parseAddr(req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	fee, err := s.world.Nudge(player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"fee": formatAmount(fee)})
}

type rotateRequest struct {
	Caller   string `json:"caller"`
	Provider string `json:"provider"`
}

func (s *Server) handleRotateProvider(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if !s.decode(w, r, &req) {
		return
	}
	caller, err := parseAddr(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	provider, err := parseAddr(req.Provider)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.world.RotateProvider(caller, provider, s.now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "rotated"})
}

func (s *Server) handleGateStatus(w http.ResponseWriter, r *http.Request) {
	provider, stalled, err := s.world.GateStatus(s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"provider": formatAddr(provider),
		"stalled":  stalled,
	})
}
