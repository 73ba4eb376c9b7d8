package server

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/portfolio"
)

type cardResponse struct {
	TokenID  string          `json:"token_id"`
	TokenURI string          `json:"token_uri"`
	Name     string          `json:"name"`
	Staked   bool            `json:"staked"`
	Metadata metadata.Record `json:"metadata"`
}

type cardsResponse struct {
	Owner string         `json:"owner"`
	Cards []cardResponse `json:"cards"`
}

type rewardsResponse struct {
	Owner              string `json:"owner"`
	Claimable          string `json:"claimable"`
	ClaimableFormatted string `json:"claimable_formatted"`
	Balance            string `json:"balance"`
	BalanceFormatted   string `json:"balance_formatted"`
	Decimals           uint64 `json:"decimals"`
	Symbol             string `json:"symbol"`
	RewardsPerUnitTime string `json:"rewards_per_unit_time,omitempty"`
	TimeUnit           string `json:"time_unit,omitempty"`
}

func toCardResponse(c portfolio.Card) cardResponse {
	return cardResponse{
		TokenID:  c.TokenID.String(),
		TokenURI: c.TokenURI,
		Name:     c.Name(),
		Staked:   c.Staked,
		Metadata: c.Metadata,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, metadata.ErrMalformedURIShape):
		return http.StatusUnprocessableEntity
	case errors.Is(err, metadata.ErrAllGatewaysExhausted):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrNoOwner):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Warn("request failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status == http.StatusBadGateway {
		writeJSONError(w, status, "upstream unavailable")
		return
	}
	writeJSONError(w, status, err.Error())
}

func (s *Server) getToken(w http.ResponseWriter, r *http.Request) {
	ids, err := common.ParseTokenIDs([]string{chi.URLParam(r, "id")})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid token id")
		return
	}
	card, err := s.svc.Token(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(card))
}

func ownerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := chi.URLParam(r, "address")
	checksummed, err := common.ChecksumAddress(address)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid address")
		return "", false
	}
	return checksummed, true
}

func (s *Server) getOwned(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}
	cards, err := s.svc.Owned(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeCards(w, owner, cards)
}

func (s *Server) getStaked(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}
	cards, err := s.svc.Staked(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeCards(w, owner, cards)
}

func (s *Server) writeCards(w http.ResponseWriter, owner string, cards []portfolio.Card) {
	resp := cardsResponse{Owner: owner, Cards: make([]cardResponse, 0, len(cards))}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRewards(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}
	rw, err := s.svc.Rewards(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := rewardsResponse{
		Owner:              owner,
		Claimable:          bigString(rw.Claimable),
		ClaimableFormatted: rw.ClaimableString(),
		Balance:            bigString(rw.Balance),
		BalanceFormatted:   rw.BalanceString(),
		Decimals:           rw.Decimals,
		Symbol:             rw.Symbol,
	}
	if rw.RewardsPerUnitTime != nil && rw.TimeUnit != nil {
		resp.RewardsPerUnitTime = rw.RewardsPerUnitTime.String()
		resp.TimeUnit = rw.TimeUnit.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
