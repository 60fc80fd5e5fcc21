package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/infra/metrics"
)

// Compile-time check
var _ Gatekeeper = (*gatekeeperUC)(nil)

// Admission is a request that passed the gate. FastAnswer is set when a canned
// reply should be sent instead of calling the model.
type Admission struct {
	Request    *model.ChatRequest
	FastRule   string
	FastAnswer string
}

func (a *Admission) IsFastPath() bool { return a.FastRule != "" }

type Gatekeeper interface {
	Admit(ctx context.Context, clientID string, body []byte) (*Admission, error)
}

type gatekeeperUC struct {
	state *EdgeState
	rules []FastRule
	log   *zerolog.Logger
}

func NewGatekeeper(state *EdgeState, rules []FastRule, log *zerolog.Logger) *gatekeeperUC {
	return &gatekeeperUC{state: state, rules: rules, log: log}
}

// Admit runs the rate check before the body is even parsed, then the schema
// check, then the fast-path table.
func (g *gatekeeperUC) Admit(ctx context.Context, clientID string, body []byte) (*Admission, error) {
	if !g.state.CheckAndIncrement(ctx, clientID) {
		metrics.IncChatRequest("rate_limited")
		return nil, domain.ErrRateLimited
	}

	var req model.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.IncChatRequest("invalid")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := req.Validate(); err != nil {
		metrics.IncChatRequest("invalid")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	adm := &Admission{Request: &req}
	if rule, ok := MatchFastRule(g.rules, req.LastUserMessage()); ok {
		adm.FastRule = rule.Name
		adm.FastAnswer = rule.Answer
		metrics.IncFastPath(rule.Name)
		g.log.Debug().Str("rule", rule.Name).Msg("fast path matched")
	}
	return adm, nil
}
