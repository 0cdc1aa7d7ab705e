// Package service wires segmentation, fact routing, retrieval and assembly
// into the chat and ingestion use cases.
package service

import (
	"context"
	"fmt"
	"strings"

	"resumechat/internal/answer"
	"resumechat/internal/domain"
	"resumechat/internal/expander"
	"resumechat/internal/facts"
	"resumechat/internal/logger"
	"resumechat/internal/profile"
	"resumechat/internal/retrieval"
)

const (
	// EmptyQueryMessage is returned for blank input.
	EmptyQueryMessage = "Ask a question about the resume."
	// NotFoundMessage is returned when nothing in the résumé answers the question.
	NotFoundMessage = "I don’t have that information in my resume."
)

// Route names the terminal state a request ended in.
type Route string

const (
	RouteEmpty       Route = "empty"
	RouteFact        Route = "fact"
	RouteFactMissing Route = "fact_missing"
	RouteRetrieval   Route = "retrieval"
	RouteExpanded    Route = "expanded"
	RouteRefusal     Route = "refusal"
)

// Recorder observes request outcomes.
type Recorder interface {
	RecordAnswer(route string)
	RecordTier(tier string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAnswer(string) {}
func (nopRecorder) RecordTier(string)   {}

// ChatIndex is what the chat service reads from.
type ChatIndex interface {
	domain.SearchIndex
	domain.ProfileStore
}

// Options tune a ChatService. Zero values select defaults.
type Options struct {
	Limit      int
	Thresholds *retrieval.Thresholds
	Aliases    map[string]string
	Rules      []facts.Rule
	Recorder   Recorder
}

// ChatService answers one question at a time. It holds no per-request state
// and is safe for concurrent use.
type ChatService struct {
	profiles domain.ProfileStore
	router   *facts.Router
	engine   *retrieval.Engine
	expander *expander.Expander
	limit    int
	recorder Recorder
}

func NewChatService(index ChatIndex, opts Options) *ChatService {
	th := retrieval.DefaultThresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	var rec Recorder = nopRecorder{}
	if opts.Recorder != nil {
		rec = opts.Recorder
	}
	return &ChatService{
		profiles: index,
		router:   facts.NewRouter(opts.Rules),
		engine:   retrieval.NewEngine(index, th),
		expander: expander.New(opts.Aliases),
		limit:    limit,
		recorder: rec,
	}
}

// Answer runs one request to a terminal state. A returned error means the
// index or profile store failed; every no-match outcome is a nil error with
// CanAnswer false.
func (s *ChatService) Answer(ctx context.Context, message string, debug bool) (domain.Answer, error) {
	log := logger.FromContext(ctx)
	query := strings.TrimSpace(message)
	if query == "" {
		s.recorder.RecordAnswer(string(RouteEmpty))
		return domain.Answer{Text: EmptyQueryMessage}, nil
	}

	if m, ok := s.router.Match(query); ok {
		return s.answerFact(ctx, m)
	}

	out, err := s.engine.Search(ctx, query, s.limit)
	if err != nil {
		return domain.Answer{}, err
	}
	s.recorder.RecordTier(string(out.Tier))
	route := RouteRetrieval
	if len(out.Hits) == 0 {
		expanded, changed := s.expander.Expand(query)
		if changed {
			log.Debug("Retrying with expanded query", "query", query, "expanded", expanded)
			if out, err = s.engine.Search(ctx, expanded, s.limit); err != nil {
				return domain.Answer{}, err
			}
			s.recorder.RecordTier(string(out.Tier))
			route = RouteExpanded
		}
	}

	if len(out.Hits) == 0 {
		log.Debug("No hits", "query", query, "route", RouteRefusal)
		s.recorder.RecordAnswer(string(RouteRefusal))
		return withDebug(domain.Answer{Text: NotFoundMessage}, nil, debug), nil
	}

	res := answer.Assemble(out.Hits)
	log.Debug("Answered from retrieval", "route", route, "tier", out.Tier, "hits", len(out.Hits))
	s.recorder.RecordAnswer(string(route))
	return withDebug(domain.Answer{
		CanAnswer: true,
		Text:      res.Text,
		Citations: res.Citations,
	}, out.Hits, debug), nil
}

func (s *ChatService) answerFact(ctx context.Context, m domain.FactMatch) (domain.Answer, error) {
	doc, err := s.profiles.LatestProfile(ctx)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("loading profile: %w", err)
	}
	root, err := profile.Parse(doc)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("loading profile: %w", err)
	}
	used := []string{m.Label}
	text, ok := profile.Render(profile.Lookup(root, m.FieldPath))
	if !ok {
		logger.FromContext(ctx).Debug("Fact not in profile", "field", m.FieldPath, "route", RouteFactMissing)
		s.recorder.RecordAnswer(string(RouteFactMissing))
		return domain.Answer{Text: NotFoundMessage, UsedFields: used}, nil
	}
	logger.FromContext(ctx).Debug("Answered from profile", "field", m.FieldPath, "route", RouteFact)
	s.recorder.RecordAnswer(string(RouteFact))
	return domain.Answer{CanAnswer: true, Text: text, UsedFields: used}, nil
}

func withDebug(a domain.Answer, hits []domain.Hit, debug bool) domain.Answer {
	if debug {
		a.DebugHits = hits
	}
	return a
}

// Respond answers req and converts the result to its wire shape.
func (s *ChatService) Respond(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	a, err := s.Answer(ctx, req.Message, req.Debug)
	if err != nil {
		return domain.ChatResponse{}, err
	}
	return domain.NewChatResponse(a, req.Debug, func(s string) string {
		return answer.Clip(s, answer.SnippetMax)
	}), nil
}
