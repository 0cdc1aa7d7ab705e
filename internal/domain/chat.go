package domain

// ChatRequest is the caller-facing request shape.
type ChatRequest struct {
	Message string `json:"message"`
	Debug   bool   `json:"debug"`
}

// DebugHit is one retrieval hit as reported when debugging is requested.
type DebugHit struct {
	ChunkID int64     `json:"chunkId"`
	Section string    `json:"section"`
	Method  Method    `json:"method"`
	Score   float64   `json:"score"`
	Type    ChunkType `json:"type"`
	Snippet string    `json:"snippet"`
}

// ChatResponse is the caller-facing response shape.
type ChatResponse struct {
	CanAnswer  bool       `json:"canAnswer"`
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	UsedFields []string   `json:"usedFields"`
	// DebugHits is nil unless debugging was requested; then it is always
	// present, possibly empty.
	DebugHits *[]DebugHit `json:"debugHits,omitempty"`
}

// NewChatResponse converts an Answer to its wire shape. Collections are never
// null; debug hits are included only when debug is set.
func NewChatResponse(a Answer, debug bool, snippet func(string) string) ChatResponse {
	resp := ChatResponse{
		CanAnswer:  a.CanAnswer,
		Answer:     a.Text,
		Citations:  a.Citations,
		UsedFields: a.UsedFields,
	}
	if resp.Citations == nil {
		resp.Citations = []Citation{}
	}
	if resp.UsedFields == nil {
		resp.UsedFields = []string{}
	}
	if debug {
		hits := make([]DebugHit, 0, len(a.DebugHits))
		for _, h := range a.DebugHits {
			text := h.Content
			if snippet != nil {
				text = snippet(text)
			}
			hits = append(hits, DebugHit{
				ChunkID: h.ChunkID,
				Section: h.Section,
				Method:  h.Method,
				Score:   h.Score,
				Type:    h.Type,
				Snippet: text,
			})
		}
		resp.DebugHits = &hits
	}
	return resp
}
