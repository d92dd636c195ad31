// Package stream demultiplexes a model token stream into its logical
// channels: private reasoning, the user-visible answer and a trailing
// structured suggestions block.
//
// Reasoning models wrap their deliberation in <think> markers and may
// append follow-up suggestions after the answer. Tokens arrive in
// fragments of arbitrary size, so a marker can straddle any number of
// fragment boundaries. The splitter accumulates the raw stream and
// re-scans it on every feed; buffers are bounded by response length,
// which keeps the full re-scan cheaper than a partial-match lexer
// would be worth.
package stream

import (
	"regexp"
	"strings"
)

const (
	reasoningStart   = "<think>"
	reasoningEnd     = "</think>"
	suggestionsStart = "<suggestions>"
)

// Tolerant marker patterns used by the final non-incremental scan.
// Models occasionally emit case or whitespace variants of the closing
// markers, and a finished buffer can afford the looser match.
var (
	thinkOpenPattern  = regexp.MustCompile(`(?i)^\s*<\s*think\s*>`)
	thinkClosePattern = regexp.MustCompile(`(?i)<\s*/\s*think\s*>`)
	suggOpenPattern   = regexp.MustCompile(`(?i)<\s*suggestions\s*>`)
	suggClosePattern  = regexp.MustCompile(`(?i)<\s*/\s*suggestions\s*>`)

	boldPattern = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
)

// Phase identifies where the splitter currently is in the stream.
type Phase int

const (
	// AwaitingMarker means not enough content has arrived to tell
	// whether the stream opens with a reasoning section.
	AwaitingMarker Phase = iota

	// InReasoning means the stream opened with a reasoning marker whose
	// closing marker has not appeared yet.
	InReasoning

	// InAnswer means everything from here on is answer text. The phase
	// is terminal; a stream enters it exactly once.
	InAnswer
)

// String returns a short label for logging.
func (p Phase) String() string {
	switch p {
	case AwaitingMarker:
		return "awaiting-marker"
	case InReasoning:
		return "reasoning"
	case InAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// Snapshot is the externally visible state after a feed. Answer holds
// the displayable answer text: suggestion markup, including a partially
// received opening marker, is never part of it.
type Snapshot struct {
	// Phase is the splitter phase after the feed.
	Phase Phase

	// Reasoning is the reasoning text accumulated so far, without the
	// surrounding markers.
	Reasoning string

	// Answer is the displayable answer text so far. Successive
	// snapshots only ever append to it.
	Answer string

	// Activity is the most recent bolded line of the reasoning text,
	// usable as a compact progress label while the model deliberates.
	Activity string
}

// Result is the outcome of finalising a completed stream.
type Result struct {
	// Reasoning is the text between the reasoning markers, trimmed.
	// Empty when the stream carried no reasoning section.
	Reasoning string

	// Answer is the final answer text, trimmed, with any suggestions
	// markup removed.
	Answer string

	// Suggestions holds the parsed follow-up phrases. Empty when the
	// stream carried none or the block was malformed.
	Suggestions []string
}

// Splitter incrementally separates one generation stream. Create one
// per request with New; it is not safe for concurrent use.
type Splitter struct {
	buf   strings.Builder
	phase Phase

	// bodyStart is the buffer offset just past the reasoning start
	// marker, valid once phase leaves AwaitingMarker via InReasoning.
	bodyStart int

	// reasoningEndAt is the buffer offset of the reasoning end marker,
	// and answerStart the offset just past it. Both are valid once the
	// end marker has been seen. A stream without reasoning keeps
	// answerStart at 0 so the whole buffer is the answer.
	reasoningEndAt int
	answerStart    int
	sawReasoning   bool
}

// New creates a splitter ready to consume a fresh stream.
func New() *Splitter {
	return &Splitter{phase: AwaitingMarker}
}

// Feed appends one stream fragment and returns the updated snapshot.
// Fragments may cut markers at any byte; feeding the empty string is a
// no-op that still reports the current state.
func (s *Splitter) Feed(fragment string) Snapshot {
	s.buf.WriteString(fragment)
	s.advance()
	return s.snapshot()
}

// Phase returns the current stream phase.
func (s *Splitter) Phase() Phase {
	return s.phase
}

// advance applies every state transition the accumulated buffer now
// supports. A single large fragment can walk the machine through all
// three phases at once.
func (s *Splitter) advance() {
	for {
		switch s.phase {
		case AwaitingMarker:
			buf := s.buf.String()
			trimmed := strings.TrimLeft(buf, " \t\r\n")
			switch {
			case trimmed == "":
				// Nothing but whitespace so far; keep waiting.
				return
			case strings.HasPrefix(trimmed, reasoningStart):
				s.phase = InReasoning
				s.bodyStart = len(buf) - len(trimmed) + len(reasoningStart)
				s.sawReasoning = true
			case strings.HasPrefix(reasoningStart, trimmed):
				// The buffer is a proper prefix of the marker; it could
				// still complete on the next fragment.
				return
			default:
				// The model skipped reasoning entirely.
				s.phase = InAnswer
				s.answerStart = 0
			}
		case InReasoning:
			buf := s.buf.String()
			idx := strings.Index(buf[s.bodyStart:], reasoningEnd)
			if idx < 0 {
				return
			}
			s.reasoningEndAt = s.bodyStart + idx
			s.answerStart = s.reasoningEndAt + len(reasoningEnd)
			s.phase = InAnswer
		case InAnswer:
			return
		}
	}
}

func (s *Splitter) snapshot() Snapshot {
	reasoning := s.reasoningView()
	return Snapshot{
		Phase:     s.phase,
		Reasoning: reasoning,
		Answer:    s.answerView(),
		Activity:  lastBoldLine(reasoning),
	}
}

// reasoningView returns the reasoning text visible so far. While the
// end marker is still outstanding, a trailing fragment that could be
// the start of it is withheld so the view never shows marker debris.
func (s *Splitter) reasoningView() string {
	if !s.sawReasoning {
		return ""
	}
	buf := s.buf.String()
	if s.phase == InReasoning {
		return trimPartialSuffix(buf[s.bodyStart:], reasoningEnd)
	}
	return buf[s.bodyStart:s.reasoningEndAt]
}

// answerView returns the displayable answer accumulated so far. Any
// suggestions opening marker and everything after it is cut, and a
// trailing fragment that could grow into the marker is withheld, which
// keeps every snapshot a prefix of the next one.
func (s *Splitter) answerView() string {
	if s.phase != InAnswer {
		return ""
	}
	raw := s.buf.String()[s.answerStart:]
	if idx := strings.Index(raw, suggestionsStart); idx >= 0 {
		return raw[:idx]
	}
	return trimPartialSuffix(raw, suggestionsStart)
}

// Finalize re-scans the completed buffer once with the tolerant marker
// patterns and returns the definitive split. Malformed or absent
// markers never fail: unmatched structure degrades to plain answer
// text and an empty suggestions list.
func (s *Splitter) Finalize() Result {
	full := s.buf.String()

	var reasoning, answer string
	if loc := thinkOpenPattern.FindStringIndex(full); loc != nil {
		rest := full[loc[1]:]
		if end := thinkClosePattern.FindStringIndex(rest); end != nil {
			reasoning = rest[:end[0]]
			answer = rest[end[1]:]
		} else {
			// The stream ended mid-reasoning. Everything after the
			// opening marker is deliberation, not answer.
			reasoning = rest
		}
	} else {
		answer = full
	}

	answer, suggestions := extractSuggestions(answer)

	return Result{
		Reasoning:   strings.TrimSpace(reasoning),
		Answer:      strings.TrimSpace(answer),
		Suggestions: suggestions,
	}
}

// extractSuggestions cuts the suggestions block out of the answer text
// and parses it. The markup is removed from the answer whether or not
// its content parses.
func extractSuggestions(answer string) (string, []string) {
	open := suggOpenPattern.FindStringIndex(answer)
	if open == nil {
		return answer, nil
	}

	body := answer[open[1]:]
	if end := suggClosePattern.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}

	parsed, err := ParseSuggestions(body)
	if err != nil {
		return answer[:open[0]], nil
	}
	return answer[:open[0]], parsed
}

// lastBoldLine extracts the most recently completed **bold** span from
// the reasoning text.
func lastBoldLine(reasoning string) string {
	matches := boldPattern.FindAllStringSubmatch(reasoning, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// trimPartialSuffix removes the longest trailing substring of s that is
// a proper prefix of marker. A complete marker is left alone; callers
// handle that case via an index search first.
func trimPartialSuffix(s, marker string) string {
	max := len(marker) - 1
	if max > len(s) {
		max = len(s)
	}
	for l := max; l > 0; l-- {
		if s[len(s)-l:] == marker[:l] {
			return s[:len(s)-l]
		}
	}
	return s
}
