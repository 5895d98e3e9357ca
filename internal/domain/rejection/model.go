package rejection

import (
	"sort"

	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
)

// Reason classifies why a raw record did not become a fact.
type Reason string

const (
	ReasonParseError          Reason = "ParseError"
	ReasonMissingField        Reason = "MissingField"
	ReasonResolutionAmbiguity Reason = "ResolutionAmbiguity"
	ReasonReferentialGap      Reason = "ReferentialGap"
)

func Reasons() []Reason {
	return []Reason{ReasonParseError, ReasonMissingField, ReasonResolutionAmbiguity, ReasonReferentialGap}
}

// Record is one rejected raw record. Candidate fields are set for ambiguity reviews.
type Record struct {
	RunID  string    `json:"run_id"`
	Feed   feed.Kind `json:"feed"`
	Line   int       `json:"line"`
	Reason Reason    `json:"reason"`
	Field  string    `json:"field,omitempty"`
	Detail string    `json:"detail"`

	EntityType    string  `json:"entity_type,omitempty"`
	RawName       string  `json:"raw_name,omitempty"`
	CandidateKey  int64   `json:"candidate_key,omitempty"`
	CandidateName string  `json:"candidate_name,omitempty"`
	Score         float64 `json:"score,omitempty"`
}

// Counts tallies rejections by reason.
type Counts map[Reason]int

func Count(records []Record) Counts {
	out := make(Counts, len(Reasons()))
	for _, record := range records {
		out[record.Reason]++
	}
	return out
}

func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Sort orders records by feed order, then line.
func Sort(records []Record) {
	order := make(map[feed.Kind]int, len(feed.Kinds()))
	for i, kind := range feed.Kinds() {
		order[kind] = i
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Feed != records[j].Feed {
			return order[records[i].Feed] < order[records[j].Feed]
		}
		return records[i].Line < records[j].Line
	})
}
