package usecase

import (
	"encoding/json"
)

// rankSelection is one entry of the model's ranking answer. The index scheme
// fills job_number; the match scheme fills title/company.
type rankSelection struct {
	Rank      int    `json:"rank"`
	JobNumber int    `json:"job_number"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Reason    string `json:"reason"`
}

// rankOutcome is the tagged result of decoding a ranking response: either a
// parsed selection sequence or a fallback with the reason that triggered it.
type rankOutcome struct {
	Parsed     bool
	Selections []rankSelection
	Reason     string
}

func parsedOutcome(sels []rankSelection) rankOutcome {
	return rankOutcome{Parsed: true, Selections: sels}
}

func fallbackOutcome(reason string) rankOutcome {
	return rankOutcome{Reason: reason}
}

// parseRankingResponse recovers an ordered selection list from the model's
// free-text answer using a layered strategy: strip code fences, isolate the
// bracketed array, flatten whitespace, then parse strictly. Every layer that
// fails routes to the fallback with a diagnostic reason instead of an error.
func parseRankingResponse(raw string) rankOutcome {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return fallbackOutcome("empty_response")
	}

	arr, ok := extractArray(cleaned)
	if !ok {
		return fallbackOutcome("no_array")
	}

	var selections []rankSelection
	if err := json.Unmarshal([]byte(normalizeJSONWhitespace(arr)), &selections); err != nil {
		return fallbackOutcome("parse_error")
	}
	if selections == nil {
		return fallbackOutcome("not_a_sequence")
	}
	if len(selections) == 0 {
		return fallbackOutcome("empty_sequence")
	}
	return parsedOutcome(selections)
}
