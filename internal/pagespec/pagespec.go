// Package pagespec parses and resolves page-range specifications.
//
// A specification is a comma-separated list of tokens. Each token is either a
// single page number ("3") or a dash-separated range ("1-10"). A reversed
// range ("10-1") selects the pages in descending order. Order and repetition
// across tokens are preserved: "1,3,3-1" means exactly pages 1, 3, 3, 2, 1.
//
// Parsing validates the grammar only; page numbers are checked against the
// real document length at resolution time. This is what makes an idiom like
// "99999-4" legal: at resolution the oversized range endpoint collapses to the
// document's last page, selecting the document backwards from the end down to
// page 4.
package pagespec

import (
	"fmt"
	"strconv"
	"strings"

	"ocrpipe/pkg/ocrtypes"
)

// token is one comma-separated element of a specification. isRange
// distinguishes "5-5" from "5": only range endpoints are clamped to the
// document length at resolution time.
type token struct {
	first   int
	last    int
	isRange bool
}

// Spec is a parsed page specification. The zero value is the "all pages"
// sentinel produced by parsing an empty string.
type Spec struct {
	tokens []token
}

// All reports whether the spec selects every page of the document in
// ascending order.
func (s Spec) All() bool {
	return len(s.tokens) == 0
}

// Parse parses a textual page specification. An empty (or blank) spec returns
// the "all pages" sentinel. Any malformed token or non-positive page number
// fails with ocrtypes.ErrInvalidPageSpec.
func Parse(spec string) (Spec, error) {
	if strings.TrimSpace(spec) == "" {
		return Spec{}, nil
	}

	var tokens []token
	for _, raw := range strings.Split(spec, ",") {
		tok, err := parseToken(strings.TrimSpace(raw))
		if err != nil {
			return Spec{}, err
		}
		tokens = append(tokens, tok)
	}

	return Spec{tokens: tokens}, nil
}

func parseToken(raw string) (token, error) {
	first, last, found := strings.Cut(raw, "-")
	if !found {
		n, err := parsePage(raw)
		if err != nil {
			return token{}, err
		}
		return token{first: n, last: n}, nil
	}

	a, err := parsePage(first)
	if err != nil {
		return token{}, err
	}
	b, err := parsePage(last)
	if err != nil {
		return token{}, err
	}
	return token{first: a, last: b, isRange: true}, nil
}

func parsePage(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", ocrtypes.ErrInvalidPageSpec, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: page numbers must be positive, got %d", ocrtypes.ErrInvalidPageSpec, n)
	}
	return n, nil
}

// Resolve expands the spec against the document's real page count into the
// concrete page sequence, in spec order, duplicates preserved.
//
// Range endpoints larger than pageCount collapse to pageCount before the
// range is expanded; a single page still outside [1, pageCount] is dropped
// silently rather than failing the job.
func (s Spec) Resolve(pageCount int) []int {
	if s.All() {
		pages := make([]int, 0, pageCount)
		for p := 1; p <= pageCount; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	var pages []int
	for _, tok := range s.tokens {
		if !tok.isRange {
			if tok.first >= 1 && tok.first <= pageCount {
				pages = append(pages, tok.first)
			}
			continue
		}

		first, last := tok.first, tok.last
		if first > pageCount {
			first = pageCount
		}
		if last > pageCount {
			last = pageCount
		}

		if first <= last {
			for p := first; p <= last; p++ {
				pages = append(pages, p)
			}
		} else {
			for p := first; p >= last; p-- {
				pages = append(pages, p)
			}
		}
	}

	return pages
}

// String renders the spec back into its textual form, mainly for logging.
func (s Spec) String() string {
	if s.All() {
		return "all"
	}

	parts := make([]string, 0, len(s.tokens))
	for _, tok := range s.tokens {
		if !tok.isRange {
			parts = append(parts, strconv.Itoa(tok.first))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", tok.first, tok.last))
		}
	}
	return strings.Join(parts, ",")
}
