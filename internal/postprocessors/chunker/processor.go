// Package chunker splits document content into semantically coherent
// chunks suitable for embedding.
//
// Splitting is boundary-driven: heading boundaries first, then blank-line
// paragraphs, then sentence boundaries for units that exceed the size
// budget. Chunk order and byte ranges are deterministic for identical
// input, so unchanged content reproduces identical chunk IDs across
// rebuilds.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

// DefaultMaxChars is the default chunk size budget in bytes.
const DefaultMaxChars = 1200

// DefaultMinChars is the default minimum cleaned-text length; shorter
// units carry too little meaning to embed.
const DefaultMinChars = 50

var (
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6}\s`)
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n+`)
	sentenceEnd      = regexp.MustCompile(`[.!?][)"']?(\s|$)`)
)

// Processor splits document content into chunks.
type Processor struct {
	maxChars int
	minChars int
	clean    func(string) string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the chunk size budget in bytes.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// WithMinChars sets the minimum cleaned-text length for a chunk.
func WithMinChars(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minChars = n
		}
	}
}

// WithCleaner sets a text cleaner applied to each chunk's text after
// boundary detection. Byte ranges always refer to the original content.
func WithCleaner(clean func(string) string) Option {
	return func(p *Processor) {
		if clean != nil {
			p.clean = clean
		}
	}
}

// New creates a chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars: DefaultMaxChars,
		minChars: DefaultMinChars,
		clean:    func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Chunk splits a document into ordered chunks. Blank documents produce
// no chunks; degenerate non-blank input (a single long line with no
// punctuation) still produces at least one chunk truncated to the budget.
func (p *Processor) Chunk(doc domain.Document) []domain.Chunk {
	content := doc.Content
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []domain.Chunk
	for _, span := range p.spans(content) {
		text := strings.TrimSpace(p.clean(content[span[0]:span[1]]))
		if len(text) < p.minChars {
			continue
		}
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:    domain.ChunkID(doc.Path, idx),
			Path:  doc.Path,
			Index: idx,
			Text:  text,
			Start: span[0],
			End:   span[1],
		})
	}

	// Every non-blank document yields at least one chunk, even when all
	// units fall below the minimum length.
	if len(chunks) == 0 {
		end := truncateAt(content, p.maxChars)
		text := strings.TrimSpace(p.clean(content[:end]))
		chunks = append(chunks, domain.Chunk{
			ID:    domain.ChunkID(doc.Path, 0),
			Path:  doc.Path,
			Index: 0,
			Text:  text,
			Start: 0,
			End:   end,
		})
	}

	return chunks
}

// spans computes the ordered byte ranges of all chunks.
func (p *Processor) spans(content string) [][2]int {
	var out [][2]int
	for _, section := range splitAtStarts(content, headingStarts(content)) {
		for _, para := range splitAtSeparators(content, section, blankLinePattern) {
			out = append(out, p.fitToBudget(content, para)...)
		}
	}
	return out
}

// headingStarts returns the byte offsets of markdown heading lines.
func headingStarts(content string) []int {
	matches := headingPattern.FindAllStringIndex(content, -1)
	starts := make([]int, 0, len(matches))
	for _, m := range matches {
		starts = append(starts, m[0])
	}
	return starts
}

// splitAtStarts partitions [0, len(content)) at the given sorted offsets.
func splitAtStarts(content string, starts []int) [][2]int {
	if len(starts) == 0 || starts[0] != 0 {
		starts = append([]int{0}, starts...)
	}
	var spans [][2]int
	for i, start := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if start < end {
			spans = append(spans, [2]int{start, end})
		}
	}
	return spans
}

// splitAtSeparators splits a span at separator matches, dropping the
// separators themselves.
func splitAtSeparators(content string, span [2]int, sep *regexp.Regexp) [][2]int {
	section := content[span[0]:span[1]]
	seps := sep.FindAllStringIndex(section, -1)

	var spans [][2]int
	prev := 0
	for _, m := range seps {
		if prev < m[0] {
			spans = append(spans, [2]int{span[0] + prev, span[0] + m[0]})
		}
		prev = m[1]
	}
	if prev < len(section) {
		spans = append(spans, [2]int{span[0] + prev, span[1]})
	}
	return spans
}

// fitToBudget re-splits an oversized span at sentence boundaries,
// preserving order. A sentence that alone exceeds the budget is
// hard-split at the nearest rune boundary.
func (p *Processor) fitToBudget(content string, span [2]int) [][2]int {
	if span[1]-span[0] <= p.maxChars {
		return [][2]int{span}
	}

	var spans [][2]int
	start := span[0]
	for start < span[1] {
		remaining := content[start:span[1]]
		if len(remaining) <= p.maxChars {
			spans = append(spans, [2]int{start, span[1]})
			break
		}

		// Last sentence boundary within the budget.
		cut := 0
		for _, m := range sentenceEnd.FindAllStringIndex(remaining[:p.maxChars], -1) {
			cut = m[1]
		}
		if cut == 0 {
			cut = truncateAt(remaining, p.maxChars)
		}
		spans = append(spans, [2]int{start, start + cut})
		start += cut
	}
	return spans
}

// truncateAt returns the largest offset <= max that does not split a
// UTF-8 sequence.
func truncateAt(s string, max int) int {
	if len(s) <= max {
		return len(s)
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}
