package chunk

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kailas-cloud/ragdex/internal/domain/document"
)

// DefaultMaxChars is the default maximum chunk size in characters.
const DefaultMaxChars = 1200

// DefaultMinChars is the default minimum chunk size in characters.
// A document shorter than this yields a single chunk.
const DefaultMinChars = 200

// DefaultOverlapSentences is the default trailing-sentence overlap carried
// into the next sub-chunk when a paragraph is split.
const DefaultOverlapSentences = 1

var paragraphSep = regexp.MustCompile(`\n[ \t]*\n`)

// Splitter splits document content into retrieval-sized chunks using a
// paragraph-first policy: paragraphs are chunk boundaries, and any paragraph
// exceeding the maximum size is further split on sentence boundaries with a
// trailing-sentence overlap.
type Splitter struct {
	maxChars         int
	minChars         int
	overlapSentences int
}

// Option configures the Splitter.
type Option func(*Splitter)

// WithMaxChars sets the maximum chunk size in characters.
func WithMaxChars(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithMinChars sets the minimum chunk size in characters.
func WithMinChars(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.minChars = n
		}
	}
}

// WithOverlapSentences sets the number of trailing sentences carried into the
// next sub-chunk when splitting an oversized paragraph.
func WithOverlapSentences(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlapSentences = n
		}
	}
}

// NewSplitter creates a Splitter with the given options.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		maxChars:         DefaultMaxChars,
		minChars:         DefaultMinChars,
		overlapSentences: DefaultOverlapSentences,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.minChars >= s.maxChars {
		s.minChars = s.maxChars / 4
	}
	return s
}

// Split chunks a document's content. An empty or whitespace-only document
// yields zero chunks; a document shorter than the minimum chunk size yields
// exactly one. Positions increase monotonically from 0.
func (s *Splitter) Split(doc document.Document) []Chunk {
	content := strings.TrimSpace(doc.Content())
	if content == "" {
		return nil
	}

	if len(content) < s.minChars {
		return []Chunk{Reconstruct(doc.ID(), content, 0)}
	}

	var chunks []Chunk
	position := 0
	for _, para := range paragraphSep.Split(content, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, text := range s.splitParagraph(para) {
			chunks = append(chunks, Reconstruct(doc.ID(), text, position))
			position++
		}
	}
	return chunks
}

// splitParagraph returns the paragraph whole when it fits, otherwise packs its
// sentences into sub-chunks up to maxChars, carrying the configured number of
// trailing sentences into the next sub-chunk.
func (s *Splitter) splitParagraph(para string) []string {
	if len(para) <= s.maxChars {
		return []string{para}
	}

	sentences := splitSentences(para)
	var parts []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts = append(parts, strings.Join(current, " "))

		overlap := s.overlapSentences
		if overlap > len(current) {
			overlap = len(current)
		}
		carried := current[len(current)-overlap:]
		current = append([]string(nil), carried...)
		currentLen = 0
		for _, sent := range current {
			currentLen += len(sent) + 1
		}
	}

	for _, sent := range sentences {
		// A single sentence longer than maxChars becomes its own chunk.
		if currentLen > 0 && currentLen+len(sent) > s.maxChars {
			flush()
			// Carried overlap alone may already exceed the budget.
			if currentLen+len(sent) > s.maxChars {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, sent)
		currentLen += len(sent) + 1
	}
	if len(current) > 0 {
		last := strings.Join(current, " ")
		// Avoid emitting a pure-overlap tail that is a suffix of the previous part.
		if len(parts) == 0 || !strings.HasSuffix(parts[len(parts)-1], last) {
			parts = append(parts, last)
		}
	}
	return parts
}

// splitSentences splits text on sentence-final punctuation followed by
// whitespace. Trailing text without a terminator forms the last sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			sent := strings.TrimSpace(string(runes[start : i+1]))
			if sent != "" {
				sentences = append(sentences, sent)
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		sent := strings.TrimSpace(string(runes[start:]))
		if sent != "" {
			sentences = append(sentences, sent)
		}
	}
	return sentences
}
