package textsplitter

import (
	"strings"
)

const (
	// DefaultWindowSize and DefaultWindowOverlap give ~1000-character
	// windows with ~200-character overlap between neighbors.
	DefaultWindowSize    = 1000
	DefaultWindowOverlap = 200

	// DefaultSentenceTerminalRegex matches a run of non-terminal
	// characters followed by one sentence-terminal punctuation mark, the
	// third priority separator tried after paragraph and line breaks.
	DefaultSentenceTerminalRegex = `[^.!?]+[.!?]+|[^.!?]+$`
)

// windowSplit holds intermediate split information, mirroring the
// teacher's SentenceSplitter's internal textSplit.
type windowSplit struct {
	text      string
	isWhole   bool
	charSize  int
}

// WindowSplitter is a recursive splitter with priority separators
// (paragraph break, line break, sentence-terminal punctuation, space)
// that targets windows of a fixed character length with overlap between
// neighbors. It reuses a split/merge/postprocess recursive-splitting
// algorithm, counting characters instead of model tokens.
type WindowSplitter struct {
	WindowSize    int
	WindowOverlap int
	Tokenizer     Tokenizer

	splitFns    []func(string) []string
	fallbackFns []func(string) []string
}

// NewWindowSplitter creates a WindowSplitter. Pass 0 to use the default
// window size / overlap.
func NewWindowSplitter(windowSize, windowOverlap int) *WindowSplitter {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if windowOverlap <= 0 {
		windowOverlap = DefaultWindowOverlap
	}

	s := &WindowSplitter{
		WindowSize:    windowSize,
		WindowOverlap: windowOverlap,
		Tokenizer:     NewCharacterTokenizer(),
	}

	s.splitFns = []func(string) []string{
		SplitBySep("\n\n"),                         // paragraph break
		SplitBySep("\n"),                           // line break
		SplitByRegex(DefaultSentenceTerminalRegex),  // sentence-terminal punctuation
		SplitBySep(" "),                             // space
	}
	s.fallbackFns = []func(string) []string{
		SplitBySep(" "),
		SplitByChar(),
	}

	return s
}

// SplitText splits text into overlapping windows. Windows are never empty.
func (s *WindowSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	splits := s.split(text, s.WindowSize)
	windows := s.merge(splits, s.WindowSize)
	return s.postprocess(windows)
}

func (s *WindowSplitter) split(text string, size int) []windowSplit {
	charSize := s.size(text)
	if charSize <= size {
		return []windowSplit{{text: text, isWhole: true, charSize: charSize}}
	}

	parts, fromWhole := s.splitByFns(text)
	var out []windowSplit
	for _, part := range parts {
		partSize := s.size(part)
		if partSize <= size {
			out = append(out, windowSplit{text: part, isWhole: fromWhole, charSize: partSize})
		} else {
			out = append(out, s.split(part, size)...)
		}
	}
	return out
}

func (s *WindowSplitter) splitByFns(text string) ([]string, bool) {
	for _, fn := range s.splitFns {
		parts := fn(text)
		if len(parts) > 1 {
			return parts, true
		}
	}
	for _, fn := range s.fallbackFns {
		parts := fn(text)
		if len(parts) > 1 {
			return parts, false
		}
	}
	return []string{text}, false
}

func (s *WindowSplitter) merge(splits []windowSplit, size int) []string {
	type bufItem struct {
		text string
		size int
	}

	var windows []string
	var cur []bufItem
	var prev []bufItem
	curSize := 0
	isNew := true

	closeWindow := func() {
		var sb strings.Builder
		for _, item := range cur {
			sb.WriteString(item.text)
		}
		windows = append(windows, sb.String())

		prev = cur
		cur = nil
		curSize = 0
		isNew = true

		for i := len(prev) - 1; i >= 0; i-- {
			item := prev[i]
			if curSize+item.size > s.WindowOverlap {
				break
			}
			curSize += item.size
			cur = append([]bufItem{item}, cur...)
		}
	}

	i := 0
	for i < len(splits) {
		split := splits[i]
		if curSize+split.charSize > size && !isNew {
			closeWindow()
			continue
		}
		if split.isWhole || curSize+split.charSize <= size || isNew {
			curSize += split.charSize
			cur = append(cur, bufItem{text: split.text, size: split.charSize})
			i++
			isNew = false
		} else {
			closeWindow()
		}
	}

	if !isNew {
		var sb strings.Builder
		for _, item := range cur {
			sb.WriteString(item.text)
		}
		windows = append(windows, sb.String())
	}

	return windows
}

func (s *WindowSplitter) postprocess(windows []string) []string {
	var out []string
	for _, w := range windows {
		trimmed := strings.TrimSpace(w)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func (s *WindowSplitter) size(text string) int {
	return len(s.Tokenizer.Encode(text))
}
