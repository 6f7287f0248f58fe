package docdex

import (
	"regexp"
	"strings"
)

// ChunkOptions configures semantic chunking. Sizes are in tokens.
type ChunkOptions struct {
	// TargetSize is the preferred chunk size.
	TargetSize int

	// MaxSize is the hard upper bound; sections above it are split at
	// paragraph boundaries.
	MaxSize int

	// MinSize is the lower bound; sections below it are dropped as too
	// small to be useful standalone.
	MinSize int
}

// DefaultChunkOptions returns the standard chunk sizing.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{TargetSize: 500, MaxSize: 1000, MinSize: 100}
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	def := DefaultChunkOptions()
	if o.TargetSize <= 0 {
		o.TargetSize = def.TargetSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = def.MaxSize
	}
	if o.MinSize <= 0 {
		o.MinSize = def.MinSize
	}
	return o
}

var headerRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// header is a markdown heading with its character offset in the document.
type header struct {
	level  int
	text   string
	offset int
	end    int // offset just past the heading line
}

// section is a contiguous span of document content under one heading path.
type section struct {
	path []string // heading path, outermost to innermost
	body string   // content between this header and the next header
}

// ChunkDocument splits a clean document into retrieval-sized chunks along its
// heading structure.
//
// Sections are delimited by markdown headers; each section carries the full
// heading path (outermost to innermost) active at its location. Sections
// under MinSize tokens are dropped; sections over MaxSize are split at
// paragraph boundaries, each split carrying the original section's path. A
// document without headers is one section with an empty path. Positions are
// zero-based and monotonically increasing per document.
//
// Fenced code blocks are opaque: # lines inside them are not headers, and
// paragraph splitting never breaks a fence apart.
func ChunkDocument(doc *CleanDocument, opts ChunkOptions) []DocumentChunk {
	opts = opts.withDefaults()

	sections := splitSections(doc.Content)

	var chunks []DocumentChunk
	position := 0
	emit := func(path []string, body string) {
		content := cleanChunkContent(body)
		chunks = append(chunks, DocumentChunk{
			ID:         ChunkID(doc.Meta.Service, doc.Meta.ID, position),
			Content:    content,
			Service:    doc.Meta.Service,
			PageID:     doc.Meta.ID,
			Headers:    path,
			URL:        doc.Meta.URL,
			Position:   position,
			TokenCount: CountTokens(content),
		})
		position++
	}

	for _, sec := range sections {
		tokens := CountTokens(sec.body)
		if tokens < opts.MinSize {
			continue
		}
		if tokens <= opts.MaxSize {
			emit(sec.path, sec.body)
			continue
		}
		for _, part := range splitByParagraphs(sec.body, opts.MaxSize, opts.MinSize) {
			emit(sec.path, part)
		}
	}
	return chunks
}

// splitSections parses headers and builds sections with full heading paths.
// A section's body is everything between its header and the next header at
// any level, or the document end.
func splitSections(content string) []section {
	headers := extractHeaders(content)
	if len(headers) == 0 {
		return []section{{body: content}}
	}

	var sections []section

	// Content before the first header belongs to an implicit preamble
	// section with an empty path.
	if preamble := content[:headers[0].offset]; strings.TrimSpace(preamble) != "" {
		sections = append(sections, section{body: preamble})
	}

	// Stack of active headers, outermost at the bottom. A new header pops
	// entries until the stack top has strictly lower level.
	var stack []header
	for i, h := range headers {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, h)

		path := make([]string, len(stack))
		for j, sh := range stack {
			path[j] = sh.text
		}

		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1].offset
		}
		sections = append(sections, section{
			path: path,
			body: content[h.end:end],
		})
	}
	return sections
}

// fenceDelim reports whether a line is a code fence delimiter and returns
// its marker.
func fenceDelim(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```", true
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~", true
	}
	return "", false
}

// extractHeaders returns all markdown headers with their offsets. Lines
// inside fenced code blocks are never headers, so shell comments in code
// samples don't masquerade as headings.
func extractHeaders(content string) []header {
	var headers []header
	fence := ""
	for start := 0; start < len(content); {
		lineEnd := len(content)
		next := len(content)
		if i := strings.IndexByte(content[start:], '\n'); i >= 0 {
			lineEnd = start + i
			next = lineEnd + 1
		}
		line := content[start:lineEnd]

		if marker, ok := fenceDelim(line); ok {
			if fence == "" {
				fence = marker
			} else if marker == fence {
				fence = ""
			}
		} else if fence == "" {
			if m := headerRe.FindStringSubmatch(line); m != nil {
				headers = append(headers, header{
					level:  len(m[1]),
					text:   strings.TrimSpace(m[2]),
					offset: start,
					end:    lineEnd,
				})
			}
		}
		start = next
	}
	return headers
}

// splitByParagraphs splits an oversized section body at paragraph boundaries.
// Paragraphs accumulate into a buffer; when adding the next paragraph would
// exceed maxSize and the buffer is non-empty, the buffer is emitted and a new
// one starts with that paragraph. The final buffer is emitted only if it
// reaches minSize.
func splitByParagraphs(body string, maxSize, minSize int) []string {
	paragraphs := splitParagraphs(body)

	var parts []string
	var buf []string
	bufTokens := 0

	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		tokens := CountTokens(p)
		if bufTokens+tokens > maxSize && len(buf) > 0 {
			parts = append(parts, strings.Join(buf, "\n\n"))
			buf = buf[:0]
			bufTokens = 0
		}
		buf = append(buf, p)
		bufTokens += tokens
	}
	if len(buf) > 0 && bufTokens >= minSize {
		parts = append(parts, strings.Join(buf, "\n\n"))
	}
	return parts
}

// splitParagraphs splits body at blank lines, treating fenced code blocks as
// a single paragraph so a split can never land mid-fence.
func splitParagraphs(body string) []string {
	var paragraphs []string
	var cur []string
	fence := ""
	flush := func() {
		if len(cur) > 0 {
			paragraphs = append(paragraphs, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if marker, ok := fenceDelim(line); ok {
			if fence == "" {
				fence = marker
			} else if marker == fence {
				fence = ""
			}
			cur = append(cur, line)
			continue
		}
		if fence == "" && strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return paragraphs
}

// cleanChunkContent strips trailing whitespace from each line and trims the
// surrounding blank space. Content is otherwise preserved as-is.
func cleanChunkContent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
