package chunker

import (
	"regexp"
	"strings"
)

// TextChunk is one retrievable unit of course material. Offsets are
// approximate character positions into the cleaned source text.
type TextChunk struct {
	Content     string
	Index       int
	StartOffset int
	EndOffset   int
}

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Split chunks text into pieces of at most maxSize characters with overlap
// carried between consecutive chunks. Paragraphs are packed greedily first;
// any chunk still over maxSize is re-split on sentence boundaries.
func Split(text string, maxSize int, overlap int) []TextChunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = 1000
	}

	var chunks []TextChunk

	paragraphs := splitParagraphs(text)

	var current strings.Builder
	currentStart := 0
	for _, para := range paragraphs {
		if current.Len() > 0 && current.Len()+len("\n\n")+len(para) > maxSize {
			content := current.String()
			endChar := currentStart + len(content)
			chunks = append(chunks, TextChunk{
				Content:     strings.TrimSpace(content),
				StartOffset: currentStart,
				EndOffset:   endChar,
			})

			// Seed the next chunk with the tail of this one so context
			// survives the boundary.
			current.Reset()
			if overlap > 0 && len(content) > overlap {
				current.WriteString(content[len(content)-overlap:])
				current.WriteString("\n\n")
				current.WriteString(para)
				currentStart = endChar - overlap
			} else {
				current.WriteString(para)
				currentStart = endChar
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}
	}

	if current.Len() > 0 {
		content := current.String()
		chunks = append(chunks, TextChunk{
			Content:     strings.TrimSpace(content),
			StartOffset: currentStart,
			EndOffset:   currentStart + len(content),
		})
	}

	// Paragraph packing can still leave an oversized chunk when a single
	// paragraph exceeds maxSize. Re-split those on sentence boundaries.
	var final []TextChunk
	for _, chunk := range chunks {
		if len(chunk.Content) <= maxSize {
			final = append(final, chunk)
			continue
		}

		sentences := splitSentences(chunk.Content)
		var sub strings.Builder
		subStart := chunk.StartOffset
		for _, sentence := range sentences {
			if sub.Len() > 0 && sub.Len()+1+len(sentence) > maxSize {
				content := sub.String()
				final = append(final, TextChunk{
					Content:     strings.TrimSpace(content),
					StartOffset: subStart,
					EndOffset:   subStart + len(content),
				})
				subStart += len(content)
				sub.Reset()
				sub.WriteString(sentence)
			} else {
				if sub.Len() > 0 {
					sub.WriteString(" ")
				}
				sub.WriteString(sentence)
			}
		}
		if sub.Len() > 0 {
			content := sub.String()
			final = append(final, TextChunk{
				Content:     strings.TrimSpace(content),
				StartOffset: subStart,
				EndOffset:   subStart + len(content),
			})
		}
	}

	for i := range final {
		final[i].Index = i
	}
	return final
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitSentences splits on terminal punctuation followed by whitespace,
// keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	matches := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var sentences []string
	prev := 0
	for _, m := range matches {
		// m[0] is the punctuation char, keep it with the sentence
		sentences = append(sentences, strings.TrimSpace(text[prev:m[0]+1]))
		prev = m[1]
	}
	if prev < len(text) {
		tail := strings.TrimSpace(text[prev:])
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}
