package doctrine

import "strings"

// SplitText splits a document into overlapping chunks of roughly size bytes,
// preferring paragraph then line boundaries so requirements stay intact.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	for start := 0; start < len(text); {
		end := start + size
		if end >= len(text) {
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}
		// back up to the nearest paragraph or line break inside the window
		cut := end
		if idx := strings.LastIndex(text[start:end], "\n\n"); idx > 0 {
			cut = start + idx
		} else if idx := strings.LastIndex(text[start:end], "\n"); idx > 0 {
			cut = start + idx
		}
		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		next := cut - overlap
		if next <= start {
			next = cut + 1
		}
		start = next
	}
	return chunks
}
