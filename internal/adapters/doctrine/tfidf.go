package doctrine

import (
	"math"
	"strings"
	"unicode"
)

// A small TF-IDF vectorizer backs the in-memory index. Any implementation of
// the search port is substitutable; this one keeps the service fully offline.

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// buildVectors turns per-chunk term frequencies into unit-length TF-IDF
// vectors and returns them with the document frequencies used.
func buildVectors(chunkTokens [][]string) ([]map[string]float64, map[string]float64) {
	n := len(chunkTokens)
	df := make(map[string]float64)
	tfs := make([]map[string]float64, n)
	for i, tokens := range chunkTokens {
		tf := termFrequencies(tokens)
		tfs[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(1+float64(n)/count) + 1
	}

	vectors := make([]map[string]float64, n)
	for i, tf := range tfs {
		vec := make(map[string]float64, len(tf))
		for term, count := range tf {
			vec[term] = count * idf[term]
		}
		normalize(vec)
		vectors[i] = vec
	}
	return vectors, idf
}

// queryVector weights query terms with the index's idf. Terms the corpus has
// never seen contribute nothing.
func queryVector(query string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64)
	for term, count := range termFrequencies(tokenize(query)) {
		if w, ok := idf[term]; ok {
			vec[term] = count * w
		}
	}
	normalize(vec)
	return vec
}

func normalize(vec map[string]float64) {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for term, w := range vec {
		vec[term] = w / norm
	}
}

// cosine is the dot product of two unit vectors; iterate the smaller one.
func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot
}
