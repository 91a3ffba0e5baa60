// Package simhash detects a listing page that did not actually change
// after a pagination advance: two captures of the same rows hash to the
// same (or a near-identical) fingerprint even when ids and styling churn
// between renders.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"

	"golang.org/x/net/html"
)

// FingerprintFragment computes a 64-bit SimHash of the visible text
// inside an HTML fragment, ignoring tags and attributes. Word triples
// are the hashed tokens, so the fingerprint is sensitive to row order
// as well as content; fragments with fewer than three words fall back
// to hashing the words themselves.
func FingerprintFragment(fragment string) uint64 {
	words := extractText(fragment)
	shingles := makeShingles(words, 3)
	if len(shingles) == 0 {
		return fingerprint(words)
	}
	return fingerprint(shingles)
}

// extractText walks the fragment with the tokenizer and collects text
// tokens, split into words, in document order.
func extractText(fragment string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var words []string

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return words
		case html.TextToken:
			words = append(words, strings.Fields(string(tokenizer.Text()))...)
		}
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}

// fingerprint computes the SimHash of a token sequence: FNV-64a per
// token with bit-vector accumulation. An empty sequence hashes to 0,
// which callers treat as "no fingerprint".
func fingerprint(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int

	for _, token := range tokens {
		h := fnv.New64a()
		h.Write([]byte(token))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}

	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
