package summarize

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bbalet/stopwords"
)

const (
	defaultRatio = 0.3
	damping      = 0.85
	rankEpsilon  = 1e-6
	rankMaxIter  = 100
)

// Rank is a TextRank summary: sentences are graph nodes, edges are TF-IDF
// cosine similarity, and the top ratio of sentences by score is kept in
// document order.
type Rank struct {
	ratio float64
}

// NewRank returns a Rank summarizer; a ratio outside (0, 1] uses 0.3.
func NewRank(ratio float64) *Rank {
	if ratio <= 0 || ratio > 1 {
		ratio = defaultRatio
	}
	return &Rank{ratio: ratio}
}

func (r *Rank) Summarize(_ context.Context, text string) (string, error) {
	if len(strings.Split(text, ".")) < 3 {
		return TooShort, nil
	}
	sents := sentences(text)
	keep := int(float64(len(sents)) * r.ratio)
	if keep == 0 {
		return NoSentences, nil
	}

	vecs := make([]map[string]float64, len(sents))
	for i, s := range sents {
		vecs[i] = termCounts(s)
	}
	weightTFIDF(vecs)
	scores := textRank(vecs)

	order := make([]int, len(sents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	chosen := order[:keep]
	sort.Ints(chosen)

	out := make([]string, len(chosen))
	for i, idx := range chosen {
		out[i] = sents[idx]
	}
	return strings.Join(out, "\n"), nil
}

func termCounts(sentence string) map[string]float64 {
	cleaned := stopwords.CleanString(strings.ToLower(sentence), "en", false)
	tf := make(map[string]float64)
	words := strings.Fields(cleaned)
	for _, w := range words {
		tf[w]++
	}
	for w := range tf {
		tf[w] /= float64(len(words))
	}
	return tf
}

// weightTFIDF scales each term frequency by its smoothed inverse document
// frequency across the sentence set.
func weightTFIDF(vecs []map[string]float64) {
	df := make(map[string]int)
	for _, v := range vecs {
		for term := range v {
			df[term]++
		}
	}
	n := float64(len(vecs))
	for _, v := range vecs {
		for term := range v {
			v[term] *= math.Log((1+n)/(1+float64(df[term]))) + 1
		}
	}
}

func cosine(a, b map[string]float64) float64 {
	var dot, ma, mb float64
	for term, x := range a {
		if y, ok := b[term]; ok {
			dot += x * y
		}
		ma += x * x
	}
	for _, y := range b {
		mb += y * y
	}
	if ma == 0 || mb == 0 {
		return 0
	}
	return dot / (math.Sqrt(ma) * math.Sqrt(mb))
}

// textRank runs weighted PageRank over the sentence similarity graph.
func textRank(vecs []map[string]float64) []float64 {
	n := len(vecs)
	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := cosine(vecs[i], vecs[j])
			weights[i][j], weights[j][i] = w, w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)
	for iter := 0; iter < rankMaxIter; iter++ {
		var delta float64
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				if weights[j][i] > 0 && outSum[j] > 0 {
					sum += weights[j][i] / outSum[j] * scores[j]
				}
			}
			next[i] = (1-damping)/float64(n) + damping*sum
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if delta < rankEpsilon {
			break
		}
	}
	return scores
}
