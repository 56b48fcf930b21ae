// Package topics guesses the condition a case sheet is about with latent
// semantic analysis over its lines.
package topics

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/bbalet/stopwords"
	"gonum.org/v1/gonum/mat"

	"github.com/dgallion1/casesheet/internal/casesheet"
)

const (
	components   = 2
	termsPerComp = 5
	labelTerms   = 3
	evidenceMax  = 3
)

var tokenRe = regexp.MustCompile(`\w\w+`)

// Extract treats each line of text as a document, builds a TF-IDF matrix,
// and reads the strongest terms off the leading singular vectors.
func Extract(text string) casesheet.Condition {
	lines := strings.Split(text, "\n")
	docs := make([][]string, len(lines))
	for i, line := range lines {
		docs[i] = tokenize(line)
	}

	vocab := vocabulary(docs)
	if len(vocab) == 0 {
		return casesheet.Condition{Label: casesheet.NoCondition}
	}

	x := tfidf(docs, vocab)
	terms := topTerms(x, vocab)
	if len(terms) == 0 {
		return casesheet.Condition{Label: casesheet.NoCondition}
	}

	cond := casesheet.Condition{Keywords: dedupe(terms)}
	label := terms
	if len(label) > labelTerms {
		label = label[:labelTerms]
	}
	cond.Label = strings.Join(label, " ")

	for _, line := range lines {
		if containsAny(strings.ToLower(line), terms) {
			cond.Evidence = append(cond.Evidence, line)
			if len(cond.Evidence) == evidenceMax {
				break
			}
		}
	}
	return cond
}

func tokenize(line string) []string {
	cleaned := stopwords.CleanString(strings.ToLower(line), "en", false)
	return tokenRe.FindAllString(cleaned, -1)
}

// vocabulary returns the sorted distinct terms with their column index.
func vocabulary(docs [][]string) map[string]int {
	seen := make(map[string]bool)
	for _, d := range docs {
		for _, t := range d {
			seen[t] = true
		}
	}
	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// tfidf builds raw-count TF times smoothed IDF with L2-normalized rows.
func tfidf(docs [][]string, vocab map[string]int) *mat.Dense {
	rows, cols := len(docs), len(vocab)
	x := mat.NewDense(rows, cols, nil)
	df := make([]float64, cols)
	for i, d := range docs {
		for _, t := range d {
			j := vocab[t]
			if x.At(i, j) == 0 {
				df[j]++
			}
			x.Set(i, j, x.At(i, j)+1)
		}
	}

	n := float64(rows)
	for i := 0; i < rows; i++ {
		var norm float64
		for j := 0; j < cols; j++ {
			v := x.At(i, j) * (math.Log((1+n)/(1+df[j])) + 1)
			x.Set(i, j, v)
			norm += v * v
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for j := 0; j < cols; j++ {
			x.Set(i, j, x.At(i, j)/norm)
		}
	}
	return x
}

// topTerms factorizes x and collects the top terms of each component in
// component order.
func topTerms(x *mat.Dense, vocab map[string]int) []string {
	names := make([]string, len(vocab))
	for t, i := range vocab {
		names[i] = t
	}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil
	}
	var v mat.Dense
	svd.VTo(&v)

	_, avail := v.Dims()
	k := min(components, avail)
	var out []string
	for c := 0; c < k; c++ {
		comp := mat.Col(nil, c, &v)
		flipSign(comp)
		for _, idx := range argsortDesc(comp, termsPerComp) {
			out = append(out, names[idx])
		}
	}
	return out
}

// flipSign makes the largest-magnitude entry positive so component
// direction is deterministic.
func flipSign(comp []float64) {
	var best float64
	for _, v := range comp {
		if math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	if best < 0 {
		for i := range comp {
			comp[i] = -comp[i]
		}
	}
}

// argsortDesc returns the indices of the n largest values, largest first.
func argsortDesc(vals []float64, n int) []int {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if vals[idx[a]] != vals[idx[b]] {
			return vals[idx[a]] > vals[idx[b]]
		}
		return idx[a] > idx[b]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
