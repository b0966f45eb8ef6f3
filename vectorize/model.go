package vectorize

// Model is a fitted vocabulary together with its idf table and the
// document-term matrix of the documents it was fitted on.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	matrix     []Vector
}

// Transform converts text into a unit vector over the model's vocabulary.
// Unknown terms are ignored; text with no known terms yields the zero vector.
func (m *Model) Transform(text string) Vector {
	counts := make(map[int]int)
	for _, term := range Tokenize(text) {
		if col, ok := m.vocabulary[term]; ok {
			counts[col]++
		}
	}
	return weigh(counts, m.idf)
}

// Matrix returns the document rows in fit order. Callers must not modify it.
func (m *Model) Matrix() []Vector {
	return m.matrix
}

// Row returns the vector of document i.
func (m *Model) Row(i int) (Vector, bool) {
	if i < 0 || i >= len(m.matrix) {
		return Vector{}, false
	}
	return m.matrix[i], true
}

// VocabularySize returns the number of terms in the vocabulary.
func (m *Model) VocabularySize() int {
	return len(m.terms)
}

// Shape returns the matrix dimensions as (documents, terms).
func (m *Model) Shape() (rows, cols int) {
	return len(m.matrix), len(m.terms)
}

// Column returns the column index of term.
func (m *Model) Column(term string) (int, bool) {
	col, ok := m.vocabulary[term]
	return col, ok
}

// Term returns the term at column col.
func (m *Model) Term(col int) (string, bool) {
	if col < 0 || col >= len(m.terms) {
		return "", false
	}
	return m.terms[col], true
}

// IDF returns the inverse document frequency of term.
func (m *Model) IDF(term string) (float64, bool) {
	col, ok := m.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.idf[col], true
}
