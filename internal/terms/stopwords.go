package terms

// stopwords is the fixed English stopword list used for term-frequency
// ranking. Held invariant so that tag and theme output is reproducible.
var stopwords = func() map[string]struct{} {
	words := []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can",
		"had", "her", "his", "him", "how", "its", "may", "new", "now",
		"old", "one", "our", "out", "see", "she", "two", "was", "way",
		"who", "with", "this", "that", "these", "those", "from", "have",
		"has", "been", "being", "will", "would", "could", "should",
		"there", "their", "them", "they", "then", "than", "what", "when",
		"where", "which", "while", "your", "about", "into", "over",
		"under", "after", "before", "between", "through", "during",
		"again", "also", "just", "very", "more", "most", "some", "such",
		"only", "other", "same", "each", "because", "does", "doing",
		"did", "don", "down", "off", "own", "too", "use", "get", "put",
		"any", "were", "why", "here", "both", "few",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
