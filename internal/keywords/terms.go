package keywords

// technicalTerms is the curated list surfaced ahead of everything else, in
// this order, when a job description mentions them.
var technicalTerms = []string{
	"javascript", "typescript", "python", "java", "c++", "c#", "go", "golang",
	"rust", "ruby", "php", "swift", "kotlin", "scala", "sql", "html", "css",
	"react", "angular", "vue", "node.js", "express", "django", "flask", "spring",
	"rails", "graphql", "rest", "aws", "azure", "gcp", "docker", "kubernetes",
	"terraform", "jenkins", "git", "linux", "postgresql", "mysql", "mongodb",
	"redis", "kafka", "elasticsearch",
}

var technicalIndex = func() map[string]int {
	idx := make(map[string]int, len(technicalTerms))
	for i, term := range technicalTerms {
		idx[term] = i
	}
	return idx
}()

// stopWords covers articles, prepositions, auxiliaries, pronouns and the
// filler that shows up in almost every job ad.
var stopWords = toSet(
	// articles, conjunctions
	"a", "an", "the", "and", "or", "but", "nor", "so", "yet", "both", "either", "neither",
	// prepositions
	"about", "above", "across", "after", "against", "along", "among", "around", "at",
	"before", "behind", "below", "beneath", "beside", "between", "beyond", "by", "down",
	"during", "except", "for", "from", "in", "inside", "into", "like", "near", "of", "off",
	"on", "onto", "out", "outside", "over", "past", "per", "since", "through", "throughout",
	"till", "to", "toward", "towards", "under", "until", "up", "upon", "via", "with",
	"within", "without",
	// auxiliaries and modals
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "will", "would", "shall", "should", "can",
	"could", "may", "might", "must", "ought",
	// pronouns and determiners
	"i", "me", "my", "we", "us", "our", "ours", "you", "your", "yours", "he", "him",
	"his", "she", "her", "it", "its", "they", "them", "their", "this", "that", "these",
	"those", "who", "whom", "whose", "which", "what", "all", "any", "each", "every",
	"some", "such", "other", "another", "more", "most", "many", "much", "few", "own",
	"same", "than", "too", "very", "also", "just", "only", "not", "no", "as", "if",
	"then", "when", "where", "while", "how", "why", "there", "here", "well",
	// job ad filler
	"looking", "seeking", "experience", "experienced", "years", "year", "plus",
	"required", "requirements", "preferred", "responsibilities", "role", "position",
	"candidate", "candidates", "ideal", "join", "team", "work", "working", "strong",
	"ability", "able", "skills", "knowledge", "understanding", "including", "etc",
	"job", "company", "opportunity", "must-have", "nice-to-have",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
