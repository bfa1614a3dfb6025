package tfidx

// Text analysis for the optional ingestion adapter (TextIngestSource, see
// ingest.go). The core engine never tokenizes: documents arrive from a
// DocumentSource already split into words (spec's non-goal). This pipeline
// exists only for callers who have raw text and want a DocumentSource that
// produces the word lists the engine expects.
//
// Pipeline: tokenize -> lowercase -> stopword filter -> length filter -> stem.

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// AnalyzerConfig controls the ingestion tokenizer.
type AnalyzerConfig struct {
	MinTokenLength  int
	EnableStemming  bool
	EnableStopwords bool
}

// DefaultAnalyzerConfig returns the standard pipeline settings.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Analyze tokenizes raw text into the word list a DocumentSource should
// yield, using the default pipeline.
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultAnalyzerConfig())
}

// AnalyzeWithConfig tokenizes with a custom pipeline configuration.
func AnalyzeWithConfig(text string, config AnalyzerConfig) []string {
	tokens := tokenize(text)
	tokens = lowercaseFilter(tokens)

	if config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, config.MinTokenLength)

	if config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// tokenize splits on any rune that isn't a letter or digit, Unicode-aware.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces words to their Snowball (Porter2) root form, so
// "running" and "runs" index to the same term.
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

func isStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}

// englishStopwords are common English function words excluded from
// ingestion so they don't dilute posting lists with near-universal terms.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "across": {}, "after": {}, "afterwards": {},
	"again": {}, "against": {}, "all": {}, "almost": {}, "alone": {}, "along": {},
	"already": {}, "also": {}, "although": {}, "always": {}, "am": {}, "among": {},
	"amongst": {}, "amoungst": {}, "amount": {}, "an": {}, "and": {}, "another": {},
	"any": {}, "anyhow": {}, "anyone": {}, "anything": {}, "anyway": {}, "anywhere": {},
	"are": {}, "around": {}, "as": {}, "at": {}, "back": {}, "be": {}, "became": {},
	"because": {}, "become": {}, "becomes": {}, "becoming": {}, "been": {}, "before": {},
	"beforehand": {}, "behind": {}, "being": {}, "below": {}, "beside": {}, "besides": {},
	"between": {}, "beyond": {}, "bill": {}, "both": {}, "bottom": {}, "but": {}, "by": {},
	"call": {}, "can": {}, "cannot": {}, "cant": {}, "co": {}, "con": {}, "could": {},
	"couldnt": {}, "cry": {}, "de": {}, "describe": {}, "detail": {}, "do": {}, "done": {},
	"down": {}, "due": {}, "during": {}, "each": {}, "eg": {}, "eight": {}, "either": {},
	"eleven": {}, "else": {}, "elsewhere": {}, "empty": {}, "enough": {}, "etc": {},
	"even": {}, "ever": {}, "every": {}, "everyone": {}, "everything": {}, "everywhere": {},
	"except": {}, "few": {}, "fifteen": {}, "fify": {}, "fill": {}, "find": {}, "fire": {},
	"first": {}, "five": {}, "for": {}, "former": {}, "formerly": {}, "forty": {}, "found": {},
	"four": {}, "from": {}, "front": {}, "full": {}, "further": {}, "get": {}, "give": {},
	"go": {}, "had": {}, "has": {}, "hasnt": {}, "have": {}, "he": {}, "hence": {}, "her": {},
	"here": {}, "hereafter": {}, "hereby": {}, "herein": {}, "hereupon": {}, "hers": {},
	"herself": {}, "him": {}, "himself": {}, "his": {}, "how": {}, "however": {},
	"hundred": {}, "ie": {}, "if": {}, "in": {}, "inc": {}, "indeed": {}, "interest": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "itself": {}, "keep": {}, "last": {},
	"latter": {}, "latterly": {}, "least": {}, "less": {}, "ltd": {}, "made": {}, "many": {},
	"may": {}, "me": {}, "meanwhile": {}, "might": {}, "mill": {}, "mine": {}, "more": {},
	"moreover": {}, "most": {}, "mostly": {}, "move": {}, "much": {}, "must": {}, "my": {},
	"myself": {}, "name": {}, "namely": {}, "neither": {}, "never": {}, "nevertheless": {},
	"next": {}, "nine": {}, "no": {}, "nobody": {}, "none": {}, "noone": {}, "nor": {},
	"not": {}, "nothing": {}, "now": {}, "nowhere": {}, "of": {}, "off": {}, "often": {},
	"on": {}, "once": {}, "one": {}, "only": {}, "onto": {}, "or": {}, "other": {},
	"others": {}, "otherwise": {}, "our": {}, "ours": {}, "ourselves": {}, "out": {},
	"over": {}, "own": {}, "part": {}, "per": {}, "perhaps": {}, "please": {}, "put": {},
	"rather": {}, "re": {}, "same": {}, "see": {}, "seem": {}, "seemed": {}, "seeming": {},
	"seems": {}, "serious": {}, "several": {}, "she": {}, "should": {}, "show": {},
	"side": {}, "since": {}, "sincere": {}, "six": {}, "sixty": {}, "so": {}, "some": {},
	"somehow": {}, "someone": {}, "something": {}, "sometime": {}, "sometimes": {},
	"somewhere": {}, "still": {}, "such": {}, "system": {}, "take": {}, "ten": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "themselves": {}, "then": {},
	"thence": {}, "there": {}, "thereafter": {}, "thereby": {}, "therefore": {},
	"therein": {}, "thereupon": {}, "these": {}, "they": {}, "thickv": {}, "thin": {},
	"third": {}, "this": {}, "those": {}, "though": {}, "three": {}, "through": {},
	"throughout": {}, "thru": {}, "thus": {}, "to": {}, "together": {}, "too": {}, "top": {},
	"toward": {}, "towards": {}, "twelve": {}, "twenty": {}, "two": {}, "un": {}, "under": {},
	"until": {}, "up": {}, "upon": {}, "us": {}, "very": {}, "via": {}, "was": {}, "we": {},
	"well": {}, "were": {}, "what": {}, "whatever": {}, "when": {}, "whence": {},
	"whenever": {}, "where": {}, "whereafter": {}, "whereas": {}, "whereby": {},
	"wherein": {}, "whereupon": {}, "wherever": {}, "whether": {}, "which": {}, "while": {},
	"whither": {}, "who": {}, "whoever": {}, "whole": {}, "whom": {}, "whose": {}, "why": {},
	"will": {}, "with": {}, "within": {}, "without": {}, "would": {}, "yet": {}, "you": {},
	"your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}
