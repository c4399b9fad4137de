package encoder

// stopwords are dropped during tokenization: English function words plus
// filler terms that appear in almost every POI description and carry no
// retrieval signal.
var stopwords = map[string]struct{}{
	// articles
	"a": {}, "an": {}, "the": {},
	// prepositions
	"in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "to": {},
	"from": {}, "of": {}, "by": {}, "as": {}, "into": {}, "through": {},
	"during": {}, "before": {}, "after": {}, "above": {}, "below": {},
	"between": {}, "under": {}, "over": {}, "out": {}, "off": {},
	"down": {}, "up": {},
	// conjunctions
	"and": {}, "or": {}, "but": {}, "nor": {}, "so": {}, "yet": {},
	"both": {}, "either": {}, "neither": {},
	// pronouns
	"i": {}, "me": {}, "my": {}, "myself": {}, "we": {}, "our": {},
	"ours": {}, "ourselves": {}, "you": {}, "your": {}, "yours": {},
	"yourself": {}, "yourselves": {}, "he": {}, "him": {}, "his": {},
	"himself": {}, "she": {}, "her": {}, "hers": {}, "herself": {},
	"it": {}, "its": {}, "itself": {}, "they": {}, "them": {},
	"their": {}, "theirs": {}, "themselves": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "who": {}, "whom": {}, "which": {},
	"what": {},
	// auxiliaries and forms of be
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "has": {}, "have": {}, "had": {}, "having": {},
	"do": {}, "does": {}, "did": {}, "doing": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"must": {}, "can": {},
	// other common words
	"not": {}, "no": {}, "yes": {}, "all": {}, "any": {}, "some": {},
	"each": {}, "every": {}, "more": {}, "most": {}, "other": {},
	"another": {}, "such": {}, "own": {}, "same": {}, "than": {},
	"too": {}, "very": {}, "just": {}, "also": {}, "now": {},
	"here": {}, "there": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "if": {}, "then": {}, "else": {}, "because": {},
	"about": {}, "against": {}, "while": {}, "although": {},
	"though": {}, "unless": {}, "until": {}, "only": {}, "again": {},
	"further": {}, "once": {}, "already": {}, "always": {}, "never": {},
	// travel-domain fillers
	"place": {}, "located": {}, "offers": {}, "features": {},
	"provides": {}, "known": {},
}
