package sentiment

// Financial news polarity lexicon. Counts of these terms in a headline give
// the polarity estimate; the lists are deliberately short and biased toward
// the vocabulary of market headlines.

var positiveWords = []string{
	"surge", "rally", "gain", "profit", "growth", "bullish", "upgrade",
	"beat", "beats", "exceed", "strong", "positive", "outperform",
	"record", "soar", "boost", "improve", "success", "optimistic",
	"jump", "rise", "rises", "climb", "win", "expand", "breakthrough",
}

var negativeWords = []string{
	"fall", "falls", "drop", "drops", "decline", "loss", "losses",
	"bearish", "downgrade", "miss", "misses", "weak", "negative",
	"underperform", "concern", "cut", "cuts", "reduce", "warning",
	"risk", "pessimistic", "plunge", "slump", "crash", "lawsuit",
	"recall", "probe", "layoff", "layoffs", "fraud",
}
