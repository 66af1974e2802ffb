package sentiment

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sets holds the positive and negative phrase lists the classifier is built
// from. The defaults below are data, not logic; a JSON file with the same
// shape can replace them at runtime.
type Sets struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// LoadSets reads phrase sets from a JSON file
func LoadSets(path string) (Sets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sets{}, fmt.Errorf("failed to read keyword sets: %w", err)
	}
	var sets Sets
	if err := json.Unmarshal(data, &sets); err != nil {
		return Sets{}, fmt.Errorf("failed to parse keyword sets: %w", err)
	}
	if len(sets.Positive) == 0 || len(sets.Negative) == 0 {
		return Sets{}, fmt.Errorf("keyword sets must contain positive and negative phrases")
	}
	return sets, nil
}

// DefaultSets returns the built-in phrase lists
func DefaultSets() Sets {
	return Sets{Positive: defaultPositive, Negative: defaultNegative}
}

var defaultPositive = []string{
	"should accumulate", "will accumlate", "im accumulating", "i adore",
	"advise buying", "this is affordable", "attractive", "awesome",
	"bargain", "beating", "big upside", "big news just", "i bought", "will bounce",
	"bouncing", "breaking out", "breakthrough", "bull", "bullish",
	"buy now", "buying", "is cheap", "will climb", "climbing", "confident",
	"discount", "discounted", "encouraged", "endorse", "exceed",
	"exceeded", "exceeding", "excellent results",
	"exceptional", "fabulous", "fantastic", "favor", "going up", "golden",
	"goldmine", "good buy", "good gains", "good investment", "good news",
	"good potential", "good profit", "good upside", "good value",
	"great buy", "great company", "great news", "great value",
	"has upside", "high potential", "increased my holding", "jackpot",
	"loaded", "loading", "load up", "looking forward", "looking good", "magnificent",
	"marvelous", "massive upside", "moon", "mooning", "moving up",
	"nice profit", "opportunity", "optimistic", "outperform",
	"outperformed", "outperforming", "outstanding", "perfect",
	"phenomenal", "positive", "positive news", "make profit",
	"promising", "purchased", "purchasing", "rallied", "rally", "rallying",
	"really like", "re-rating soon", "rebound", "rebounding", "recommend", "will recover",
	"is recovering", "rise to", "rise from", "rising", "robust", "rocket", "rocketing",
	"should buy", "will soar", "soaring", "steal", "strong",
	"be successful", "superb", "support", "surge", "surging", "terrific",
	"thrilled", "time to buy", "top", "topped", "topping", "underpriced",
	"undervalued", "upbeat", "very good", "very positive",
	"will break out", "will buy", "will go up", "will move up",
	"will rally", "winner",
}

var defaultNegative = []string{
	"abysmal", "alert", "anxious", "appalling", "atrocious", "avoid",
	"awful", "bad feeling", "bearish", "beware", "big drop", "big loss", "bleak",
	"blood bath", "bloodbath", "bubble", "careful", "carnage",
	"catastrophe", "catastrophic", "caution", "collapse", "collapsing",
	"concern", "concerned", "crash", "crashing", "danger", "dangerous",
	"dead money", "decline", "declining", "destruction", "devastating",
	"dire", "disappointing results", "disaster", "disastrous",
	"dive", "diving", "dont like", "down from here",
	"downside", "dreadful", "will drop", "dropping", "dump", "dumped",
	"dumping", "exit", "exited", "exiting", "expensive", "failing",
	"failure", "fall", "falling", "fearful", "fragile", "frothy",
	"going down", "going nowhere", "grim", "heavy loss", "inflated",
	"liquidate", "liquidated", "liquidating", "lose", "a loser", "losing",
	"loss", "losses", "manipulated", "manipulation", "massacre",
	"moving down", "negative", "nervous", "nightmare", "off the table",
	"overpriced", "overvalued", "pessimistic", "plunge", "plunging",
	"poor performance", "poor results", "precarious", "pricey", "promising to go",
	"pump and dump", "not recommend", "red", "refuse", "reject", "too rich", "risky",
	"ruin", "scam", "scared", "will sell", "selling", "shaky",
	"should sell", "slide", "sliding", "sold", "stay away", "take a hit",
	"take the hit", "tank", "tanking", "terrible news", "threat",
	"time to sell", "toxic", "bear trap", "trouble", "tumble", "tumbling",
	"unload", "unloaded", "unloading", "unstable", "vulnerable",
	"warning", "waste of", "watch out", "weak", "worried", "worry",
	"worthless", "wreck", "wrecked",
}
