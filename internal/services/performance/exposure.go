package performance

import (
	"strings"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// exposureBucket assigns symbols to a style/index bucket by exact ticker
// match or by keyword match against the security description.
type exposureBucket struct {
	Tag      string
	Label    string
	Tickers  []string
	Keywords []string
}

// exposureBuckets is evaluated in order; a symbol may land in several.
// Ticker lists cover the common US ETF/fund families; keywords catch the
// index funds the ticker lists miss.
var exposureBuckets = []exposureBucket{
	{
		Tag:      "sp500",
		Label:    "S&P 500 index",
		Tickers:  []string{"SPY", "VOO", "IVV", "SPLG", "FXAIX", "SWPPX", "VFIAX"},
		Keywords: []string{"S&P 500", "SP 500", "SP500"},
	},
	{
		Tag:      "us-total-market",
		Label:    "US total market",
		Tickers:  []string{"VTI", "ITOT", "SCHB", "FSKAX", "FZROX", "VTSAX", "SWTSX"},
		Keywords: []string{"TOTAL MARKET", "TOTAL STOCK"},
	},
	{
		Tag:      "nasdaq100",
		Label:    "Nasdaq-100",
		Tickers:  []string{"QQQ", "QQQM"},
		Keywords: []string{"NASDAQ-100", "NASDAQ 100"},
	},
	{
		Tag:      "dividend-income",
		Label:    "Dividend / income",
		Tickers:  []string{"SCHD", "VYM", "HDV", "DVY", "VIG", "SDY", "NOBL", "JEPI", "JEPQ"},
		Keywords: []string{"DIVIDEND"},
	},
	{
		Tag:      "us-bond",
		Label:    "US bonds",
		Tickers:  []string{"BND", "AGG", "BNDX", "TLT", "IEF", "SHY", "VBTLX", "FXNAX"},
		Keywords: []string{"BOND", "TREASURY", "FIXED INCOME"},
	},
	{
		Tag:      "international",
		Label:    "International equity",
		Tickers:  []string{"VXUS", "VEU", "IXUS", "VEA", "VWO", "IEMG", "EFA", "FTIHX"},
		Keywords: []string{"INTERNATIONAL", "EMERGING MARKET", "EX-US", "EX US"},
	},
	{
		Tag:      "real-estate",
		Label:    "Real estate / REIT",
		Tickers:  []string{"VNQ", "SCHH", "IYR", "O", "XLRE"},
		Keywords: []string{"REIT", "REAL ESTATE"},
	},
}

// exposureTags returns the bucket tags matching a symbol, in bucket order.
func exposureTags(symbol, description string) []string {
	desc := strings.ToUpper(description)
	var tags []string
	for _, b := range exposureBuckets {
		if b.matches(symbol, desc) {
			tags = append(tags, b.Tag)
		}
	}
	return tags
}

func (b exposureBucket) matches(symbol, upperDesc string) bool {
	for _, t := range b.Tickers {
		if symbol == t {
			return true
		}
	}
	if upperDesc == "" {
		return false
	}
	for _, k := range b.Keywords {
		if strings.Contains(upperDesc, k) {
			return true
		}
	}
	return false
}

// overlapGroups collects buckets holding two or more of the given symbols;
// each group flags potentially redundant exposure.
func overlapGroups(rows []models.SymbolMetrics) []models.OverlapGroup {
	var groups []models.OverlapGroup
	for _, b := range exposureBuckets {
		var members []string
		for _, r := range rows {
			for _, tag := range r.ExposureTags {
				if tag == b.Tag {
					members = append(members, r.Symbol)
					break
				}
			}
		}
		if len(members) >= 2 {
			groups = append(groups, models.OverlapGroup{Tag: b.Tag, Label: b.Label, Symbols: members})
		}
	}
	return groups
}
