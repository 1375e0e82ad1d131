// Package ledger builds reconciled per-security cash-flow ledgers from raw
// brokerage export rows.
package ledger

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// Logical field aliases, evaluated in priority order. Exporters disagree on
// column naming; the first alias present in a row wins.
var (
	dateAliases     = []string{"Run Date", "Date", "Trade Date", "Transaction Date", "Settlement Date"}
	actionAliases   = []string{"Action", "Transaction Type", "Type", "Activity"}
	symbolAliases   = []string{"Symbol", "Ticker", "Security ID"}
	descAliases     = []string{"Description", "Security Description", "Security Name", "Name"}
	quantityAliases = []string{"Quantity", "Shares", "Qty", "Units"}
	amountAliases   = []string{"Amount ($)", "Amount", "Net Amount", "Net Amount ($)", "Value"}
	costAliases     = []string{"Cost Basis Total", "Cost Basis", "Total Cost Basis", "Cost"}
)

// Action classification patterns, checked in priority order:
// dividend > reinvest > sell > buy. Unmatched rows are dropped from ledger
// building. The patterns are keyword heuristics over free-form action text;
// unusual exports can misclassify, which is accepted documented behavior.
var actionClasses = []struct {
	action models.EventAction
	re     *regexp.Regexp
}{
	{models.ActionDividend, regexp.MustCompile(`(?i)dividend\s+received|\bdividends?\b`)},
	{models.ActionReinvest, regexp.MustCompile(`(?i)reinvest`)},
	{models.ActionSell, regexp.MustCompile(`(?i)you\s+sold|\bsold\b|\bsell\b|\bsale\b`)},
	{models.ActionBuy, regexp.MustCompile(`(?i)you\s+bought|\bbought\b|\bbuy\b|\bpurchased?\b`)},
}

// Money-market and sweep tickers excluded from security-level accounting.
var cashTickers = map[string]bool{
	"SPAXX":            true,
	"FDRXX":            true,
	"VMFXX":            true,
	"SWVXX":            true,
	"SPRXX":            true,
	"SNVXX":            true,
	"FCASH":            true,
	"PENDING":          true,
	"PENDING ACTIVITY": true,
	"CASH":             true,
}

var (
	// A ticker-like token: uppercase, short, optional class suffix.
	reTickerToken = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}(?:[.\-][A-Z0-9]{1,3})?$`)
	reParenTicker = regexp.MustCompile(`\(([A-Z][A-Z0-9]{0,5}(?:[.\-][A-Z0-9]{1,3})?)\)`)
	reNumberCruft = regexp.MustCompile(`[$,%\s]`)
)

// Date layouts tried in order against the candidate date columns.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"01/02/06",
	"Jan-02-2006",
	"02-Jan-2006",
}

// fieldValue resolves a logical field against a row using the alias list,
// matching headers case-insensitively.
func fieldValue(rec models.RawRecord, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := rec[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	// Slow path: header casing differs from the alias list.
	for _, alias := range aliases {
		for k, v := range rec {
			if strings.EqualFold(strings.TrimSpace(k), alias) && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// classifyAction maps free-form action text onto an event class.
func classifyAction(text string) models.EventAction {
	for _, c := range actionClasses {
		if c.re.MatchString(text) {
			return c.action
		}
	}
	return models.ActionOther
}

// normalizeSymbol canonicalizes an explicit symbol value: trimmed,
// uppercased, currency prefix stripped. Cash tickers resolve to empty.
func normalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || cashTickers[s] {
		return ""
	}
	s = strings.TrimPrefix(s, "$")
	return s
}

// resolveSymbol finds a symbol for the row: explicit column first, then a
// parenthesized ticker in the action or description, then a leading
// ticker-like token of the description.
func resolveSymbol(rec models.RawRecord, action, desc string) string {
	if s := normalizeSymbol(fieldValue(rec, symbolAliases)); s != "" {
		return s
	}
	for _, text := range []string{action, desc} {
		if m := reParenTicker.FindStringSubmatch(strings.ToUpper(text)); m != nil {
			return m[1]
		}
	}
	if fields := strings.Fields(strings.ToUpper(desc)); len(fields) > 0 {
		if tok := fields[0]; reTickerToken.MatchString(tok) && !cashTickers[tok] {
			return tok
		}
	}
	return ""
}

// isCashLike reports whether a row describes a money-market or sweep
// vehicle rather than a security. A row with both symbol and description
// empty is treated as cash-like — this can swallow rows carrying only an
// amount, which is accepted, documented behavior.
func isCashLike(symbolRaw, desc string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbolRaw))
	d := strings.ToUpper(strings.TrimSpace(desc))
	if s == "" && d == "" {
		return true
	}
	if strings.HasPrefix(s, "SPAXX") {
		return true
	}
	if cashTickers[s] {
		return true
	}
	if strings.Contains(d, "MONEY MARKET") || strings.Contains(d, "PENDING ACTIVITY") {
		return true
	}
	return false
}

// parseNumber coerces export-formatted numeric text to a float. Currency
// and percent punctuation is stripped, parenthesized values are negative,
// and anything unparsable yields zero — numeric parsing never fails.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "--" {
		return 0
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = reNumberCruft.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		v = -v
	}
	return v
}

// parseDate tries each candidate date column in order and keeps the first
// value that parses as a calendar date. ok=false drops the row: no event
// may exist without a date.
func parseDate(rec models.RawRecord) (time.Time, bool) {
	for _, alias := range dateAliases {
		v := fieldValue(rec, []string{alias})
		if v == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
	}
	return time.Time{}, false
}

// dedupeRecords collapses exact-duplicate rows (all fields equal) to one
// instance. Overlapping export files are routinely merged upstream, so
// repeated rows are expected rather than exceptional.
func dedupeRecords(records []models.RawRecord) []models.RawRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.RawRecord, 0, len(records))
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(rec[k])
			sb.WriteByte('\x1f')
		}
		fp := sb.String()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, rec)
	}
	return out
}

// eventCandidate is a normalized row before the builder assigns signs:
// a classified action with magnitude-only quantity and amount.
type eventCandidate struct {
	Date        time.Time
	Action      models.EventAction
	Symbol      string
	Quantity    float64 // magnitude
	Amount      float64 // magnitude
	Sequence    int     // retained input order, sort tie-break
	Description string
}

// normalizeActivity canonicalizes raw activity rows into event candidates.
// Quantities and amounts are magnitudes; sign is assigned by action class
// in the builder, never taken from the source's own sign convention.
func (s *Service) normalizeActivity(records []models.RawRecord) []eventCandidate {
	records = dedupeRecords(records)

	candidates := make([]eventCandidate, 0, len(records))
	dropped := 0
	for _, rec := range records {
		action := fieldValue(rec, actionAliases)
		desc := fieldValue(rec, descAliases)
		symbolRaw := fieldValue(rec, symbolAliases)

		if isCashLike(symbolRaw, desc) {
			dropped++
			continue
		}

		symbol := resolveSymbol(rec, action, desc)
		if symbol == "" {
			dropped++
			continue
		}

		class := classifyAction(action)
		if class == models.ActionOther {
			dropped++
			continue
		}

		date, ok := parseDate(rec)
		if !ok {
			s.logger.Debug().Str("symbol", symbol).Str("action", action).Msg("Dropping activity row without a parsable date")
			dropped++
			continue
		}

		candidates = append(candidates, eventCandidate{
			Date:        date,
			Action:      class,
			Symbol:      symbol,
			Quantity:    math.Abs(parseNumber(fieldValue(rec, quantityAliases))),
			Amount:      math.Abs(parseNumber(fieldValue(rec, amountAliases))),
			Sequence:    len(candidates),
			Description: desc,
		})
	}

	if dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Int("kept", len(candidates)).Msg("Activity normalization complete")
	}
	return candidates
}

// holdingPosition is one symbol's authoritative current position, summed
// across duplicate holdings rows (e.g. the same security in two accounts).
type holdingPosition struct {
	Symbol      string
	Shares      float64
	CostBasis   float64
	Description string
}

// normalizeHoldings filters and sums holdings rows per symbol.
func (s *Service) normalizeHoldings(records []models.RawRecord) map[string]holdingPosition {
	records = dedupeRecords(records)

	positions := make(map[string]holdingPosition)
	for _, rec := range records {
		desc := fieldValue(rec, descAliases)
		symbolRaw := fieldValue(rec, symbolAliases)

		if isCashLike(symbolRaw, desc) {
			continue
		}
		symbol := normalizeSymbol(symbolRaw)
		if symbol == "" {
			continue
		}

		shares := parseNumber(fieldValue(rec, quantityAliases))
		if shares <= 0 {
			continue
		}
		cost := parseNumber(fieldValue(rec, costAliases))

		pos := positions[symbol]
		pos.Symbol = symbol
		pos.Shares += shares
		pos.CostBasis += cost
		if pos.Description == "" {
			pos.Description = desc
		}
		positions[symbol] = pos
	}
	return positions
}
