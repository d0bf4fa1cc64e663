package salary

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// amountRe caps tokens at five digits, so "180000" yields "18000". Existing
// reports depend on that truncation; keep it.
var amountRe = regexp.MustCompile(`\d{3,5}`)

// separators drops thousands separators once full-width text has been folded.
var separators = strings.NewReplacer(",", "", "，", "")

// ParseBounds returns the first and second 3-5 digit amounts in text after
// folding full-width digits and removing thousands separators. Position alone
// decides which is low and which is high. max equals min when only one amount
// is present; both are nil when there is none.
func ParseBounds(text string) (min, max *int) {
	tokens := amountRe.FindAllString(separators.Replace(width.Fold.String(text)), 2)
	if len(tokens) == 0 {
		return nil, nil
	}
	lo, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, nil
	}
	hi := lo
	if len(tokens) > 1 {
		if n, err := strconv.Atoi(tokens[1]); err == nil {
			hi = n
		}
	}
	return &lo, &hi
}
