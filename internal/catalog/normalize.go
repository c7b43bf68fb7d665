package catalog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-grosir/internal/pricing"
)

// ParseCodes decodes a geography code column into normalized codes. The
// supported shape is a JSON array; a JSON-string-encoded array and a plain
// delimited string are tolerated as legacy fallbacks. Malformed input yields
// nil rather than an error so one bad row cannot poison a snapshot.
func ParseCodes(raw []byte) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return normalizeAll(arr)
	}

	// Legacy rows double-encode the array as a JSON string.
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		inner = strings.TrimSpace(inner)
		if strings.HasPrefix(inner, "[") {
			if err := json.Unmarshal([]byte(inner), &arr); err == nil {
				return normalizeAll(arr)
			}
			return nil
		}
		return pricing.ParseCodeList(inner)
	}

	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return pricing.ParseCodeList(trimmed)
	}
	return nil
}

func normalizeAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if code := pricing.NormalizeCode(c); code != "" {
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseQuantity decodes a numeric column rendered as text. Empty or malformed
// values yield zero.
func ParseQuantity(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}
