package summary

import (
	"strings"

	"github.com/joshuapare/msikit/pkg/types"
)

// ProductInfo derives product identification from summary information:
// Title names the product, Author is the manufacturer and Revision Number
// carries the package code optionally followed by the upgrade code. It
// returns nil when info is nil or nothing resolves.
func ProductInfo(info *types.SummaryInfo) *types.ProductInfo {
	if info == nil {
		return nil
	}
	pi := types.ProductInfo{
		Name:         strings.TrimSpace(info.Title),
		Manufacturer: strings.TrimSpace(info.Author),
		Subject:      info.Subject,
	}
	pi.PackageCode, pi.UpgradeCode = SplitRevision(info.Revision)
	if pi.Empty() {
		return nil
	}
	return &pi
}

// SplitRevision splits a revision number value such as
// "{GUID-A}{GUID-B}" or "{GUID-A};{GUID-B}" into its first two tokens.
// Braced tokens keep their braces; a bare value is the package code.
func SplitRevision(s string) (packageCode, upgradeCode string) {
	var tokens []string
	for i := 0; i < len(s) && len(tokens) < 2; {
		switch c := s[i]; {
		case c == ';' || c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				tokens = append(tokens, s[i:])
				i = len(s)
				continue
			}
			tokens = append(tokens, s[i:i+end+1])
			i += end + 1
		default:
			end := strings.IndexAny(s[i:], "; \t\r\n{")
			if end < 0 {
				end = len(s) - i
			}
			tokens = append(tokens, s[i:i+end])
			i += end
		}
	}
	if len(tokens) > 0 {
		packageCode = tokens[0]
	}
	if len(tokens) > 1 {
		upgradeCode = tokens[1]
	}
	return packageCode, upgradeCode
}
