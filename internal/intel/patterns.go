package intel

import "regexp"

// ---------- package-level compiled regexes ----------

var (
	// Indian bank accounts run 9-18 digits depending on the bank.
	bankAccountRE = regexp.MustCompile(`\b\d{9,18}\b`)

	// IFSC shape: 4 letters, a literal zero, 6 alphanumerics.
	ifscRE = regexp.MustCompile(`(?i)\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	// UPI virtual payment address, local@handle.
	upiRE = regexp.MustCompile(`\b[\w.\-]+@\w+\b`)

	// Indian mobile numbers: 10 digits, leading digit 6-9.
	phoneRE = regexp.MustCompile(`\b[6-9]\d{9}\b`)

	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	urlRE = regexp.MustCompile(`(?i)https?://[^\s]+|www\.[^\s]+|[a-zA-Z0-9-]+\.(?:com|in|org|net|co\.in|info|xyz|tk|ml|ga|cf|gq)[^\s]*`)

	urlSchemeRE = regexp.MustCompile(`(?i)^https?://`)
	wwwPrefixRE = regexp.MustCompile(`(?i)^www\.`)

	// Name forms: an explicit label followed by capitalized tokens, or a
	// bare capitalized two-to-three token run. The label match is
	// case-insensitive, the name tokens are not.
	labeledNameRE = regexp.MustCompile(`(?:(?i:name|account holder|beneficiary))[\s:]+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})`)
	bareNameRE    = regexp.MustCompile(`\b([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
)

// knownUPIHandles are payment-provider suffixes that mark a high-confidence
// UPI id. Everything else keeps a lower score since the token shape also
// matches throwaway handles.
var knownUPIHandles = map[string]struct{}{
	"paytm": {}, "ybl": {}, "oksbi": {}, "axl": {}, "icici": {},
	"hdfcbank": {}, "ibl": {}, "okaxis": {}, "okhdfcbank": {},
	"okicici": {}, "sbi": {}, "upi": {}, "pnb": {}, "boi": {},
	"cnrb": {}, "unionbank": {}, "indianbank": {}, "sc": {}, "federal": {},
}

// consumerMailHandles are excluded from UPI extraction so plain email
// addresses do not show up as payment handles.
var consumerMailHandles = map[string]struct{}{
	"gmail": {}, "yahoo": {},
}

// suspiciousURLIndicators flag disposable TLDs, shorteners, phishing-style
// path keywords, and hyphenated brand-alike domains.
var suspiciousURLIndicators = []string{
	".tk", ".ml", ".ga", ".cf", ".gq",
	"bit.ly", "tinyurl", "short",
	"login", "verify", "secure", "update",
	"account-", "banking-", "payment-",
}

// nameStoplist filters greeting fragments that match the bare-name shape.
var nameStoplist = map[string]struct{}{
	"dear sir":   {},
	"dear madam": {},
	"hello sir":  {},
	"thank you":  {},
}
