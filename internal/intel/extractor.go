package intel

import (
	"math"
	"strings"
)

// Attribute keys attached to bank-account entities.
const (
	AttrIFSC          = "ifsc_code"
	AttrAccountHolder = "account_holder"
	AttrDomain        = "domain"
)

// Base and bonus confidences per kind. Phones and names stay low because
// both are trivially fabricated.
const (
	bankBaseConfidence  = 0.6
	bankIFSCBonus       = 0.3
	bankNameBonus       = 0.1
	ifscConfidence      = 0.9
	upiKnownConfidence  = 0.95
	upiOtherConfidence  = 0.7
	phoneConfidence     = 0.7
	emailConfidence     = 0.7
	urlSuspectConfidence = 0.9
	urlConfidence       = 0.8
	nameConfidence      = 0.6
)

// nameWindow is how far (in characters) around an account number we look
// for the holder's name.
const nameWindow = 50

// Extract scans text for payment and contact artifacts and returns prior
// unioned with everything found. Prior is not mutated; dedup and the
// never-decreasing confidence rule come from Record.Add. Absence of matches
// is normal and yields prior unchanged.
func Extract(text string, prior Record) Record {
	out := prior.Clone()
	if strings.TrimSpace(text) == "" {
		return out
	}

	extractBankAccounts(text, out)
	extractIFSCCodes(text, out)
	extractUPIIDs(text, out)
	extractPhoneNumbers(text, out)
	extractEmails(text, out)
	extractURLs(text, out)
	extractNames(text, out)

	return out
}

// ExtractMessages joins a transcript and extracts from the whole of it.
// Callers needing strict positional IFSC/name association should pass
// per-message slices to Extract instead.
func ExtractMessages(messages []string, prior Record) Record {
	return Extract(strings.Join(messages, " "), prior)
}

func extractBankAccounts(text string, out Record) {
	accounts := bankAccountRE.FindAllString(text, -1)
	if len(accounts) == 0 {
		return
	}

	// First IFSC anywhere in the text is associated with every account
	// found in the same text.
	var ifsc string
	if m := ifscRE.FindString(text); m != "" {
		ifsc = strings.ToUpper(m)
	}

	for _, account := range accounts {
		confidence := bankBaseConfidence
		attrs := make(map[string]string)
		if ifsc != "" {
			attrs[AttrIFSC] = ifsc
			confidence += bankIFSCBonus
		}
		if holder := findNearbyName(text, account); holder != "" {
			attrs[AttrAccountHolder] = holder
			confidence += bankNameBonus
		}
		if confidence > 1.0 {
			confidence = 1.0
		}
		// Summed bonuses must report their nominal value: base + both
		// bonuses is exactly 1.0, not 0.9999999999999999.
		confidence = math.Round(confidence*100) / 100
		if len(attrs) == 0 {
			attrs = nil
		}
		out.Add(KindBankAccount, Entity{Value: account, Confidence: confidence, Attributes: attrs})
	}
}

func extractIFSCCodes(text string, out Record) {
	for _, m := range ifscRE.FindAllString(text, -1) {
		out.Add(KindIFSC, Entity{Value: strings.ToUpper(m), Confidence: ifscConfidence})
	}
}

func extractUPIIDs(text string, out Record) {
	for _, upi := range upiRE.FindAllString(text, -1) {
		at := strings.LastIndex(upi, "@")
		if at < 0 {
			continue
		}
		handle := strings.ToLower(upi[at+1:])
		if _, consumer := consumerMailHandles[handle]; consumer {
			continue
		}
		confidence := upiOtherConfidence
		if _, known := knownUPIHandles[handle]; known {
			confidence = upiKnownConfidence
		}
		out.Add(KindUPI, Entity{Value: upi, Confidence: confidence})
	}
}

func extractPhoneNumbers(text string, out Record) {
	for _, phone := range phoneRE.FindAllString(text, -1) {
		out.Add(KindPhone, Entity{Value: phone, Confidence: phoneConfidence})
	}
}

func extractEmails(text string, out Record) {
	for _, email := range emailRE.FindAllString(text, -1) {
		out.Add(KindEmail, Entity{Value: email, Confidence: emailConfidence})
	}
}

func extractURLs(text string, out Record) {
	for _, url := range urlRE.FindAllString(text, -1) {
		url = strings.TrimRight(url, ".,;")
		domain := extractDomain(url)
		confidence := urlConfidence
		if isSuspiciousURL(url) {
			confidence = urlSuspectConfidence
		}
		var attrs map[string]string
		if domain != "" {
			attrs = map[string]string{AttrDomain: domain}
		}
		out.Add(KindURL, Entity{Value: url, Confidence: confidence, Attributes: attrs})
	}
}

func extractNames(text string, out Record) {
	add := func(name string) {
		name = strings.TrimSpace(name)
		if len(name) < 4 {
			return
		}
		if _, stopped := nameStoplist[strings.ToLower(name)]; stopped {
			return
		}
		out.Add(KindName, Entity{Value: name, Confidence: nameConfidence})
	}

	for _, m := range labeledNameRE.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range bareNameRE.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
}

// findNearbyName looks for a name match within nameWindow characters on
// either side of the account number's position in the text.
func findNearbyName(text, account string) string {
	pos := strings.Index(text, account)
	if pos < 0 {
		return ""
	}
	start := pos - nameWindow
	if start < 0 {
		start = 0
	}
	end := pos + len(account) + nameWindow
	if end > len(text) {
		end = len(text)
	}
	context := text[start:end]

	if m := labeledNameRE.FindStringSubmatch(context); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareNameRE.FindStringSubmatch(context); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractDomain(url string) string {
	domain := urlSchemeRE.ReplaceAllString(url, "")
	domain = wwwPrefixRE.ReplaceAllString(domain, "")
	if i := strings.IndexAny(domain, "/?"); i >= 0 {
		domain = domain[:i]
	}
	return domain
}

func isSuspiciousURL(url string) bool {
	lower := strings.ToLower(url)
	for _, indicator := range suspiciousURLIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
