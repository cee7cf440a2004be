package detection

import "regexp"

// Category labels a conversation with the kind of scam being run. It is
// assigned once per conversation and never overwritten afterwards.
type Category string

const (
	CategoryTechSupport Category = "tech_support"
	CategoryFinancial   Category = "financial"
	CategoryPrize       Category = "prize"
	CategoryRomance     Category = "romance"
	CategoryJob         Category = "job"
	CategoryNone        Category = ""
)

// categoryOrder fixes the tie-break priority between equal-scoring
// categories so classification is reproducible.
var categoryOrder = []Category{
	CategoryTechSupport,
	CategoryFinancial,
	CategoryPrize,
	CategoryRomance,
	CategoryJob,
}

// categoryPatterns couples a category's keyword list with the phrase
// patterns that are worth more than a bare keyword hit.
type categoryPatterns struct {
	keywords []string
	patterns []*regexp.Regexp
}

var scamPatterns = map[Category]categoryPatterns{
	CategoryTechSupport: {
		keywords: []string{
			"microsoft", "windows", "computer", "virus", "antivirus", "mcafee",
			"norton", "google", "amazon", "tech support", "technical support",
			"computer problem", "laptop", "pc", "software", "license expired",
			"security alert", "malware", "spyware", "infected",
			"remote access", "anydesk", "teamviewer",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`your (computer|pc|laptop|device) (has|is) (infected|compromised)`),
			regexp.MustCompile(`(virus|malware) detected`),
			regexp.MustCompile(`call (us|our) (tech|technical) support`),
		},
	},
	CategoryFinancial: {
		keywords: []string{
			"bank", "account", "kyc", "pan", "aadhaar", "aadhar", "blocked",
			"suspended", "verify", "update", "income tax", "tax department",
			"rbi", "reserve bank", "sbi", "hdfc", "icici", "axis", "debit card",
			"credit card", "atm", "transaction", "fraud", "unauthorized",
			"refund", "payment", "upi", "paytm", "phonepe", "gpay", "otp", "cvv",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(account|card) (is|has been) (blocked|suspended|frozen)`),
			regexp.MustCompile(`update (your|ur) kyc`),
			regexp.MustCompile(`verify (your|ur) (pan|aadhaar|account)`),
			regexp.MustCompile(`income tax (department|notice|refund)`),
		},
	},
	CategoryPrize: {
		keywords: []string{
			"congratulations", "won", "winner", "prize", "lottery", "lakh",
			"crore", "rupees", "reward", "gift", "lucky", "selected", "claim",
			"kbc", "kaun banega crorepati", "lucky draw", "contest", "free",
			"iphone", "car", "bike", "cash prize",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(congratulations|congrats).*(won|winner)`),
			regexp.MustCompile(`won.*(lakh|crore|rupees|\d+)`),
			regexp.MustCompile(`claim (your|ur) (prize|reward|gift)`),
			regexp.MustCompile(`lucky draw`),
		},
	},
	CategoryRomance: {
		keywords: []string{
			"hello dear", "hi sweetheart", "love", "lonely", "friend",
			"relationship", "marry", "marriage", "beautiful", "handsome",
			"miss you", "thinking of you", "alone", "companion",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(hello|hi) (dear|sweetheart|darling)`),
			regexp.MustCompile(`looking for (love|relationship|friendship)`),
			regexp.MustCompile(`are you (single|alone|lonely)`),
		},
	},
	CategoryJob: {
		keywords: []string{
			"job", "work from home", "earn", "income", "salary", "part time",
			"full time", "hiring", "vacancy", "opportunity", "investment",
			"trading", "forex", "crypto", "bitcoin", "stock market",
			"registration fee", "training fee", "deposit", "guaranteed income",
			"easy money", "no experience", "telegram",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`work from home.*(earn|income|\d+)`),
			regexp.MustCompile(`earn.*(lakh|thousand|rupees|\d+).*(month|day|week)`),
			regexp.MustCompile(`(registration|training|deposit) fee`),
			regexp.MustCompile(`guaranteed (income|returns|profit)`),
		},
	},
}

// signalGroup is a disjunctive pattern set that boosts the winning
// category's score by a fixed amount when any member matches. The boost is
// per group, not per pattern.
type signalGroup struct {
	name     string
	boost    float64
	patterns []*regexp.Regexp
}

var signalGroups = []signalGroup{
	{
		name:  "urgency",
		boost: 0.10,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(urgent|immediately|now|today|within \d+ (hours|minutes))`),
			regexp.MustCompile(`(limited time|offer expires|last chance)`),
			regexp.MustCompile(`(act now|hurry|quick|fast)`),
		},
	},
	{
		name:  "authority_claim",
		boost: 0.15,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(government|official|department|ministry|police|cyber crime|cbi)`),
			regexp.MustCompile(`(rbi|reserve bank|income tax|tax department)`),
			regexp.MustCompile(`(authorized|verified|certified|registered)`),
		},
	},
	{
		name:  "action_request",
		boost: 0.15,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(click|tap|open) (this|the) (link|url)`),
			regexp.MustCompile(`(share|send|provide|give) (your|ur) (otp|password|pin|cvv)`),
			regexp.MustCompile(`(transfer|pay|send) (money|amount|rupees|\d+)`),
			regexp.MustCompile(`(download|install) (this|the) (app|application|software)`),
			regexp.MustCompile(`call (us|this number|back)`),
		},
	},
}

// Categories returns the known scam categories in their fixed priority order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// PatternCounts reports the table size per category. Used by table sanity
// tests so the rule data can be validated without going through scoring.
func PatternCounts() map[Category][2]int {
	counts := make(map[Category][2]int, len(scamPatterns))
	for cat, p := range scamPatterns {
		counts[cat] = [2]int{len(p.keywords), len(p.patterns)}
	}
	return counts
}
