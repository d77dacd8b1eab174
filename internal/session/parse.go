package session

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	phoneRe      = regexp.MustCompile(`\+?91[\s-]?(\d{10})|(\d{10})`)
	emailRe      = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	customerIDRe = regexp.MustCompile(`\b(C\d{3,})\b`)
	panRe        = regexp.MustCompile(`(?i)[A-Z]{5}[0-9]{4}[A-Z]`)
	dobRe        = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	unitAmountRe = regexp.MustCompile(`(?i)(\d+)\s*(lakhs?|lacs?|l|thousand|k)\b`)
	bareAmountRe = regexp.MustCompile(`₹?\s*([\d,]{4,})`)
	numberRe     = regexp.MustCompile(`\d+`)
	tenureRe     = regexp.MustCompile(`(?i)(\d+)\s*(years?|yrs?|months?)`)
)

// contactInfo is whatever identifying handles a message carries.
type contactInfo struct {
	Phone      string
	Email      string
	CustomerID string
}

func (c contactInfo) empty() bool {
	return c.Phone == "" && c.Email == "" && c.CustomerID == ""
}

func parseContactInfo(input string) contactInfo {
	var info contactInfo
	if m := phoneRe.FindStringSubmatch(input); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		info.Phone = "+91-" + digits
	}
	if m := emailRe.FindString(input); m != "" {
		info.Email = m
	}
	if m := customerIDRe.FindStringSubmatch(input); m != nil {
		info.CustomerID = m[1]
	}
	return info
}

// parseAmount reads "5 lakhs", "50k", or a bare "₹500000". Unit forms win
// over bare digits so "5 lakhs" does not parse as 5.
func parseAmount(input string) int64 {
	if m := unitAmountRe.FindStringSubmatch(input); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0
		}
		unit := strings.ToLower(m[2])
		switch {
		case strings.HasPrefix(unit, "lakh"), strings.HasPrefix(unit, "lac"), unit == "l":
			return n * 100000
		case unit == "thousand", unit == "k":
			return n * 1000
		}
		return n
	}

	if m := bareAmountRe.FindStringSubmatch(input); m != nil {
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil || n < 1000 {
			return 0
		}
		return n
	}
	return 0
}

// parseTenure reads "3 years" or "36 months" into months.
func parseTenure(input string) int {
	m := tenureRe.FindStringSubmatch(input)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "y") {
		return n * 12
	}
	return n
}

var purposeKeywords = []string{
	"education", "medical", "travel", "wedding", "business", "renovation",
	"home", "vehicle", "debt", "consolidation", "emergency", "personal",
}

func parsePurpose(input string) string {
	lower := strings.ToLower(input)
	for _, p := range purposeKeywords {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

func parsePAN(input string) string {
	return strings.ToUpper(panRe.FindString(input))
}

// parseDOB normalizes DD/MM/YYYY (or dashed) to ISO YYYY-MM-DD.
func parseDOB(input string) string {
	m := dobRe.FindStringSubmatch(input)
	if m == nil {
		return ""
	}
	day, month := m[1], m[2]
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return m[3] + "-" + month + "-" + day
}

func parseNumber(input string) (int64, bool) {
	m := numberRe.FindString(strings.ReplaceAll(input, ",", ""))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
