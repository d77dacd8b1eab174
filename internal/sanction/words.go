package sanction

import "strings"

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords renders a non-negative amount in Indian numbering words:
// thousand, lakh, crore groups. 500000 renders as "Five Lakh".
func AmountInWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	return strings.Join(strings.Fields(convert(n)), " ")
}

func convert(n int64) string {
	switch {
	case n >= 1_00_00_000:
		return convert(n/1_00_00_000) + " Crore " + convert(n%1_00_00_000)
	case n >= 1_00_000:
		return convert(n/1_00_000) + " Lakh " + convert(n%1_00_000)
	case n >= 1_000:
		return convert(n/1_000) + " Thousand " + convert(n%1_000)
	case n >= 100:
		return convert(n/100) + " Hundred " + convert(n%100)
	case n >= 20:
		return strings.TrimSpace(tensWords[n/10] + " " + onesWords[n%10])
	case n > 0:
		return onesWords[n]
	default:
		return ""
	}
}
