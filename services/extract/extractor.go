package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"autobook/models"
	"autobook/services/datetime"
)

// Extractor pulls customer attributes out of free-form transcript text. It
// feeds the session store's merge operation and is deliberately independent
// of all scheduling logic.
type Extractor interface {
	Extract(transcript string, ref time.Time) models.CustomerInfo
}

// RegexExtractor is a heuristic, pattern-based Extractor. It only fills
// fields it is confident about; anything ambiguous stays unset and the
// agent asks again.
type RegexExtractor struct {
	Normalizer *datetime.Normalizer
}

// NewRegexExtractor returns an extractor that also canonicalizes any
// date/time preference it finds via the given normalizer.
func NewRegexExtractor(n *datetime.Normalizer) *RegexExtractor {
	return &RegexExtractor{Normalizer: n}
}

var (
	nameRe  = regexp.MustCompile(`(?i)\b(?:my name is|this is|i am|i'm)\s+([a-z]+(?:\s+[a-z]+)?)`)
	phoneRe = regexp.MustCompile(`\b(\d{3})[-.\s]?(\d{3})[-.\s]?(\d{4})\b`)
	emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	yearRe  = regexp.MustCompile(`\b(19[5-9]\d|20[0-4]\d)\b`)

	carMakes = []string{
		"toyota", "honda", "ford", "chevrolet", "chevy", "nissan", "hyundai",
		"kia", "mazda", "subaru", "volkswagen", "dodge", "ram", "jeep", "gmc",
		"bmw", "audi", "mercedes", "lexus", "acura", "tesla",
	}
	makeAliases = map[string]string{"chevy": "Chevrolet", "mercedes": "Mercedes-Benz"}

	serviceKeywords = []struct {
		keyword string
		id      string
	}{
		{"oil", "oil_change"},
		{"tire", "tire_rotation"},
		{"rotation", "tire_rotation"},
		{"repair", "general_service"},
		{"check", "general_service"},
		{"service", "general_service"},
	}

	locationAliases = map[string]string{
		"downtown":    "downtown",
		"north york":  "north_york",
		"scarborough": "scarborough",
		"etobicoke":   "etobicoke",
	}
)

// Extract scans the transcript and returns the partial customer record it
// could recognize. ref anchors relative date expressions.
func (e *RegexExtractor) Extract(transcript string, ref time.Time) models.CustomerInfo {
	lower := strings.ToLower(transcript)
	var info models.CustomerInfo

	if m := nameRe.FindStringSubmatch(transcript); m != nil {
		info.FullName = title(m[1])
	}
	if m := phoneRe.FindStringSubmatch(lower); m != nil {
		info.PhoneNumber = m[1] + "-" + m[2] + "-" + m[3]
	}
	if m := emailRe.FindString(transcript); m != "" {
		info.Email = strings.ToLower(m)
	}

	for _, mk := range carMakes {
		idx := strings.Index(lower, mk)
		if idx < 0 {
			continue
		}
		if canonical, ok := makeAliases[mk]; ok {
			info.CarMake = canonical
		} else {
			info.CarMake = title(mk)
		}
		// The word right after the make is usually the model.
		rest := strings.Fields(lower[idx+len(mk):])
		if len(rest) > 0 {
			model := strings.Trim(rest[0], ".,!?")
			if model != "" && !yearRe.MatchString(model) {
				info.CarModel = title(model)
			}
		}
		break
	}
	if m := yearRe.FindString(lower); m != "" {
		year, _ := strconv.Atoi(m)
		info.CarYear = year
	}

	for _, sk := range serviceKeywords {
		if strings.Contains(lower, sk.keyword) {
			info.ServiceType = sk.id
			break
		}
	}

	for spoken, id := range locationAliases {
		if strings.Contains(lower, spoken) {
			info.Location = id
			break
		}
	}

	if strings.Contains(lower, "triangle") || strings.Contains(lower, "loyalty") {
		member := !strings.Contains(lower, "not a") && !strings.Contains(lower, "no triangle")
		info.LoyaltyMember = &member
	}

	if e.Normalizer != nil {
		if res := e.Normalizer.Normalize(transcript, ref); res.Matched {
			info.PreferredDate = res.Date
			info.PreferredTime = res.Time
		}
	}
	return info
}

func title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
