package regions

import (
	"sort"
	"strconv"
	"strings"
)

// Region identifies a state-level subdivision rendered on the service-area map.
type Region struct {
	FIPS string // two-digit FIPS state code, e.g. "06"
	Code string // postal abbreviation, e.g. "CA"
	Name string
}

// byFIPS covers the 50 states and DC. Territories are left out on purpose;
// the map only renders the contiguous-plus-AK/HI layout.
var byFIPS = map[string]Region{
	"01": {FIPS: "01", Code: "AL", Name: "Alabama"},
	"02": {FIPS: "02", Code: "AK", Name: "Alaska"},
	"04": {FIPS: "04", Code: "AZ", Name: "Arizona"},
	"05": {FIPS: "05", Code: "AR", Name: "Arkansas"},
	"06": {FIPS: "06", Code: "CA", Name: "California"},
	"08": {FIPS: "08", Code: "CO", Name: "Colorado"},
	"09": {FIPS: "09", Code: "CT", Name: "Connecticut"},
	"10": {FIPS: "10", Code: "DE", Name: "Delaware"},
	"11": {FIPS: "11", Code: "DC", Name: "District of Columbia"},
	"12": {FIPS: "12", Code: "FL", Name: "Florida"},
	"13": {FIPS: "13", Code: "GA", Name: "Georgia"},
	"15": {FIPS: "15", Code: "HI", Name: "Hawaii"},
	"16": {FIPS: "16", Code: "ID", Name: "Idaho"},
	"17": {FIPS: "17", Code: "IL", Name: "Illinois"},
	"18": {FIPS: "18", Code: "IN", Name: "Indiana"},
	"19": {FIPS: "19", Code: "IA", Name: "Iowa"},
	"20": {FIPS: "20", Code: "KS", Name: "Kansas"},
	"21": {FIPS: "21", Code: "KY", Name: "Kentucky"},
	"22": {FIPS: "22", Code: "LA", Name: "Louisiana"},
	"23": {FIPS: "23", Code: "ME", Name: "Maine"},
	"24": {FIPS: "24", Code: "MD", Name: "Maryland"},
	"25": {FIPS: "25", Code: "MA", Name: "Massachusetts"},
	"26": {FIPS: "26", Code: "MI", Name: "Michigan"},
	"27": {FIPS: "27", Code: "MN", Name: "Minnesota"},
	"28": {FIPS: "28", Code: "MS", Name: "Mississippi"},
	"29": {FIPS: "29", Code: "MO", Name: "Missouri"},
	"30": {FIPS: "30", Code: "MT", Name: "Montana"},
	"31": {FIPS: "31", Code: "NE", Name: "Nebraska"},
	"32": {FIPS: "32", Code: "NV", Name: "Nevada"},
	"33": {FIPS: "33", Code: "NH", Name: "New Hampshire"},
	"34": {FIPS: "34", Code: "NJ", Name: "New Jersey"},
	"35": {FIPS: "35", Code: "NM", Name: "New Mexico"},
	"36": {FIPS: "36", Code: "NY", Name: "New York"},
	"37": {FIPS: "37", Code: "NC", Name: "North Carolina"},
	"38": {FIPS: "38", Code: "ND", Name: "North Dakota"},
	"39": {FIPS: "39", Code: "OH", Name: "Ohio"},
	"40": {FIPS: "40", Code: "OK", Name: "Oklahoma"},
	"41": {FIPS: "41", Code: "OR", Name: "Oregon"},
	"42": {FIPS: "42", Code: "PA", Name: "Pennsylvania"},
	"44": {FIPS: "44", Code: "RI", Name: "Rhode Island"},
	"45": {FIPS: "45", Code: "SC", Name: "South Carolina"},
	"46": {FIPS: "46", Code: "SD", Name: "South Dakota"},
	"47": {FIPS: "47", Code: "TN", Name: "Tennessee"},
	"48": {FIPS: "48", Code: "TX", Name: "Texas"},
	"49": {FIPS: "49", Code: "UT", Name: "Utah"},
	"50": {FIPS: "50", Code: "VT", Name: "Vermont"},
	"51": {FIPS: "51", Code: "VA", Name: "Virginia"},
	"53": {FIPS: "53", Code: "WA", Name: "Washington"},
	"54": {FIPS: "54", Code: "WV", Name: "West Virginia"},
	"55": {FIPS: "55", Code: "WI", Name: "Wisconsin"},
	"56": {FIPS: "56", Code: "WY", Name: "Wyoming"},
}

var byCode = func() map[string]Region {
	m := make(map[string]Region, len(byFIPS))
	for _, r := range byFIPS {
		m[r.Code] = r
	}
	return m
}()

// LookupFIPS resolves a FIPS id to its region. Single-digit ids ("6") are
// zero-padded before the lookup.
func LookupFIPS(id string) (Region, bool) {
	r, ok := byFIPS[NormalizeFIPS(id)]
	return r, ok
}

// LookupCode resolves a postal code (case-insensitive) to its region.
func LookupCode(code string) (Region, bool) {
	r, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// NormalizeFIPS trims the id and left-pads purely numeric ids to two digits.
func NormalizeFIPS(id string) string {
	id = strings.TrimSpace(id)
	if len(id) == 1 {
		if _, err := strconv.Atoi(id); err == nil {
			return "0" + id
		}
	}
	return id
}

// All returns every known region ordered by code.
func All() []Region {
	out := make([]Region, 0, len(byCode))
	for _, r := range byCode {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ParseCodes splits a comma separated list ("tx, CA,,ny") into upper-cased,
// de-duplicated codes in first-seen order. Unknown codes are kept; callers
// decide whether they matter.
func ParseCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
