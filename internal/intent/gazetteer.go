package intent

import "sort"

// gazetteer maps every recognized spelling to its canonical place name.
// Abbreviations are ordinary entries: all entries match on word boundaries,
// so "vi" never fires inside "view" or "visit".
var gazetteer = map[string]string{
	"lagos":           "lagos",
	"lekki":           "lekki",
	"lekki phase 1":   "lekki phase 1",
	"chevron":         "chevron",
	"ajah":            "ajah",
	"sangotedo":       "sangotedo",
	"ikoyi":           "ikoyi",
	"victoria island": "victoria island",
	"vi":              "victoria island",
	"ikeja":           "ikeja",
	"ikeja gra":       "ikeja gra",
	"maryland":        "maryland",
	"magodo":          "magodo",
	"gbagada":         "gbagada",
	"ogudu":           "ogudu",
	"ojodu":           "ojodu",
	"yaba":            "yaba",
	"surulere":        "surulere",
	"festac":          "festac",
	"apapa":           "apapa",
	"ikorodu":         "ikorodu",
	"epe":             "epe",
	"badagry":         "badagry",
	"abuja":           "abuja",
	"maitama":         "maitama",
	"asokoro":         "asokoro",
	"wuse":            "wuse",
	"wuse 2":          "wuse 2",
	"gwarinpa":        "gwarinpa",
	"jabi":            "jabi",
	"garki":           "garki",
	"katampe":         "katampe",
	"lugbe":           "lugbe",
	"kubwa":           "kubwa",
	"port harcourt":   "port harcourt",
	"ph":              "port harcourt",
	"ibadan":          "ibadan",
	"bodija":          "bodija",
	"abeokuta":        "abeokuta",
	"enugu":           "enugu",
	"benin city":      "benin city",
	"kano":            "kano",
	"kaduna":          "kaduna",
	"jos":             "jos",
	"ilorin":          "ilorin",
	"owerri":          "owerri",
	"uyo":             "uyo",
	"calabar":         "calabar",
	"warri":           "warri",
	"asaba":           "asaba",
}

// gazetteerByLength lists gazetteer keys longest first so "victoria island"
// and "lekki phase 1" win over shorter overlapping entries.
var gazetteerByLength = func() []string {
	keys := make([]string, 0, len(gazetteer))
	for k := range gazetteer {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// FindLocation returns the canonical name of the longest gazetteer entry in u.
func FindLocation(u Utterance) string {
	for _, k := range gazetteerByLength {
		if u.HasPhrase(k) {
			return gazetteer[k]
		}
	}
	return ""
}

// IsKnownLocation reports whether s is exactly a gazetteer spelling.
func IsKnownLocation(s string) bool {
	_, ok := gazetteer[s]
	return ok
}
