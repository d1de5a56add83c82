package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ent0n29/realtybot/internal/memory"
)

func TestExtractSlots(t *testing.T) {
	cases := []struct {
		in   string
		want memory.Slots
	}{
		{
			in:   "I am Ada, ada@x.com, 08012345678",
			want: memory.Slots{Name: "Ada", Email: "ada@x.com", Phone: "08012345678"},
		},
		{
			in:   "looking for a 3 bedroom duplex in Lekki Phase 1 around 120m",
			want: memory.Slots{Bedrooms: 3, PropertyType: "duplex", Location: "lekki phase 1", Budget: "120m"},
		},
		{
			in:   "My name is ngozi okafor and I want a flat in VI",
			want: memory.Slots{Name: "Ngozi Okafor", PropertyType: "apartment", Location: "victoria island"},
		},
		{
			in:   "two bedroom semi detached in Abuja, budget ₦85,000,000",
			want: memory.Slots{Bedrooms: 2, PropertyType: "duplex", Location: "abuja", Budget: "85000000"},
		},
		{
			in:   "I am looking for land",
			want: memory.Slots{PropertyType: "land"},
		},
		{
			in:   "nothing useful here",
			want: memory.Slots{},
		},
	}
	for _, tc := range cases {
		got := ExtractSlots(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ExtractSlots(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestExtractPhoneNeedsTenDigits(t *testing.T) {
	cases := map[string]string{
		"call 0801 234 5678":           "0801 234 5678",
		"+234 (801) 234-5678 thanks":   "+234 (801) 234-5678",
		"my code is 12345":             "",
		"price is ₦1000000000 exactly": "",
		"08012345678 08098765432":      "08012345678",
		"0801 234 5678 0809 876 5432":  "0801 234 5678",
	}
	for in, want := range cases {
		if got := ExtractPhone(in); got != want {
			t.Fatalf("ExtractPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractNameRejectsNonNames(t *testing.T) {
	for _, in := range []string{
		"I am looking for a house", "I'm in Lagos", "this is great", "call me back",
		"I'm curious about prices", "this is too expensive", "this is perfect", "i'm chidi",
	} {
		if got := ExtractName(in); got != "" {
			t.Fatalf("ExtractName(%q) = %q, want empty", in, got)
		}
	}
	if got := ExtractName("hi, I'm Chidi"); got != "Chidi" {
		t.Fatalf("ExtractName() = %q, want %q", got, "Chidi")
	}
}

func TestParseBudget(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"50m", 50e6, true},
		{"1.5b", 1.5e9, true},
		{"800k", 800e3, true},
		{"45000000", 45e6, true},
		{"", 0, false},
		{"lots", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseBudget(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseBudget(%q) = %v, %v, want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtractNameExplicitIntroIsLenient(t *testing.T) {
	cases := map[string]string{
		"call me ada":          "Ada",
		"my name is ngozi":     "Ngozi",
		"I'm Tunde from Ikeja": "Tunde",
	}
	for in, want := range cases {
		if got := ExtractName(in); got != want {
			t.Fatalf("ExtractName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBareName(t *testing.T) {
	cases := map[string]string{
		"Ada":                             "Ada",
		"ada obi":                         "Ada Obi",
		"Ada Obi, ada@x.com, 08012345678": "Ada Obi",
		"ada@x.com, 08012345678":          "",
		"hmm":                             "",
		"yes":                             "",
		"3 bedrooms":                      "",
		"Lekki":                           "",
		"one two three four":              "",
	}
	for in, want := range cases {
		if got := BareName(in); got != want {
			t.Fatalf("BareName(%q) = %q, want %q", in, got, want)
		}
	}
}
