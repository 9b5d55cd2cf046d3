package types

import "testing"

func TestDeriveInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Wear it Forward", "WF"},
		{"Tech for Good", "TG"},
		{"Austin Housing Coalition", "AC"},
		{"Hope", "H"},
		{"TBD", "T"},
		{"", ""},
		{"   ", ""},
		{"  spaced   out  ", "SO"},
		// Multibyte-leading words keep whole runes.
		{"Ébano Verde", "ÉV"},
		{"Ñandú", "Ñ"},
		{"växa tillsammans", "VT"},
	}
	for _, tt := range tests {
		if got := DeriveInitials(tt.name); got != tt.want {
			t.Errorf("DeriveInitials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRenameRecomputesInitials(t *testing.T) {
	org := NewOrganization("org_1")
	if org.Initials != "T" {
		t.Errorf("placeholder initials = %q", org.Initials)
	}
	org.Rename("Ébano Verde")
	if org.Name != "Ébano Verde" || org.Initials != "ÉV" {
		t.Errorf("org = %+v", org)
	}
}

func TestParseBoardTitle(t *testing.T) {
	for _, valid := range []string{"President", "Secretary", "Treasurer", "Director"} {
		if _, ok := ParseBoardTitle(valid); !ok {
			t.Errorf("ParseBoardTitle(%q) rejected", valid)
		}
	}
	for _, invalid := range []string{"president", "CEO", ""} {
		if _, ok := ParseBoardTitle(invalid); ok {
			t.Errorf("ParseBoardTitle(%q) accepted", invalid)
		}
	}
}
