package types

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry in the conversation transcript. Messages are
// immutable once created; the transcript is append-only.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage creates a transcript message stamped with the current time.
func NewMessage(id string, role Role, text string) Message {
	return Message{
		ID:        id,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Color is one swatch of a brand palette.
type Color struct {
	Role string `json:"role"`
	Hex  string `json:"hex"`
	Name string `json:"name"`
}

// BrandingData is a complete brand palette. It is replaced wholesale
// whenever a new valid palette block is parsed, never merged.
type BrandingData struct {
	PaletteName string  `json:"paletteName"`
	Mood        string  `json:"mood"`
	Colors      []Color `json:"colors"`
}

// OrgNamePlaceholder is the organization name before the user has
// provided one.
const OrgNamePlaceholder = "TBD"

// Organization identifies the nonprofit being formed.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Plan     string `json:"plan"`
	Initials string `json:"initials"`
}

// NewOrganization creates an organization with the placeholder name.
func NewOrganization(id string) Organization {
	return Organization{
		ID:       id,
		Name:     OrgNamePlaceholder,
		Plan:     "Free",
		Initials: DeriveInitials(OrgNamePlaceholder),
	}
}

// Rename sets the organization name and recomputes the initials.
func (o *Organization) Rename(name string) {
	o.Name = name
	o.Initials = DeriveInitials(name)
}

// DeriveInitials builds a two-letter monogram from an organization name:
// the first letter of the first word plus the first letter of the last
// word, uppercased ("Wear it Forward" -> "WF", "Tech for Good" -> "TG").
// Single-word names yield a single letter.
func DeriveInitials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	first := firstLetter(fields[0])
	if len(fields) == 1 {
		return first
	}
	return first + firstLetter(fields[len(fields)-1])
}

// firstLetter returns the first rune of a word, uppercased. Words may
// start with a multibyte character ("Ébano" -> "É").
func firstLetter(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	return strings.ToUpper(string(r))
}

// BoardTitle is a board member role. President and Secretary are
// required for a Texas nonprofit but uniqueness is not enforced here.
type BoardTitle string

const (
	TitlePresident BoardTitle = "President"
	TitleSecretary BoardTitle = "Secretary"
	TitleTreasurer BoardTitle = "Treasurer"
	TitleDirector  BoardTitle = "Director"
)

// ParseBoardTitle validates a title string from a tool call.
func ParseBoardTitle(s string) (BoardTitle, bool) {
	switch BoardTitle(s) {
	case TitlePresident, TitleSecretary, TitleTreasurer, TitleDirector:
		return BoardTitle(s), true
	}
	return "", false
}

// BoardMember is one entry in the board roster. The profile fields are
// best-effort enrichment from people search and may be empty.
type BoardMember struct {
	Name        string     `json:"name"`
	Title       BoardTitle `json:"title"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	LinkedInURL string     `json:"linkedInUrl,omitempty"`
	Headline    string     `json:"headline,omitempty"`
}

// PersonProfile is the result of a people-search lookup.
type PersonProfile struct {
	Name       string `json:"name"`
	PhotoURL   string `json:"photoUrl,omitempty"`
	Headline   string `json:"headline,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// CampaignData tracks the campaign-studio workflow for one uploaded
// document.
type CampaignData struct {
	UploadedFileName string   `json:"uploadedFileName,omitempty"`
	ExtractedQuotes  []string `json:"extractedQuotes"`
	GeneratedImages  []string `json:"generatedImages"`
	IsAnalyzing      bool     `json:"isAnalyzing"`
	IsGenerating     bool     `json:"isGenerating"`
}
