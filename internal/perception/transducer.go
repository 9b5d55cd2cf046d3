package perception

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"gemma/internal/logging"
	"gemma/internal/types"
)

// ReplyParse is the structured signal extracted from one model reply.
// Nil pointer fields mean "no update for that field".
type ReplyParse struct {
	CleanText string
	Step      *types.Step
	Palette   *types.BrandingData
	OrgName   *string
	Provision *string
}

var (
	stepMarkerRe    = regexp.MustCompile(`\[STEP:\s*(\d+)\]`)
	orgNameMarkerRe = regexp.MustCompile(`\[ORG_NAME:\s*([^\]]+)\]`)
	jsonBlockRe     = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:[a-zA-Z]*\\n)?(.*?)```")
)

// paletteAck replaces the raw palette JSON in the displayed text.
const paletteAck = "(I have updated the visual brand panel for you!)"

// paletteJSON is the wire shape of a palette block.
type paletteJSON struct {
	PaletteName string        `json:"palette_name"`
	Mood        string        `json:"mood"`
	Colors      []types.Color `json:"colors"`
}

// ParseReply extracts step, org-name, palette, and legal-provision
// signals from one model reply. currentStep drives the context-sensitive
// provision rule. The function is pure: same text and step in, same
// parse out; malformed directives degrade to "no update", never an error.
func ParseReply(text string, currentStep types.Step) ReplyParse {
	out := ReplyParse{}
	clean := text

	// Step directive. Only the first valid occurrence wins; every
	// occurrence is stripped from display regardless of validity.
	for _, m := range stepMarkerRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || !types.ValidStep(n) {
			logging.PerceptionWarn("ignoring invalid step directive %q", m[0])
			continue
		}
		if out.Step == nil {
			step := types.Step(n)
			out.Step = &step
		}
	}
	clean = stepMarkerRe.ReplaceAllString(clean, "")

	// Organization-name directive. Quotes are stripped; blank values
	// are dropped.
	for _, m := range orgNameMarkerRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		name = strings.Trim(name, `"'`)
		name = strings.TrimSpace(name)
		if name == "" {
			logging.PerceptionWarn("ignoring empty org name directive")
			continue
		}
		if out.OrgName == nil {
			out.OrgName = &name
		}
	}
	clean = orgNameMarkerRe.ReplaceAllString(clean, "")

	// Palette block: first json-tagged fence holding an object with a
	// colors array.
	hasJSONBlock := false
	if m := jsonBlockRe.FindStringSubmatch(clean); m != nil {
		hasJSONBlock = true
		var p paletteJSON
		if err := json.Unmarshal([]byte(m[1]), &p); err != nil {
			logging.PerceptionWarn("palette block is not valid JSON: %v", err)
		} else if len(p.Colors) == 0 {
			logging.PerceptionWarn("palette block has no colors array, ignoring")
		} else {
			if p.PaletteName == "" {
				p.PaletteName = "Custom Palette"
			}
			if p.Mood == "" {
				p.Mood = "Generated by Gemma"
			}
			out.Palette = &types.BrandingData{
				PaletteName: p.PaletteName,
				Mood:        p.Mood,
				Colors:      p.Colors,
			}
		}
		// The raw JSON never reaches the transcript, valid or not.
		clean = strings.Replace(clean, m[0], paletteAck, 1)
	}

	// Legal-provision block: only in the incorporation step or when the
	// reply names supplemental provisions, and never when a json block
	// already claimed the fence syntax in this reply.
	wantsProvision := currentStep == types.StepIncorporation || strings.Contains(text, "Supplemental Provisions")
	if wantsProvision && !hasJSONBlock {
		if m := fencedBlockRe.FindStringSubmatch(clean); m != nil {
			provision := strings.TrimSpace(m[1])
			if provision != "" {
				out.Provision = &provision
				clean = strings.Replace(clean, m[0], "", 1)
			}
		}
	}

	out.CleanText = strings.TrimSpace(clean)
	return out
}
