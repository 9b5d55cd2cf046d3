package browser

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"gemma/internal/logging"
	"gemma/internal/types"
)

var (
	photoURLRe   = regexp.MustCompile(`https://media\.licdn\.com/dms/image/[^"'\s]+`)
	profileURLRe = regexp.MustCompile(`https://www\.linkedin\.com/in/[^"'\s]+`)
	headlineRe   = regexp.MustCompile(`"headline":"([^"]+)"`)
)

// SearchPeople looks up a public LinkedIn profile for a full name by
// scraping the people-search results page in a throwaway session.
// Best-effort: a nil profile with nil error means nothing usable was
// found. Implements types.PeopleSearcher.
func (m *SessionManager) SearchPeople(ctx context.Context, fullName string) (*types.PersonProfile, error) {
	searchURL := fmt.Sprintf("https://www.linkedin.com/search/results/people/?keywords=%s", url.QueryEscape(fullName))

	session, err := m.CreateSession(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("people search session: %w", err)
	}
	defer func() {
		if err := m.CloseSession(session.ID); err != nil {
			logging.BrowserWarn("closing people search session: %v", err)
		}
	}()

	m.mu.RLock()
	record := m.sessions[session.ID]
	m.mu.RUnlock()
	if record == nil {
		return nil, fmt.Errorf("people search session vanished")
	}

	page := record.page.Context(ctx).Timeout(m.cfg.NavigationTimeout())
	if err := page.WaitLoad(); err != nil {
		logging.BrowserWarn("people search page load: %v", err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("people search page content: %w", err)
	}

	profile := extractProfile(html, fullName)
	if profile == nil {
		logging.BrowserDebug("no profile found for %s", fullName)
		return nil, nil
	}
	logging.BrowserDebug("profile found for %s: %s", fullName, profile.ProfileURL)
	return profile, nil
}

// extractProfile pulls the first profile photo, profile URL, and
// headline out of a search results page. Returns nil when none of the
// three signals are present.
func extractProfile(html, fullName string) *types.PersonProfile {
	profile := &types.PersonProfile{Name: fullName}
	found := false

	if m := photoURLRe.FindString(html); m != "" {
		profile.PhotoURL = m
		found = true
	}
	if m := profileURLRe.FindString(html); m != "" {
		profile.ProfileURL = m
		found = true
	}
	if m := headlineRe.FindStringSubmatch(html); m != nil {
		profile.Headline = m[1]
		found = true
	}

	if !found {
		return nil
	}
	return profile
}
