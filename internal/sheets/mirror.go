package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Mirror keeps per-user tabs of the spreadsheet loosely in sync with the
// relational store. All methods return errors for the caller to log and
// drop; nothing here retries.
type Mirror struct {
	ops      ops
	template string // Title of the template tab cloned for new users.
}

// NewMirror constructs a Mirror over the given client.
func NewMirror(client *Client, templateTab string) *Mirror {
	return newMirror(client, templateTab)
}

func newMirror(o ops, templateTab string) *Mirror {
	templateTab = strings.TrimSpace(templateTab)
	if templateTab == "" {
		templateTab = "Template"
	}
	return &Mirror{ops: o, template: templateTab}
}

// EnsureUserTab returns the title of the user's tab, cloning the template
// when no tab matches. A second call with the same name finds the
// previously created tab and does not clone again.
func (m *Mirror) EnsureUserTab(ctx context.Context, displayName string) (string, error) {
	title := SanitizeTabTitle(displayName)

	tabs, errList := m.ops.ListTabs(ctx)
	if errList != nil {
		return "", errList
	}

	// Accept the exact title or an earlier disambiguated clone of it.
	suffixed := regexp.MustCompile(`^` + regexp.QuoteMeta(title) + ` \(\d+\)$`)
	taken := make(map[string]bool, len(tabs))
	var templateID int64
	templateFound := false
	for _, tab := range tabs {
		taken[tab.Title] = true
		if tab.Title == m.template {
			templateID = tab.ID
			templateFound = true
		}
	}
	for _, tab := range tabs {
		// The template itself is never a user tab, even when the user's
		// sanitized name collides with its title.
		if tab.Title == m.template {
			continue
		}
		if tab.Title == title || suffixed.MatchString(tab.Title) {
			return tab.Title, nil
		}
	}

	if !templateFound {
		return "", fmt.Errorf("sheets: template tab %q not found", m.template)
	}

	candidate := title
	for n := 1; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)", title, n)
	}
	if errClone := m.ops.DuplicateTab(ctx, templateID, candidate); errClone != nil {
		return "", errClone
	}
	return candidate, nil
}
