// Package rolegate decides which top-level sections of the site a user may
// see, and which tab is selected by default. It is a pure computation so the
// routing policy stays testable independent of rendering.
package rolegate

// Tab identifiers known to the frontend.
const (
	TabOverview     = "overview"
	TabMembers      = "members"
	TabInvitations  = "invitations"
	TabSiteAdmin    = "site-admin"
	TabUserApproval = "user-approval"
)

// StaffPath is the staff-only route prefix.
const StaffPath = "/staff"

// staffOnlyTabs are never shown to non-staff users, regardless of group
// admin status.
var staffOnlyTabs = map[string]bool{
	TabSiteAdmin:    true,
	TabUserApproval: true,
}

// Input carries the role flags and route needed to gate an admin surface.
type Input struct {
	IsStaff                bool
	AdministeredGroupCount int
	RequestedPath          string
	AvailableTabs          []string
}

// Result is the computed view policy. When Allowed is false the caller must
// redirect away instead of rendering.
type Result struct {
	VisibleTabs []string
	DefaultTab  string
	Allowed     bool
}

// Evaluate computes the visible tab set and default selection. Deterministic:
// identical input always yields identical output.
func Evaluate(in Input) Result {
	res := Result{
		Allowed: in.IsStaff || in.AdministeredGroupCount > 0,
	}

	res.VisibleTabs = make([]string, 0, len(in.AvailableTabs))
	for _, tab := range in.AvailableTabs {
		if staffOnlyTabs[tab] && !in.IsStaff {
			continue
		}
		res.VisibleTabs = append(res.VisibleTabs, tab)
	}

	res.DefaultTab = defaultTab(in, res.VisibleTabs)
	return res
}

func defaultTab(in Input, visible []string) string {
	if in.IsStaff && in.RequestedPath == StaffPath {
		return TabSiteAdmin
	}
	for _, tab := range visible {
		if tab == TabOverview {
			return TabOverview
		}
	}
	// Overview not offered; fall back to the first visible tab.
	if len(visible) > 0 {
		return visible[0]
	}
	return ""
}
