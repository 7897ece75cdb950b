package models

// Capability names a single privileged action. Authorization checks ask for
// the capability they need rather than comparing roles inline.
type Capability string

const (
	CapApproveProjects     Capability = "approve_projects"
	CapManageTickets       Capability = "manage_tickets"
	CapDeliverReports      Capability = "deliver_reports"
	CapViewAllTransactions Capability = "view_all_transactions"
	CapDeleteAnyProject    Capability = "delete_any_project"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapApproveProjects:     true,
		CapManageTickets:       true,
		CapDeliverReports:      true,
		CapViewAllTransactions: true,
		CapDeleteAnyProject:    true,
	},
	RoleSupport: {
		CapManageTickets: true,
	},
	RoleEvaluator: {
		CapDeliverReports: true,
	},
}

// Has reports whether the role grants the given capability.
func (r Role) Has(c Capability) bool {
	return roleCapabilities[r][c]
}
