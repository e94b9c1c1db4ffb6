package types

// RootRoleName is the single root of the reporting hierarchy. It cannot be
// deleted or renamed.
const RootRoleName = "CEO"

type Role struct {
	ID                 string   `json:"id"`
	RoleName           string   `json:"role_name"`
	ReportsTo          string   `json:"reports_to"`
	ShareDataWithPeers bool     `json:"share_data_with_peers"`
	Description        string   `json:"description"`
	AssociatedUsers    []string `json:"associated_users"`
}
