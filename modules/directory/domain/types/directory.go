package types

// Group sources determine what kind of member a group selects.
const (
	GroupSourceUsers          = "Users"
	GroupSourceRoles          = "Roles"
	GroupSourceRolesSub       = "Roles & Subordinates"
	GroupSourceGroups         = "Groups"
	GroupSourceTerritories    = "Territories"
	GroupSourceTerritoriesSub = "Territories & Sub-Territories"
)

var GroupSources = map[string]bool{
	GroupSourceUsers:          true,
	GroupSourceRoles:          true,
	GroupSourceRolesSub:       true,
	GroupSourceGroups:         true,
	GroupSourceTerritories:    true,
	GroupSourceTerritoriesSub: true,
}

// Sharing rule sides select groups or roles only.
var SharingSelectors = map[string]bool{
	GroupSourceGroups:   true,
	GroupSourceRoles:    true,
	GroupSourceRolesSub: true,
}

const (
	AccessReadWriteDelete = "Read/Write/Delete"
	AccessReadOnly        = "Read Only"
)

var AccessTypes = map[string]bool{
	AccessReadWriteDelete: true,
	AccessReadOnly:        true,
}

// GroupMember is one element of a group's (or sharing rule side's) selection.
// Exactly the keys relevant to the owning source are populated; the rest stay
// empty and are dropped from the stored document.
type GroupMember struct {
	ID            string `json:"id,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Email         string `json:"email,omitempty"`
	RoleName      string `json:"role_name,omitempty"`
	GroupName     string `json:"group_name,omitempty"`
	TerritoryName string `json:"territory_name,omitempty"`
}

type Group struct {
	ID               string        `json:"id"`
	GroupName        string        `json:"group_name"`
	GroupDescription string        `json:"group_description"`
	GroupSource      string        `json:"group_source"`
	Selected         []GroupMember `json:"selected"`
}

// ModuleRef names one record module covered by a sharing rule.
type ModuleRef struct {
	ModuleName  string `json:"module_name"`
	ModuleLabel string `json:"module_label"`
}

type SharingRule struct {
	ID                        string        `json:"id"`
	Modules                   []ModuleRef   `json:"modules"`
	RecordsSharedFrom         string        `json:"records_shared_from"`
	RecordsSharedFromSelected []GroupMember `json:"records_shared_from_selected"`
	RecordsSharedTo           string        `json:"records_shared_to"`
	RecordsSharedToSelected   []GroupMember `json:"records_shared_to_selected"`
	AccessType                string        `json:"access_type"`
	SuperiorsAllowed          bool          `json:"superiors_allowed"`
}

type User struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Territories []string `json:"territories"`
	Profile     string   `json:"profile"`
}
