package types

// Operator literals are a stable contract with stored account rules; they are
// compared verbatim, never parsed.
const (
	OpEquals         = "= (equals)"
	OpNotEquals      = "! = (does not equal)"
	OpLessThan       = "< (less than)"
	OpLessOrEqual    = "<= (less than equal to)"
	OpGreaterThan    = "> (greater than)"
	OpGreaterOrEqual = ">= (greater than equal to)"
	OpBetween        = "between"
	OpNotBetween     = "not between"
	OpIsEmpty        = "is empty"
	OpIsNotEmpty     = "is not empty"
	OpContains       = "contains"
	OpNotContains    = "does not contain"
	OpStartsWith     = "starts with"
	OpEndsWith       = "ends with"
)

// UserSnapshot is the denormalized copy of a user embedded in a territory
// document. It is display data; authoritative membership lives on the user.
type UserSnapshot struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AccountRule is one numbered predicate of a territory, referenced from the
// criteria order by rule number.
type AccountRule struct {
	RuleNumber int    `json:"rule_number"`
	Field      string `json:"field"`
	Operator   string `json:"operator"`
	TextValue  string `json:"text_value"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type Territory struct {
	ID               string         `json:"id"`
	TerritoryName    string         `json:"territory_name"`
	ParentTerritory  string         `json:"parent_territory"`
	RootTerritory    bool           `json:"root_territory"`
	TerritoryManager UserSnapshot   `json:"territory_manager"`
	Users            []UserSnapshot `json:"users"`
	Permissions      string         `json:"permissions"`
	Description      string         `json:"description"`
	AccountRules     []AccountRule  `json:"account_rules"`
	CriteriaOrder    string         `json:"criteria_order"`
	Accounts         []string       `json:"accounts"`
}
