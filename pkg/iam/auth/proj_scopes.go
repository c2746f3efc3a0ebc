package auth

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - Hiring pipelines and intake forms
// ============================================================================

const (
	// Hiring pipeline scopes
	ScopePipelinesAll    = "pipelines:*"
	ScopePipelinesRead   = "pipelines:read"
	ScopePipelinesWrite  = "pipelines:write"  // Create, edit, move stage/status
	ScopePipelinesDelete = "pipelines:delete" // Delete hiring processes

	// Application form scopes
	ScopeFormsAll    = "forms:*"
	ScopeFormsRead   = "forms:read"
	ScopeFormsWrite  = "forms:write"
	ScopeFormsDelete = "forms:delete"
	ScopeFormsStats  = "forms:stats" // Submission rollups
)

// DomainScopeCategories organizes domain-specific scopes
var DomainScopeCategories = map[string][]string{
	"Pipelines": {
		ScopePipelinesAll,
		ScopePipelinesRead,
		ScopePipelinesWrite,
		ScopePipelinesDelete,
	},
	"Forms": {
		ScopeFormsAll,
		ScopeFormsRead,
		ScopeFormsWrite,
		ScopeFormsDelete,
		ScopeFormsStats,
	},
}

// DomainScopeDescriptions provides descriptions for domain scopes
var DomainScopeDescriptions = map[string]string{
	ScopePipelinesAll:    "Full access to hiring pipelines",
	ScopePipelinesRead:   "View hiring pipelines",
	ScopePipelinesWrite:  "Create hiring pipelines and move them through stages",
	ScopePipelinesDelete: "Delete hiring pipelines",

	ScopeFormsAll:    "Full access to application forms",
	ScopeFormsRead:   "View application forms",
	ScopeFormsWrite:  "Create and edit application forms",
	ScopeFormsDelete: "Delete application forms",
	ScopeFormsStats:  "View application form statistics",
}

// DomainScopeGroups defines domain-specific role groupings
var DomainScopeGroups = map[string][]string{
	"recruiter": {
		ScopePipelinesAll,
		ScopeFormsAll,
	},
	"hiring_manager": {
		ScopePipelinesRead,
		ScopePipelinesWrite,
		ScopeFormsRead,
		ScopeFormsStats,
	},
	"intake_integration": {
		ScopeFormsRead,
	},
}
