package graph

// Group represents a directory group from Microsoft Graph.
type Group struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description"`
	Mail            string   `json:"mail"`
	MailEnabled     bool     `json:"mailEnabled"`
	SecurityEnabled bool     `json:"securityEnabled"`
	GroupTypes      []string `json:"groupTypes"`
}

// memberReference is the body for POST /groups/{id}/members/$ref.
// Graph expects an @odata.id link to the directory object being added.
type memberReference struct {
	ODataID string `json:"@odata.id"`
}
