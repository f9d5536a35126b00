package graph

// User represents a directory user from Microsoft Graph.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	MailNickname      string `json:"mailNickname"`
	AccountEnabled    bool   `json:"accountEnabled"`
}

// PasswordProfile is the initial password configuration for a new user.
type PasswordProfile struct {
	ForceChangePasswordNextSignIn bool   `json:"forceChangePasswordNextSignIn"`
	Password                      string `json:"password"`
}

// NewUser is the request body for creating a user.
type NewUser struct {
	AccountEnabled    bool            `json:"accountEnabled"`
	DisplayName       string          `json:"displayName"`
	MailNickname      string          `json:"mailNickname"`
	UserPrincipalName string          `json:"userPrincipalName"`
	PasswordProfile   PasswordProfile `json:"passwordProfile"`
}

// LicenseAssignment identifies a license SKU to add, with optional
// service plans disabled.
type LicenseAssignment struct {
	SkuID         string   `json:"skuId"`
	DisabledPlans []string `json:"disabledPlans"`
}

// assignLicenseRequest is the body for POST /users/{id}/assignLicense.
// Graph requires removeLicenses to be present even when empty.
type assignLicenseRequest struct {
	AddLicenses    []LicenseAssignment `json:"addLicenses"`
	RemoveLicenses []string            `json:"removeLicenses"`
}
