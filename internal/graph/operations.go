package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// The seven directory operations, each a thin typed mapping onto one
// gateway request. Responses are returned as raw JSON so callers see the
// Graph payload unmodified; argument validation belongs to the caller.

// CreateUser creates a new user in the tenant.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (json.RawMessage, error) {
	return c.Post(ctx, "/users", user)
}

// AssignLicense assigns a license SKU to a user. disabledPlans may be
// nil; Graph requires the field to be present, so it is sent as an empty
// list.
func (c *Client) AssignLicense(ctx context.Context, userID, skuID string, disabledPlans []string) (json.RawMessage, error) {
	if disabledPlans == nil {
		disabledPlans = []string{}
	}
	body := assignLicenseRequest{
		AddLicenses: []LicenseAssignment{
			{SkuID: skuID, DisabledPlans: disabledPlans},
		},
		RemoveLicenses: []string{},
	}
	return c.Post(ctx, "/users/"+url.PathEscape(userID)+"/assignLicense", body)
}

// AddUserToGroup adds a user to a group as a member.
func (c *Client) AddUserToGroup(ctx context.Context, userID, groupID string) (json.RawMessage, error) {
	body := memberReference{
		ODataID: BaseURL + "/directoryObjects/" + url.PathEscape(userID),
	}
	return c.Post(ctx, "/groups/"+url.PathEscape(groupID)+"/members/$ref", body)
}

// ListLicenses lists the license SKUs subscribed to by the tenant.
func (c *Client) ListLicenses(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/subscribedSkus", nil)
}

// ListGroups lists all groups in the tenant.
func (c *Client) ListGroups(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/groups", nil)
}

// GetUser fetches a user by object ID or userPrincipalName.
func (c *Client) GetUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Get(ctx, "/users/"+url.PathEscape(userID), nil)
}

// SearchUsers finds users whose display name or userPrincipalName starts
// with the search term.
func (c *Client) SearchUsers(ctx context.Context, term string) (json.RawMessage, error) {
	filter := fmt.Sprintf("startswith(displayName,'%s') or startswith(userPrincipalName,'%s')",
		escapeODataLiteral(term), escapeODataLiteral(term))
	query := url.Values{}
	query.Set("$filter", filter)
	return c.Get(ctx, "/users", query)
}

// escapeODataLiteral escapes single quotes in an OData string literal.
func escapeODataLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
