package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/graphadmin/internal/graph"
)

// Tool inputs mirror the original tool schemas: snake_case argument
// names, the same required fields, and the same defaults.

type createUserInput struct {
	DisplayName         string `json:"display_name" jsonschema:"the display name for the user"`
	UserPrincipalName   string `json:"user_principal_name" jsonschema:"the user principal name (email format, e.g. user@domain.com)"`
	MailNickname        string `json:"mail_nickname" jsonschema:"the mail alias for the user"`
	Password            string `json:"password" jsonschema:"the initial password for the user"`
	AccountEnabled      *bool  `json:"account_enabled,omitempty" jsonschema:"whether the account is enabled (default true)"`
	ForceChangePassword *bool  `json:"force_change_password,omitempty" jsonschema:"whether user must change password on first login (default true)"`
}

type assignLicenseInput struct {
	UserID        string   `json:"user_id" jsonschema:"the user ID or user principal name"`
	SkuID         string   `json:"sku_id" jsonschema:"the SKU ID of the license to assign"`
	DisabledPlans []string `json:"disabled_plans,omitempty" jsonschema:"list of service plan IDs to disable (optional)"`
}

type addUserToGroupInput struct {
	UserID  string `json:"user_id" jsonschema:"the user ID or user principal name"`
	GroupID string `json:"group_id" jsonschema:"the group ID"`
}

type getUserInput struct {
	UserID string `json:"user_id" jsonschema:"the user ID or user principal name"`
}

type searchUserInput struct {
	SearchTerm string `json:"search_term" jsonschema:"the search term to look for in display names or emails"`
}

type emptyInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_user",
		Description: "Create a new user in Microsoft 365",
	}, s.createUser)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "assign_license",
		Description: "Assign a license to a user",
	}, s.assignLicense)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_user_to_group",
		Description: "Add a user to a group",
	}, s.addUserToGroup)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_available_licenses",
		Description: "List all available licenses (SKUs) in the tenant",
	}, s.listLicenses)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_groups",
		Description: "List all groups in the tenant",
	}, s.listGroups)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_user",
		Description: "Get details for a specific user",
	}, s.getUser)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_user",
		Description: "Search for users by display name or email",
	}, s.searchUser)
}

func (s *Server) createUser(ctx context.Context, _ *mcp.CallToolRequest, in createUserInput) (*mcp.CallToolResult, any, error) {
	if err := requireFields(map[string]string{
		"display_name":        in.DisplayName,
		"user_principal_name": in.UserPrincipalName,
		"mail_nickname":       in.MailNickname,
		"password":            in.Password,
	}); err != nil {
		return errorResult(err), nil, nil
	}
	if !strings.Contains(in.UserPrincipalName, "@") {
		return errorResult(fmt.Errorf("user_principal_name must be email-shaped, got %q", in.UserPrincipalName)), nil, nil
	}

	user := graph.NewUser{
		AccountEnabled:    boolOrDefault(in.AccountEnabled, true),
		DisplayName:       in.DisplayName,
		MailNickname:      in.MailNickname,
		UserPrincipalName: in.UserPrincipalName,
		PasswordProfile: graph.PasswordProfile{
			ForceChangePasswordNextSignIn: boolOrDefault(in.ForceChangePassword, true),
			Password:                      in.Password,
		},
	}

	payload, err := s.graph.CreateUser(ctx, user)
	s.record(ctx, "create_user", in.UserPrincipalName, err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("User created successfully:", payload), nil, nil
}

func (s *Server) assignLicense(ctx context.Context, _ *mcp.CallToolRequest, in assignLicenseInput) (*mcp.CallToolResult, any, error) {
	if err := requireFields(map[string]string{
		"user_id": in.UserID,
		"sku_id":  in.SkuID,
	}); err != nil {
		return errorResult(err), nil, nil
	}

	payload, err := s.graph.AssignLicense(ctx, in.UserID, in.SkuID, in.DisabledPlans)
	s.record(ctx, "assign_license", in.UserID, err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("License assigned successfully:", payload), nil, nil
}

func (s *Server) addUserToGroup(ctx context.Context, _ *mcp.CallToolRequest, in addUserToGroupInput) (*mcp.CallToolResult, any, error) {
	if err := requireFields(map[string]string{
		"user_id":  in.UserID,
		"group_id": in.GroupID,
	}); err != nil {
		return errorResult(err), nil, nil
	}

	_, err := s.graph.AddUserToGroup(ctx, in.UserID, in.GroupID)
	s.record(ctx, "add_user_to_group", in.UserID, err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("User added to group successfully", nil), nil, nil
}

func (s *Server) listLicenses(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	payload, err := s.graph.ListLicenses(ctx)
	s.record(ctx, "list_available_licenses", "", err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("Available licenses:", payload), nil, nil
}

func (s *Server) listGroups(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	payload, err := s.graph.ListGroups(ctx)
	s.record(ctx, "list_groups", "", err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("Groups:", payload), nil, nil
}

func (s *Server) getUser(ctx context.Context, _ *mcp.CallToolRequest, in getUserInput) (*mcp.CallToolResult, any, error) {
	if err := requireFields(map[string]string{"user_id": in.UserID}); err != nil {
		return errorResult(err), nil, nil
	}

	payload, err := s.graph.GetUser(ctx, in.UserID)
	s.record(ctx, "get_user", in.UserID, err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("User details:", payload), nil, nil
}

func (s *Server) searchUser(ctx context.Context, _ *mcp.CallToolRequest, in searchUserInput) (*mcp.CallToolResult, any, error) {
	if err := requireFields(map[string]string{"search_term": in.SearchTerm}); err != nil {
		return errorResult(err), nil, nil
	}

	payload, err := s.graph.SearchUsers(ctx, in.SearchTerm)
	s.record(ctx, "search_user", in.SearchTerm, err)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return result("Search results:", payload), nil, nil
}

// requireFields returns an error naming the first empty required field.
func requireFields(fields map[string]string) error {
	// Deterministic order for error messages.
	names := []string{
		"display_name", "user_principal_name", "mail_nickname", "password",
		"user_id", "sku_id", "group_id", "search_term",
	}
	for _, name := range names {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			return fmt.Errorf("missing required argument: %s", name)
		}
	}
	return nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
