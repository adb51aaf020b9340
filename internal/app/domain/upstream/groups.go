package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// MyGroups returns the user's group memberships including role.
func (c *Client) MyGroups(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error) {
	var groups []models.GroupMembership
	if err := c.getJSON(ctx, tok, "/groups/mine", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

type inviteRequest struct {
	Invitee string `json:"invitee"`
}

// SendInvitation invites a user by username into a group.
func (c *Client) SendInvitation(ctx context.Context, tok session.TokenStore, groupID, invitee string) (*models.Invitation, error) {
	var inv models.Invitation
	path := fmt.Sprintf("/groups/%s/invitations", url.PathEscape(groupID))
	if err := c.postJSON(ctx, tok, path, inviteRequest{Invitee: invitee}, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GroupInvitations lists a group's outstanding invitations (admin view).
func (c *Client) GroupInvitations(ctx context.Context, tok session.TokenStore, groupID string) ([]models.Invitation, error) {
	var invs []models.Invitation
	path := fmt.Sprintf("/groups/%s/invitations", url.PathEscape(groupID))
	if err := c.getJSON(ctx, tok, path, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// PendingInvitations lists invitations addressed to the current user.
func (c *Client) PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error) {
	var invs []models.Invitation
	if err := c.getJSON(ctx, tok, "/invitations/pending", &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// AcceptInvitation accepts an invitation addressed to the current user.
func (c *Client) AcceptInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	path := fmt.Sprintf("/invitations/%s/accept", url.PathEscape(invitationID))
	return c.postJSON(ctx, tok, path, nil, nil)
}

// DeclineInvitation declines an invitation addressed to the current user.
func (c *Client) DeclineInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	path := fmt.Sprintf("/invitations/%s/decline", url.PathEscape(invitationID))
	return c.postJSON(ctx, tok, path, nil, nil)
}

// RevokeInvitation withdraws an invitation the current user sent (group
// admin only).
func (c *Client) RevokeInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	path := fmt.Sprintf("/invitations/%s", url.PathEscape(invitationID))
	return c.do(ctx, tok, http.MethodDelete, path, "", nil, nil)
}

// PendingUsers lists accounts awaiting staff approval.
func (c *Client) PendingUsers(ctx context.Context, tok session.TokenStore) ([]models.PendingUser, error) {
	var users []models.PendingUser
	if err := c.getJSON(ctx, tok, "/staff/pending-users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ApprovePendingUser approves an account (staff only).
func (c *Client) ApprovePendingUser(ctx context.Context, tok session.TokenStore, userID string) error {
	path := fmt.Sprintf("/staff/pending-users/%s/approve", url.PathEscape(userID))
	return c.postJSON(ctx, tok, path, nil, nil)
}
