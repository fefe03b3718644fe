package community

import "time"

// Community is the scoping unit for events: one owner, zero-or-more members.
// Archiving is a soft delete; archived communities are excluded from public
// listings and from the digest job but never physically removed.
type Community struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// Archived reports whether the community has been soft-deleted.
func (c *Community) Archived() bool {
	return c.ArchivedAt != nil
}

// Membership links a user to a community. The pair (UserID, CommunityID) is
// unique. The owner holds no membership row; ownership implies membership.
type Membership struct {
	UserID      string    `json:"user_id"`
	CommunityID string    `json:"community_id"`
	JoinedAt    time.Time `json:"joined_at"`
}

// CreateInput contains the payload required to create a community.
type CreateInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// UpdateInput carries the owner-editable fields; nil means "leave unchanged".
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PrivateProfile holds data visible only to members and the owner.
type PrivateProfile struct {
	MemberCount int `json:"member_count"`
}

// Profile is the getBySlug response: public data always, private data when
// the caller belongs to the community.
type Profile struct {
	Community *Community      `json:"community"`
	Private   *PrivateProfile `json:"private,omitempty"`
	IsMember  bool            `json:"is_member"`
	IsOwner   bool            `json:"is_owner"`
}
