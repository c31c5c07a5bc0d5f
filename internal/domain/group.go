package domain

import "time"

// User is a person that can belong to groups and trips.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Group is a named set of users.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []User    `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateGroupRequest represents a create group request. A missing memberIds
// field decodes to nil, which the service rejects; an empty list is allowed.
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// GroupMembershipRequest is the body of the join and leave endpoints.
type GroupMembershipRequest struct {
	UserID string `json:"userId"`
}

// CreateUserRequest represents a create user request.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// GroupModel is the GORM model for the groups table.
type GroupModel struct {
	ID        string      `gorm:"type:varchar(36);primaryKey"`
	Name      string      `gorm:"type:varchar(200);not null"`
	Members   []UserModel `gorm:"many2many:group_members;"`
	CreatedAt time.Time   `gorm:"autoCreateTime"`
}

func (GroupModel) TableName() string {
	return "groups"
}

func (m *UserModel) ToDomain() *User {
	return &User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

func (m *GroupModel) ToDomain() *Group {
	members := make([]User, len(m.Members))
	for i := range m.Members {
		members[i] = *m.Members[i].ToDomain()
	}
	return &Group{
		ID:        m.ID,
		Name:      m.Name,
		Members:   members,
		CreatedAt: m.CreatedAt,
	}
}
