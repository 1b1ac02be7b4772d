package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	PhoneNumber  *string   `db:"phone_number" json:"phone_number"`
	Address      *string   `db:"address" json:"address"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserFilter narrows a member listing. ExcludeID removes the calling
// admin's own record from the page.
type UserFilter struct {
	ExcludeID int64
	Search    string
	Page      int
	PerPage   int
}

type UserRepository interface {
	FindByID(id int64) (*User, error)
	FindByEmail(email string) (*User, error)
	EmailTaken(email string, excludeID int64) (bool, error)
	List(filter UserFilter) ([]*User, int64, error)
	Create(user *User) error
	Update(user *User) error
	Delete(id int64) error
}

// TokenRepository stores opaque bearer tokens with a TTL.
type TokenRepository interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber *string
	Address     *string
}

type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Role        Role
	PhoneNumber *string
	Address     *string
}

// UpdateUserInput uses pointers so absent fields leave the stored value
// untouched.
type UpdateUserInput struct {
	Name        *string
	Email       *string
	Password    *string
	PhoneNumber *string
	Address     *string
}

// UpdateProfileInput is the self-service subset: email is immutable after
// registration.
type UpdateProfileInput struct {
	Name        *string
	PhoneNumber *string
	Address     *string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*User, error)
	UpdateProfile(actor *User, input UpdateProfileInput) (*User, error)
	ChangePassword(actor *User, currentPassword, newPassword string) error
}

type MemberService interface {
	ListMembers(actor *User, filter UserFilter) ([]*User, int64, error)
	CreateMember(actor *User, input CreateUserInput) (*User, error)
	GetMember(actor *User, id int64) (*User, error)
	UpdateMember(actor *User, id int64, input UpdateUserInput) (*User, error)
	DeleteMember(actor *User, id int64) error
}
