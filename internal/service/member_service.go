package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"shelftrack/internal/domain"
	"shelftrack/internal/validation"
	"shelftrack/pkg/logger"
)

type MemberService struct {
	users      domain.UserRepository
	borrowings domain.BorrowingRepository
	audit      domain.AuditLogService
	logger     logger.Logger
}

func NewMemberService(users domain.UserRepository, borrowings domain.BorrowingRepository, audit domain.AuditLogService, log logger.Logger) domain.MemberService {
	return &MemberService{
		users:      users,
		borrowings: borrowings,
		audit:      audit,
		logger:     log,
	}
}

func (s *MemberService) ListMembers(actor *domain.User, filter domain.UserFilter) ([]*domain.User, int64, error) {
	filter.ExcludeID = actor.ID
	return s.users.List(filter)
}

func (s *MemberService) CreateMember(actor *domain.User, input domain.CreateUserInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}

	v := validation.New()
	v.Check(input.Name != "", "name", "name is required")
	v.Check(validation.MaxChars(input.Name, 255), "name", "name must not exceed 255 characters")
	v.Check(input.Email != "", "email", "email is required")
	v.Check(validation.IsEmail(input.Email), "email", "email must be a valid email address")
	v.Check(validation.MinChars(input.Password, 6), "password", "password must be at least 6 characters")
	v.Check(role == domain.RoleAdmin || role == domain.RoleMember, "role", "role must be admin or member")

	if v.Valid() {
		taken, err := s.users.EmailTaken(input.Email, 0)
		if err != nil {
			return nil, fmt.Errorf("checking email uniqueness: %w", err)
		}
		v.Check(!taken, "email", "email is already in use")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.audit.Record(domain.EntityTypeUser, user.ID, domain.ActionTypeCreate, fmt.Sprintf("created %s account for %s", user.Role, user.Email))

	return user, nil
}

func (s *MemberService) GetMember(actor *domain.User, id int64) (*domain.User, error) {
	if id == actor.ID {
		return nil, &domain.ForbiddenError{Reason: "use the profile endpoint to view your own account"}
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, &domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (s *MemberService) UpdateMember(actor *domain.User, id int64, input domain.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, &domain.NotFoundError{Resource: "user"}
	}
	if user.Role != domain.RoleMember {
		return nil, &domain.ForbiddenError{Reason: "only member accounts can be managed here"}
	}

	v := validation.New()
	if input.Name != nil {
		v.Check(*input.Name != "", "name", "name is required")
		v.Check(validation.MaxChars(*input.Name, 255), "name", "name must not exceed 255 characters")
	}
	if input.Email != nil {
		v.Check(validation.IsEmail(*input.Email), "email", "email must be a valid email address")
		if v.Valid() {
			taken, err := s.users.EmailTaken(*input.Email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("checking email uniqueness: %w", err)
			}
			v.Check(!taken, "email", "email is already in use")
		}
	}
	if input.Password != nil {
		v.Check(validation.MinChars(*input.Password, 6), "password", "password must be at least 6 characters")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.Address != nil {
		user.Address = input.Address
	}

	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.audit.Record(domain.EntityTypeUser, user.ID, domain.ActionTypeUpdate, fmt.Sprintf("updated member %s", user.Email))

	return user, nil
}

func (s *MemberService) DeleteMember(actor *domain.User, id int64) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return &domain.NotFoundError{Resource: "user"}
	}
	if user.Role != domain.RoleMember {
		return &domain.ForbiddenError{Reason: "only member accounts can be managed here"}
	}

	active, err := s.borrowings.CountActiveByUser(id)
	if err != nil {
		return fmt.Errorf("counting active borrowings: %w", err)
	}
	if active > 0 {
		return &domain.ConflictError{Reason: "member has active borrowings and cannot be deleted"}
	}

	// Returned loan history cascades away with the account.
	if err := s.users.Delete(id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.audit.Record(domain.EntityTypeUser, id, domain.ActionTypeDelete, fmt.Sprintf("deleted member %s", user.Email))

	s.logger.Info("Member deleted", map[string]interface{}{
		"user_id":    id,
		"deleted_by": actor.ID,
	})

	return nil
}
