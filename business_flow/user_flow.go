package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFlow handles the admin user directory
type UserFlow interface {
	CreateUser(ctx context.Context, userID uint, req *dto.CreateUserRequest) (*dto.UserDTO, error)
	ListUsers(ctx context.Context, userID uint, req *dto.ListUsersRequest) (*dto.ListUsersResponse, error)
	UpdateUser(ctx context.Context, userID, targetID uint, req *dto.UpdateUserRequest) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, userID, targetID uint) (*dto.DeleteUserResponse, error)
}

// UserFlowImpl implements the user business flow
type UserFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	db         *gorm.DB
	bcryptCost int
}

func NewUserFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	db *gorm.DB,
	bcryptCost int,
) UserFlow {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		db:         db,
		bcryptCost: bcryptCost,
	}
}

// CreateUser provisions an account. A new client is linked to the debtors
// already carrying its full name.
func (f *UserFlowImpl) CreateUser(ctx context.Context, userID uint, req *dto.CreateUserRequest) (*dto.UserDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	if !models.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), f.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:      strings.TrimSpace(req.FullName),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          req.Role,
		Phone:         utils.NilIfEmpty(req.Phone),
		ClientCompany: utils.NilIfEmpty(req.ClientCompany),
		IsActive:      utils.ToPtr(true),
	}

	err = f.inTx(ctx, func(txCtx context.Context) error {
		if err := f.userRepo.Save(txCtx, user); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailAlreadyExists
			}
			return err
		}
		if user.IsClient() {
			if _, err := f.debtorRepo.LinkClient(txCtx, user.FullName, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.Uint("created_by", userID),
	)
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) ListUsers(ctx context.Context, userID uint, req *dto.ListUsersRequest) (*dto.ListUsersResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}

	filter := models.UserFilter{}
	if req != nil && req.Role != "" {
		if !models.IsValidRole(req.Role) {
			return nil, ErrInvalidRole
		}
		filter.Role = utils.ToPtr(req.Role)
	}

	users, err := f.userRepo.ByFilter(ctx, filter, "full_name ASC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(*u))
	}
	return &dto.ListUsersResponse{Users: out}, nil
}

// UpdateUser edits a user. Renaming a client rewrites the client name of its
// linked debtors; a role change to client links matching debtors.
func (f *UserFlowImpl) UpdateUser(ctx context.Context, userID, targetID uint, req *dto.UpdateUserRequest) (*dto.UserDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}

	user, err := f.userRepo.ByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	renamed := false
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name != user.FullName {
			user.FullName = name
			renamed = true
		}
	}
	becameClient := false
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		becameClient = *req.Role == models.RoleClient && !user.IsClient()
		user.Role = *req.Role
	}
	if req.Phone != nil {
		user.Phone = utils.NilIfEmpty(req.Phone)
	}
	if req.ClientCompany != nil {
		user.ClientCompany = utils.NilIfEmpty(req.ClientCompany)
	}
	if req.IsActive != nil {
		user.IsActive = utils.ToPtr(*req.IsActive)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), f.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = utils.UTCNow()

	err = f.inTx(ctx, func(txCtx context.Context) error {
		if err := f.userRepo.Update(txCtx, user); err != nil {
			return err
		}
		if !user.IsClient() {
			return nil
		}
		if renamed {
			if _, err := f.debtorRepo.RenameClient(txCtx, user.ID, user.FullName); err != nil {
				return err
			}
		}
		if renamed || becameClient {
			if _, err := f.debtorRepo.LinkClient(txCtx, user.FullName, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := ToUserDTO(*user)
	return &out, nil
}

// DeleteUser removes a non-admin user and unassigns its debtors. The admin
// guard runs before anything is written.
func (f *UserFlowImpl) DeleteUser(ctx context.Context, userID, targetID uint) (*dto.DeleteUserResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}

	user, err := f.userRepo.ByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsAdmin() {
		return nil, ErrAdminUndeletable
	}

	var unassigned int64
	err = f.inTx(ctx, func(txCtx context.Context) error {
		n, err := f.debtorRepo.UnassignAgent(txCtx, user.ID)
		if err != nil {
			return err
		}
		unassigned = n
		deleted, err := f.userRepo.Delete(txCtx, user.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user deleted",
		zap.Uint("user_id", user.ID),
		zap.Int64("unassigned_debtors", unassigned),
		zap.Uint("deleted_by", userID),
	)
	return &dto.DeleteUserResponse{ID: user.ID, UnassignedDebtors: unassigned}, nil
}

// inTx runs fn in a transaction when a database handle is wired, inline otherwise
func (f *UserFlowImpl) inTx(ctx context.Context, fn func(context.Context) error) error {
	return runInTx(ctx, f.db, fn)
}

func runInTx(ctx context.Context, db *gorm.DB, fn func(context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, db, fn)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
