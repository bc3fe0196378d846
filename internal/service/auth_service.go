package service

import (
	"context"
	"errors"
	"strings"

	"pharmacare/internal/apierror"
	"pharmacare/internal/auth"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 12

const (
	msgBadCredentials         = "Invalid email or password"
	msgPharmacyBadCredentials = "Authentication failed: Invalid email or password"
	msgEmailInUse             = "Email is already in use!"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error)
	PharmacySignup(ctx context.Context, req dto.PharmacySignupRequest) (*dto.AuthResponse, error)
	PharmacyLogin(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Validate(ctx context.Context, p dto.Principal) (*dto.ValidateResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, p dto.Principal, req dto.LogoutRequest) error
}

type authService struct {
	users      repository.UserRepository
	pharmacies repository.PharmacyRepository
	tokens     auth.TokenStore
	jwt        *auth.JWT
}

func NewAuthService(
	users repository.UserRepository,
	pharmacies repository.PharmacyRepository,
	tokens auth.TokenStore,
	jwt *auth.JWT,
) AuthService {
	return &authService{users: users, pharmacies: pharmacies, tokens: tokens, jwt: jwt}
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	return string(hash), err
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// emailTaken reports a lost race on users.email the same way as the
// up-front existence check.
func emailTaken(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.BadRequest(msgEmailInUse)
	}
	return err
}

// authenticate loads the user and checks the password. Every failure returns
// the same Unauthorized message.
func (s *authService) authenticate(ctx context.Context, email, password, msg string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("%s", msg)
		}
		return nil, apierror.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apierror.Unauthorized("%s", msg)
	}
	if !user.Enabled {
		return nil, apierror.Unauthorized("User account is disabled")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password, msgBadCredentials)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RoleUser) || user.HasRole(model.RolePharmacy) {
		return nil, apierror.Unauthorized("Access denied: this account must sign in through the pharmacy login")
	}
	return s.issueForUser(ctx, user)
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Enabled:      true,
	}
	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		taken, err := s.users.ExistsByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if taken {
			return apierror.BadRequest(msgEmailInUse)
		}
		roles, err := s.users.FindRoles(ctx, tx, model.RoleUser)
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			return errors.New("role ROLE_USER is not seeded")
		}
		user.Roles = roles
		if err := s.users.Create(ctx, tx, user); err != nil {
			return emailTaken(err)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.issueForUser(ctx, user)
}

// PharmacySignup creates the administrator, the pharmacy and the ADMIN staff
// row in one transaction.
func (s *authService) PharmacySignup(ctx context.Context, req dto.PharmacySignupRequest) (*dto.AuthResponse, error) {
	adminEmail := normalizeEmail(req.AdminEmail)
	pharmacyEmail := normalizeEmail(req.PharmacyEmail)
	hash, err := HashPassword(req.AdminPassword)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	var (
		user     *model.User
		pharmacy *model.Pharmacy
		staff    *model.PharmacyStaff
	)
	err = runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		taken, err := s.users.ExistsByEmail(ctx, tx, adminEmail)
		if err != nil {
			return err
		}
		if taken {
			return apierror.BadRequest(msgEmailInUse)
		}
		if pharmacyEmail != adminEmail {
			taken, err = s.users.ExistsByEmail(ctx, tx, pharmacyEmail)
			if err != nil {
				return err
			}
			if taken {
				return apierror.BadRequest("Pharmacy email is already in use!")
			}
		}
		exists, err := s.pharmacies.ExistsByRegistrationNumber(ctx, tx, req.RegistrationNumber)
		if err != nil {
			return err
		}
		if exists {
			return apierror.Conflict("Pharmacy with registration number %s already exists", req.RegistrationNumber)
		}

		roles, err := s.users.FindRoles(ctx, tx, model.RolePharmacy)
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			return errors.New("role ROLE_PHARMACY is not seeded")
		}
		user = &model.User{
			Email:        adminEmail,
			PasswordHash: hash,
			FirstName:    req.AdminFirstName,
			LastName:     req.AdminLastName,
			Enabled:      true,
			Roles:        roles,
		}
		if err := s.users.Create(ctx, tx, user); err != nil {
			return emailTaken(err)
		}

		pharmacy = &model.Pharmacy{
			Name:               req.PharmacyName,
			RegistrationNumber: req.RegistrationNumber,
			Address:            req.Address,
			Phone:              req.Phone,
			Email:              pharmacyEmail,
			Website:            req.Website,
			Active:             true,
			OwnerID:            user.ID,
		}
		if err := s.pharmacies.Create(ctx, tx, pharmacy); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("Pharmacy with registration number %s already exists", req.RegistrationNumber)
			}
			return err
		}

		staff = &model.PharmacyStaff{
			PharmacyID: pharmacy.ID,
			UserID:     user.ID,
			Role:       model.StaffAdmin,
			Active:     true,
		}
		return s.pharmacies.CreateStaff(ctx, tx, staff)
	})
	if err != nil {
		return nil, storeErr(err)
	}

	staff.Pharmacy = pharmacy
	staff.User = user
	log.Info().
		Str("pharmacy_id", pharmacy.ID.String()).
		Str("admin_id", user.ID.String()).
		Msg("pharmacy registered")
	return s.issueForStaff(ctx, user, staff)
}

func (s *authService) PharmacyLogin(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password, msgPharmacyBadCredentials)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RolePharmacy) {
		return nil, apierror.Unauthorized("Access denied: not a pharmacy account")
	}
	staff, err := s.activeStaff(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, apierror.Unauthorized("Access denied: no active pharmacy assignment")
	}
	return s.issueForStaff(ctx, user, staff)
}

func (s *authService) Validate(ctx context.Context, p dto.Principal) (*dto.ValidateResponse, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("Invalid token")
		}
		return nil, apierror.Internal(err)
	}

	switch {
	case user.HasRole(model.RolePharmacy):
		staff, err := s.activeStaff(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if staff == nil {
			return nil, apierror.Unauthorized("No active pharmacy assignment")
		}
		return &dto.ValidateResponse{Type: dto.PrincipalTypePharmacy, Data: toStaffResponse(staff)}, nil
	case user.HasRole(model.RoleUser):
		return &dto.ValidateResponse{Type: dto.PrincipalTypeUser, Data: toUserResponse(user)}, nil
	default:
		return nil, apierror.Unauthorized("Invalid token")
	}
}

// Refresh rotates the refresh token: the presented one is consumed and a new
// pair is issued.
func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.AuthResponse, error) {
	claims, err := s.jwt.Parse(req.RefreshToken, auth.TypeRefresh)
	if err != nil {
		return nil, apierror.Unauthorized("Invalid or expired refresh token")
	}
	userID, err := s.tokens.ConsumeRefreshToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenNotFound) {
			return nil, apierror.Unauthorized("Invalid or expired refresh token")
		}
		return nil, apierror.Internal(err)
	}
	if userID.String() != claims.UserID {
		return nil, apierror.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("Invalid or expired refresh token")
		}
		return nil, apierror.Internal(err)
	}
	if !user.Enabled {
		return nil, apierror.Unauthorized("User account is disabled")
	}

	if user.HasRole(model.RolePharmacy) {
		staff, err := s.activeStaff(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if staff == nil {
			return nil, apierror.Unauthorized("No active pharmacy assignment")
		}
		return s.issueForStaff(ctx, user, staff)
	}
	return s.issueForUser(ctx, user)
}

// Logout revokes the access token until it expires and drops the refresh token
// when one is given.
func (s *authService) Logout(ctx context.Context, p dto.Principal, req dto.LogoutRequest) error {
	if p.TokenID != "" {
		ttl := timeUntil(p.ExpiresAt)
		if err := s.tokens.BlacklistAccessToken(ctx, p.TokenID, ttl); err != nil {
			return apierror.Internal(err)
		}
	}
	if req.RefreshToken == "" {
		return nil
	}
	claims, err := s.jwt.Parse(req.RefreshToken, auth.TypeRefresh)
	if err != nil || claims.UserID != p.UserID.String() {
		return nil
	}
	if err := s.tokens.DeleteRefreshToken(ctx, claims.ID); err != nil {
		log.Warn().Err(err).Msg("refresh token delete failed")
	}
	return nil
}

// activeStaff returns the first active staff assignment, or nil.
func (s *authService) activeStaff(ctx context.Context, userID uuid.UUID) (*model.PharmacyStaff, error) {
	rows, err := s.pharmacies.ListStaffByUser(ctx, userID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	for i := range rows {
		if rows[i].Active {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (s *authService) issueForUser(ctx context.Context, user *model.User) (*dto.AuthResponse, error) {
	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	u := toUserResponse(user)
	resp.User = &u
	return resp, nil
}

func (s *authService) issueForStaff(ctx context.Context, user *model.User, staff *model.PharmacyStaff) (*dto.AuthResponse, error) {
	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if staff.User == nil {
		staff.User = user
	}
	st := toStaffResponse(staff)
	resp.PharmacyStaff = &st
	return resp, nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*dto.AuthResponse, error) {
	roles := user.RoleNames()
	access, _, err := s.jwt.Issue(user.ID, user.Email, roles, auth.TypeAccess)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	refresh, refreshID, err := s.jwt.Issue(user.ID, user.Email, roles, auth.TypeRefresh)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	if err := s.tokens.StoreRefreshToken(ctx, refreshID, user.ID, s.jwt.RefreshTTL()); err != nil {
		return nil, apierror.Internal(err)
	}
	return &dto.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
	}, nil
}
