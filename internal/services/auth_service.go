package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/metrics"
	"busbooking/internal/offline"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login. It never says
// which half was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

const defaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload. UserID is zero for accounts that only exist
// in the offline log so far.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users     repositories.UserRepository
	Store     *offline.Store
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates the account in the authority when online, or appends a
// pending registration with an already hashed password when offline.
func (s AuthService) Register(ctx context.Context, mode domain.Mode, req models.RegisterRequest) (models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	pending := models.PendingUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		CreatedAt:    s.now(),
	}

	if mode == domain.ModeOffline {
		return s.registerOffline(ctx, pending)
	}

	taken, err := s.Users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, domain.DuplicateError{Resource: "user", Key: req.Username}
	}
	id, err := s.Users.Insert(ctx, pending)
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", "user registered id="+strconv.FormatInt(id, 10))
	return models.User{
		ID:        id,
		Username:  pending.Username,
		Email:     pending.Email,
		FullName:  pending.FullName,
		Phone:     pending.Phone,
		CreatedAt: pending.CreatedAt,
	}, nil
}

func (s AuthService) registerOffline(ctx context.Context, pending models.PendingUser) (models.User, error) {
	if _, found, err := s.Store.Users.FindByIdentity(ctx, pending.Username, pending.Email); err != nil {
		return models.User{}, err
	} else if found {
		return models.User{}, domain.DuplicateError{Resource: "pending user", Key: pending.Username}
	}

	saved, err := s.Store.Users.Append(ctx, pending)
	if err != nil {
		return models.User{}, err
	}
	metrics.RecordCapture("user")
	if n, err := s.Store.PendingCount(ctx); err == nil {
		metrics.SetPending(n)
	}
	utils.LogEvent(s.RequestID, "auth", "register_offline", "registration queued id="+saved.OfflineID)
	return models.User{
		Username:  saved.Username,
		Email:     saved.Email,
		FullName:  saved.FullName,
		Phone:     saved.Phone,
		CreatedAt: saved.CreatedAt,
	}, nil
}

// Login checks credentials and issues a token. Accounts still waiting in
// the offline log can log in in either mode.
func (s AuthService) Login(ctx context.Context, mode domain.Mode, req models.LoginRequest) (string, models.User, error) {
	req.Login = strings.TrimSpace(req.Login)
	if err := req.Validate(); err != nil {
		return "", models.User{}, err
	}

	if mode == domain.ModeOnline {
		u, hash, err := s.Users.FindByLogin(ctx, req.Login)
		switch {
		case err == nil:
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
				return "", models.User{}, ErrInvalidCredentials
			}
			token, err := s.IssueToken(u)
			return token, u, err
		case !domain.IsNotFound(err):
			return "", models.User{}, err
		}
	}

	u, err := s.AuthenticateOffline(ctx, req.Login, req.Password)
	if err != nil {
		return "", models.User{}, err
	}
	token, err := s.IssueToken(u)
	return token, u, err
}

// AuthenticateOffline checks a password against pending registrations.
func (s AuthService) AuthenticateOffline(ctx context.Context, login, password string) (models.User, error) {
	p, found, err := s.Store.Users.FindByIdentity(ctx, login, login)
	if err != nil {
		return models.User{}, err
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return models.User{
		Username:  p.Username,
		Email:     p.Email,
		FullName:  p.FullName,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}, nil
}

// IssueToken signs an HS256 token for u.
func (s AuthService) IssueToken(u models.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "sign token", Err: err}
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the caller.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.RequestContext{}, ErrInvalidCredentials
	}
	return domain.RequestContext{
		UserID:   domain.ID(claims.UserID),
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
