package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"todolist/models"
	"todolist/utils"
)

const (
	SessionCookie = "session_token"
	CSRFCookie    = "csrf_token"
)

var errInvalidToken = errors.New("invalid session token")

// Sessions issues and resolves login sessions. The cookie carries a signed
// token naming the session and its user, so forged or expired cookies are
// rejected without a Redis round trip. The Redis record makes logout
// effective before the token expires.
type Sessions struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

type SessionOptions struct {
	Secret        []byte
	TTL           time.Duration
	SecureCookies bool
}

func NewSessions(client *redis.Client, opts SessionOptions) *Sessions {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Sessions{
		client: client,
		secret: opts.Secret,
		ttl:    opts.TTL,
		secure: opts.SecureCookies,
		now:    time.Now,
	}
}

// Create stores a new session for the user and sets the session and CSRF cookies.
func (s *Sessions) Create(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (*models.Session, error) {
	csrfToken, err := utils.GenerateToken(32)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		UserAgent: utils.GetUserAgent(r),
		IPAddress: utils.GetIP(r),
	}

	token, err := s.sign(session)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreSession(ctx, s.client, session, s.ttl); err != nil {
		return nil, &models.StorageError{Op: "create session", Err: err}
	}

	maxAge := int(s.ttl.Seconds())
	utils.SetCookie(w, SessionCookie, token, maxAge, true, s.secure)
	utils.SetCookie(w, CSRFCookie, csrfToken, maxAge, false, s.secure)
	return &session, nil
}

// Resolve returns the live session named by the request cookie.
// models.ErrAuthenticationRequired means there is no usable session.
func (s *Sessions) Resolve(ctx context.Context, r *http.Request) (*models.Session, error) {
	if !utils.CookieExists(r, SessionCookie) {
		return nil, models.ErrAuthenticationRequired
	}
	st, _ := r.Cookie(SessionCookie)

	sessionID, userID, err := s.Verify(st.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthenticationRequired, err)
	}

	session, err := utils.GetSession(ctx, s.client, sessionID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrAuthenticationRequired
	}
	if err != nil {
		return nil, &models.StorageError{Op: "resolve session", Err: err}
	}
	if session.UserID != userID {
		return nil, models.ErrAuthenticationRequired
	}
	return session, nil
}

// Destroy deletes the session named by the request cookie, if any, and
// expires both cookies. When the store fails the cookies are left alone so
// the caller can retry.
func (s *Sessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if st, err := r.Cookie(SessionCookie); err == nil && st.Value != "" {
		if sessionID, err := s.sessionID(st.Value); err == nil {
			if err := utils.DeleteSession(ctx, s.client, sessionID); err != nil {
				return &models.StorageError{Op: "destroy session", Err: err}
			}
		}
	}

	utils.SetCookie(w, SessionCookie, "", -1, true, s.secure)
	utils.SetCookie(w, CSRFCookie, "", -1, false, s.secure)
	return nil
}

// ActiveSessions counts the user's sessions still present in Redis.
func (s *Sessions) ActiveSessions(ctx context.Context, userID int64) (int64, error) {
	return utils.CountUserSessions(ctx, s.client, userID)
}

// Verify checks the token signature and expiry and returns the session id
// and user id it names.
func (s *Sessions) Verify(token string) (string, int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", 0, errInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return "", 0, errInvalidToken
	}
	return claims.ID, userID, nil
}

// sessionID reads the session id from a correctly signed token even when it
// has expired, so logout can still clean up.
func (s *Sessions) sessionID(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.ID == "" {
		return "", errInvalidToken
	}
	return claims.ID, nil
}

func (s *Sessions) sign(session models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *Sessions) keyFunc(*jwt.Token) (interface{}, error) {
	return s.secret, nil
}
