// Package session owns the portal's authenticated state: one persisted
// record per browser, holding the marketplace identity and its bearer
// token, resolved into an explicit Unknown/Anonymous/Authenticated state
// on every request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/repository"
	"github.com/estately/portal-server-go/internal/token"
	"github.com/estately/portal-server-go/internal/upstream"
	"github.com/estately/portal-server-go/internal/util"
)

// State is the session state machine:
// Unknown -> Anonymous | Authenticated, Authenticated -> Anonymous.
type State int

const (
	// StateUnknown means the session lookup itself failed; callers must
	// not redirect on it.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the resolved state for one request. Identity is non-nil
// only when State is StateAuthenticated.
type Session struct {
	State    State
	Identity *model.Identity
}

type contextKey string

const browserTokenContextKey contextKey = "browserToken"

// WithBrowserToken stores the browser's session cookie value on the
// context so the upstream 401 hook can find the session to destroy.
func WithBrowserToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, browserTokenContextKey, tok)
}

func BrowserTokenFrom(ctx context.Context) string {
	if tok, ok := ctx.Value(browserTokenContextKey).(string); ok {
		return tok
	}
	return ""
}

type Store struct {
	repo          repository.PortalSessionRepository
	client        *upstream.Client
	sessionSecret string
	ttl           time.Duration
	upstreamKey   string
	now           func() time.Time
}

func NewStore(
	repo repository.PortalSessionRepository,
	client *upstream.Client,
	sessionSecret string,
	ttl time.Duration,
	upstreamTokenSecret string,
) *Store {
	return &Store{
		repo:          repo,
		client:        client,
		sessionSecret: sessionSecret,
		ttl:           ttl,
		upstreamKey:   upstreamTokenSecret,
		now:           time.Now,
	}
}

// Resolve maps a browser token to a session state. An absent or expired
// record resolves to Anonymous; a failing lookup resolves to Unknown so
// the guard can hold off redirecting.
func (s *Store) Resolve(ctx context.Context, browserToken string) Session {
	if browserToken == "" {
		return Session{State: StateAnonymous}
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, browserToken)
	record, err := s.repo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		log.Error().Err(err).Msg("session resolve: database error")
		return Session{State: StateUnknown}
	}
	if record == nil {
		return Session{State: StateAnonymous}
	}

	var identity model.Identity
	if err := json.Unmarshal(record.Identity, &identity); err != nil {
		log.Error().Err(err).Str("sessionId", record.ID).Msg("session resolve: corrupt identity record")
		_ = s.repo.Delete(ctx, record.ID)
		return Session{State: StateAnonymous}
	}

	if !s.bearerValid(identity.Token) {
		// Expired upstream token means no session, same as at startup
		// in the browser client.
		_ = s.repo.Delete(ctx, record.ID)
		return Session{State: StateAnonymous}
	}

	return Session{State: StateAuthenticated, Identity: &identity}
}

func (s *Store) bearerValid(bearer string) bool {
	if s.upstreamKey != "" {
		_, err := token.Verify(bearer, s.upstreamKey)
		return err == nil
	}
	return token.ValidAt(bearer, s.now())
}

// Login authenticates against the role-specific marketplace endpoint,
// persists the identity record tagged with the requested role, and
// returns the browser token to set as the session cookie.
func (s *Store) Login(ctx context.Context, email, password string, role model.Role) (string, *model.Identity, error) {
	if !role.Valid() {
		return "", nil, apperr.InvalidInput("role", "unknown role")
	}

	envelope, err := s.client.JSON(ctx, http.MethodPost, role.APIPrefix()+"/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var httpErr *upstream.HTTPError
		if errors.As(err, &httpErr) && httpErr.Message() == "Bad credentials" {
			return "", nil, apperr.BadCredentials().WithCause(err)
		}
		return "", nil, err
	}

	var identity model.Identity
	if err := json.Unmarshal(envelope.Data, &identity); err != nil {
		return "", nil, apperr.Upstream(err)
	}
	identity.Role = role

	browserToken, err := util.GenerateToken()
	if err != nil {
		return "", nil, apperr.Internal("failed to generate session token").WithCause(err)
	}

	record, err := json.Marshal(identity)
	if err != nil {
		return "", nil, apperr.Internal("failed to serialize identity").WithCause(err)
	}

	_, err = s.repo.Create(ctx, model.CreatePortalSessionParams{
		TokenHash: util.HmacSHA256(s.sessionSecret, browserToken),
		Identity:  record,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return "", nil, apperr.Database(err)
	}

	log.Info().Str("role", string(role)).Int64("userId", identity.ID).Msg("session created")

	return browserToken, &identity, nil
}

// RegisterParams carries a signup request. Avatar, when present, is
// uploaded first to obtain an image URL.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
	Avatar   *upstream.UploadFile
}

// Register signs a new account up with the marketplace. It never
// creates a session: the caller is sent to the login page afterwards.
func (s *Store) Register(ctx context.Context, params RegisterParams) error {
	if !params.Role.Valid() {
		return apperr.InvalidInput("role", "unknown role")
	}

	payload := map[string]string{
		"email":    params.Email,
		"password": params.Password,
		"name":     params.Name,
	}

	if params.Avatar != nil {
		urls, err := s.client.Upload(ctx, "", []upstream.UploadFile{*params.Avatar})
		if err != nil {
			return err
		}
		if len(urls) > 0 {
			payload["imageUrl"] = urls[0]
		}
	}

	if _, err := s.client.JSON(ctx, http.MethodPost, params.Role.APIPrefix()+"/signup", "", payload); err != nil {
		return err
	}

	log.Info().Str("role", string(params.Role)).Msg("account registered")
	return nil
}

// Logout destroys the persisted session for the browser token. Missing
// sessions are not an error.
func (s *Store) Logout(ctx context.Context, browserToken string) error {
	if browserToken == "" {
		return nil
	}
	return s.repo.DeleteByTokenHash(ctx, util.HmacSHA256(s.sessionSecret, browserToken))
}

// DestroyFromContext clears the session identified by the browser token
// on the context. Registered as the upstream client's 401 hook, so any
// marketplace call that answers 401 tears the session down regardless
// of which endpoint was called.
func (s *Store) DestroyFromContext(ctx context.Context) {
	browserToken := BrowserTokenFrom(ctx)
	if browserToken == "" {
		return
	}
	if err := s.Logout(ctx, browserToken); err != nil {
		log.Error().Err(err).Msg("failed to destroy session after upstream 401")
		return
	}
	log.Info().Msg("session destroyed after upstream 401")
}
