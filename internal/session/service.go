package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bladehq/bladehub/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "bladehub-session||"
	tokensSetKey     = "bladehub-sessions"
	profileKeyPrefix = "bladehub-profile||"
)

var ErrNoSession = errors.New("no session")

type storedSession struct {
	Profile   Profile `json:"profile"`
	CreatedAt int64   `json:"createdAt"`
}

// Service owns login sessions in redis. A token maps to the profile it
// was created for; profiles are additionally cached under a fixed
// per-user key so the frontend can render before a full sign-in round
// trip, and that cache is dropped on sign-out.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) Login(ctx context.Context, profile Profile, createdAt time.Time) (string, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionJson, err := json.Marshal(storedSession{Profile: profile, CreatedAt: createdAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, sessionJson, 0).Err(); err != nil {
		return "", err
	}
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.redisClient.Set(ctx, profileKeyPrefix+profile.Email, profileJson, 0).Err(); err != nil {
		log.Errorf("failed to cache profile for %s: %s", profile.Email, err)
	}

	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.get(ctx, token)
	if err != nil {
		return err
	}

	if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return err
	}
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return err
	}
	if err := s.redisClient.Del(ctx, profileKeyPrefix+session.Profile.Email).Err(); err != nil {
		log.Errorf("failed to clear profile cache for %s: %s", session.Profile.Email, err)
	}
	return nil
}

// CurrentUser resolves the profile behind a token, or ErrNoSession.
func (s *Service) CurrentUser(ctx context.Context, token string) (Profile, error) {
	session, err := s.get(ctx, token)
	if err != nil {
		return Profile{}, err
	}
	if time.Since(time.Unix(session.CreatedAt, 0)) > s.ttl {
		return Profile{}, ErrNoSession
	}
	return session.Profile, nil
}

// CachedProfile reads the fixed-key profile cache without touching the
// session, used for optimistic rendering.
func (s *Service) CachedProfile(ctx context.Context, email string) (Profile, error) {
	profileJson, err := s.redisClient.Get(ctx, profileKeyPrefix+email).Bytes()
	if err != nil {
		return Profile{}, err
	}
	var profile Profile
	if err := json.Unmarshal(profileJson, &profile); err != nil {
		return Profile{}, fmt.Errorf("unmarshal cached profile: %w", err)
	}
	return profile, nil
}

// IsLogged satisfies the auth middleware.
func (s *Service) IsLogged(ctx context.Context, token string) (bool, error) {
	session, err := s.get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return false, nil
		}
		return false, err
	}
	return time.Since(time.Unix(session.CreatedAt, 0)) <= s.ttl, nil
}

// UserEmail resolves the authenticated user behind a request.
func (s *Service) UserEmail(r *http.Request) (string, error) {
	profile, err := s.CurrentUser(r.Context(), TokenFromRequest(r))
	if err != nil {
		return "", err
	}
	return profile.Email, nil
}

// TokenFromRequest reads the session token from the service header or
// a bearer authorization header.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get("X-BLADE-TOKEN"); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
}

func (s *Service) get(ctx context.Context, token string) (storedSession, error) {
	if token == "" {
		return storedSession{}, ErrNoSession
	}
	sessionJson, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storedSession{}, ErrNoSession
		}
		return storedSession{}, err
	}
	var session storedSession
	if err := json.Unmarshal(sessionJson, &session); err != nil {
		return storedSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! session service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> session service, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> session service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		session, err := s.get(ctx, token)
		if err != nil {
			log.Errorf("=> session service, scan and clean token %s: %s", token, err)
			continue
		}
		if time.Since(time.Unix(session.CreatedAt, 0)) > s.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("=> session service, clean token %s: %s", token, err)
			continue
		}
		if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> session service, clean token %s: %s", token, err)
			continue
		}
	}
}
