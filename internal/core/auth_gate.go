package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ForcedSignOutDelay is how long a denied principal stays signed in, long
// enough for the denial notice to be read.
const ForcedSignOutDelay = 2000 * time.Millisecond

// popupClosedByUser is the identity provider code of a sign-in popup the user dismissed.
const popupClosedByUser = "auth/popup-closed-by-user"

// Principal is a signed-in identity as reported by the identity provider.
type Principal struct {
	UID   string
	Email string
}

// IdentityProvider verifies sign-in tokens and can end a principal's sessions.
type IdentityProvider interface {
	Authenticate(ctx context.Context, idToken string) (*Principal, error)
	SignOut(ctx context.Context, uid string) error
}

// GateDecision is the outcome of an identity-state change.
type GateDecision struct {
	Authenticated bool `json:"authenticated"`
	Authorized    bool `json:"authorized"`
	// Operator is set when Authorized.
	Operator string `json:"operator,omitempty"`
	// SignOutAfterMs is set when the principal was denied and will be signed out.
	SignOutAfterMs int64   `json:"signOutAfterMs,omitempty"`
	Notice         *Notice `json:"notice,omitempty"`
}

// AuthGate admits only principals whose email is on a fixed allow-list.
type AuthGate struct {
	allowed  map[string]struct{}
	identity IdentityProvider
	logger   *zap.Logger
	delay    time.Duration
	schedule func(time.Duration, func())

	mu sync.Mutex
	// signingOut holds the UIDs with a sign-out already scheduled.
	signingOut map[string]struct{}
}

// NewAuthGate builds a gate over allowList. Emails are compared exactly as given.
func NewAuthGate(allowList []string, identity IdentityProvider, logger *zap.Logger) *AuthGate {
	allowed := make(map[string]struct{}, len(allowList))
	for _, e := range allowList {
		allowed[e] = struct{}{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthGate{
		allowed:    allowed,
		identity:   identity,
		logger:     logger,
		delay:      ForcedSignOutDelay,
		schedule:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		signingOut: make(map[string]struct{}),
	}
}

// IsAllowed reports whether email is an operator. The comparison is case-sensitive.
func (g *AuthGate) IsAllowed(email string) bool {
	_, ok := g.allowed[email]
	return ok
}

// Evaluate reacts to an identity-state change. A nil principal yields the
// unauthenticated decision. A principal that is not allowed gets a denial
// notice and is signed out after ForcedSignOutDelay.
func (g *AuthGate) Evaluate(p *Principal) GateDecision {
	if p == nil {
		return GateDecision{}
	}
	if !g.IsAllowed(p.Email) {
		g.logger.Warn("Email not authorized", zap.String("email", p.Email))
		notice := ErrorNotice("❌ Acesso negado! Apenas administradores podem acessar.")
		g.scheduleSignOut(p)
		return GateDecision{
			Authenticated:  true,
			SignOutAfterMs: g.delay.Milliseconds(),
			Notice:         &notice,
		}
	}
	g.logger.Info("Operator authorized", zap.String("email", p.Email))
	return GateDecision{Authenticated: true, Authorized: true, Operator: p.Email}
}

func (g *AuthGate) scheduleSignOut(p *Principal) {
	if g.identity == nil || p.UID == "" {
		return
	}
	uid, email := p.UID, p.Email
	g.mu.Lock()
	if _, ok := g.signingOut[uid]; ok {
		g.mu.Unlock()
		return
	}
	g.signingOut[uid] = struct{}{}
	g.mu.Unlock()

	g.schedule(g.delay, func() {
		defer func() {
			g.mu.Lock()
			delete(g.signingOut, uid)
			g.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.identity.SignOut(ctx, uid); err != nil {
			// Sign-out failures are only logged.
			g.logger.Error("Forced sign-out failed", zap.String("email", email), zap.Error(err))
			return
		}
		g.logger.Info("Forced sign-out completed", zap.String("email", email))
	})
}

// SignInFailureNotice classifies a failed sign-in: a dismissed popup is a
// warning, anything else an error.
func SignInFailureNotice(code, message string) Notice {
	if code == popupClosedByUser {
		return WarningNotice("⚠️ Login cancelado")
	}
	if message == "" {
		message = code
	}
	return ErrorNotice("❌ Erro: " + message)
}
