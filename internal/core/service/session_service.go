package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecoruta/portal/internal/api/metrics"
	"github.com/ecoruta/portal/internal/core/domain"
	"github.com/ecoruta/portal/internal/core/ports"
)

// Validator checks a struct against its validate tags.
type Validator interface {
	Validate(i any) error
}

// SessionService owns the single application session. All transitions are
// serialized by mu; network calls run outside of it. Token writes are
// serialized by tokensMu, which is always taken before mu and never held by
// State readers.
//
// Every operation captures the session epoch when it begins. Logout, Expire
// and each new login/register/start advance the epoch, and a result that
// comes back under an older epoch is discarded without touching state or
// tokens.
type SessionService struct {
	gateway   ports.AuthGateway
	tokens    ports.TokenStore
	inspector ports.TokenInspector
	validate  Validator
	log       zerolog.Logger

	tokensMu sync.Mutex

	mu       sync.Mutex
	state    domain.State
	epoch    uint64
	busy     bool
	updating bool
	subs     map[int]func(domain.State)
	nextSub  int
}

var _ ports.Session = (*SessionService)(nil)

func NewSessionService(
	gateway ports.AuthGateway,
	tokens ports.TokenStore,
	inspector ports.TokenInspector,
	validate Validator,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		gateway:   gateway,
		tokens:    tokens,
		inspector: inspector,
		validate:  validate,
		log:       log.With().Str("component", "session").Logger(),
		state:     domain.State{Status: domain.StatusUninitialized, IsLoading: true},
		subs:      make(map[int]func(domain.State)),
	}
}

// State returns a snapshot of the session.
func (s *SessionService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn to receive every new state. fn runs while the
// session is locked and must not call back into it. The returned function
// removes the subscription.
func (s *SessionService) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Start recovers the session from the persisted tokens. A call made while
// another auth operation is running is ignored.
func (s *SessionService) Start(ctx context.Context) {
	epoch, err := s.begin("start")
	if err != nil {
		s.log.Debug().Msg("session check already running, start ignored")
		return
	}

	s.tokensMu.Lock()
	token := s.tokens.Access(ctx)
	s.tokensMu.Unlock()
	if token == "" {
		s.settle(epoch, "start", nil, "")
		return
	}

	if s.inspector.IsExpired(token) {
		s.log.Info().Msg("stored access token expired, starting anonymous")
		s.settle(epoch, "start", nil, "")
		return
	}

	user, err := s.fetchUser(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session recovery failed")
		s.settle(epoch, "start", nil, "")
		return
	}
	s.settle(epoch, "start", user, "")
}

// Login authenticates with credentials and loads the user.
func (s *SessionService) Login(ctx context.Context, creds domain.LoginCredentials) error {
	epoch, err := s.begin("login")
	if err != nil {
		return err
	}
	return s.authenticate(ctx, epoch, "login", creds, domain.MsgLoginFailed)
}

// Register validates data locally, creates the account and logs in with the
// same credentials.
func (s *SessionService) Register(ctx context.Context, data domain.RegisterData) error {
	if err := s.checkRegistration(data); err != nil {
		return s.reject(err)
	}

	epoch, err := s.begin("register")
	if err != nil {
		return err
	}

	if _, err := s.gateway.Register(ctx, data); err != nil {
		return s.fail(epoch, "register", err, domain.MsgRegisterFailed)
	}

	if s.superseded(epoch, "register") {
		return domain.ErrSuperseded
	}
	return s.authenticate(ctx, epoch, "register", data.Credentials(), domain.MsgRegisterFailed)
}

// Logout invalidates the refresh token remotely and always ends anonymous
// with both tokens cleared. The remote failure, if any, is reported in the
// result and never returned as an error.
func (s *SessionService) Logout(ctx context.Context) domain.BestEffort {
	s.tokensMu.Lock()
	s.mu.Lock()
	s.advance()
	s.busy = false
	s.transition(domain.State{Status: domain.StatusAnonymous}, "logout")
	s.mu.Unlock()

	refresh := s.tokens.Refresh(ctx)
	cleared := s.tokens.Clear(ctx)
	s.tokensMu.Unlock()

	remote := domain.BestEffort{Op: "remote logout"}
	if refresh != "" {
		if err := s.gateway.Logout(ctx, refresh); err != nil {
			s.log.Warn().Err(err).Msg("remote logout failed")
			remote.Err = err
		}
	}

	res := domain.Join("logout", cleared, remote)
	s.log.Info().Bool("clean", res.OK()).Msg("session closed")
	return res
}

// Expire ends the session after the API client gave up renewing the access
// token. The client has already cleared the tokens.
func (s *SessionService) Expire(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsAuthenticated && !s.busy {
		return
	}

	s.advance()
	s.busy = false
	s.transition(domain.State{
		Status: domain.StatusAnonymous,
		Error:  domain.MsgSessionExpired,
	}, "expire")
	s.log.Warn().Err(cause).Msg("session expired")
}

// UpdateUser sends update for the current user and replaces the user with the
// server's answer. On failure the user stays authenticated and error is set.
func (s *SessionService) UpdateUser(ctx context.Context, update domain.UserUpdate) error {
	s.mu.Lock()
	user := s.state.User
	if !s.state.IsAuthenticated || user == nil {
		s.setError(domain.ErrNoActiveUser.Msg)
		s.mu.Unlock()
		return domain.ErrNoActiveUser
	}
	if update.Empty() {
		s.setError(domain.ErrNothingToUpdate.Msg)
		s.mu.Unlock()
		return domain.ErrNothingToUpdate
	}
	if s.updating {
		s.mu.Unlock()
		return domain.ErrOperationInFlight
	}
	s.updating = true
	epoch := s.epoch
	s.setError("")
	id := user.ID
	s.mu.Unlock()

	updated, err := s.gateway.UpdateUser(ctx, id, update)
	if err == nil && !updated.Rol.IsValid() {
		err = fmt.Errorf("%w: %q", domain.ErrUnknownRole, updated.Rol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The epoch moved on and advance already released updating.
	if s.epoch != epoch {
		metrics.StaleResultsTotal.WithLabelValues("update_user").Inc()
		if err != nil {
			return err
		}
		return domain.ErrSuperseded
	}
	s.updating = false

	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", id).Msg("profile update failed")
		s.setError(domain.UserMessage(err, domain.MsgUpdateFailed))
		return err
	}

	next := s.state
	next.User = updated
	s.transition(next, "update_user")
	return nil
}

// ClearError dismisses the last error.
func (s *SessionService) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setError("")
}

// begin moves the session to checking for op, or fails when another auth
// operation is already running.
func (s *SessionService) begin(op string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return 0, domain.ErrOperationInFlight
	}
	s.busy = true
	s.advance()

	next := s.state
	next.Status = domain.StatusChecking
	next.IsLoading = true
	next.Error = ""
	s.transition(next, op)
	return s.epoch, nil
}

func (s *SessionService) authenticate(ctx context.Context, epoch uint64, op string, creds domain.LoginCredentials, fallback string) error {
	pair, err := s.gateway.Login(ctx, creds)
	if err != nil {
		return s.fail(epoch, op, err, fallback)
	}

	if err := s.persist(epoch, op, pair); err != nil {
		return err
	}

	user, err := s.fetchUser(ctx)
	if err != nil {
		return s.fail(epoch, op, err, fallback)
	}

	if !s.settle(epoch, op, user, "") {
		return domain.ErrSuperseded
	}
	s.log.Info().Int64("user_id", user.ID).Str("rol", string(user.Rol)).Msg("session opened")
	return nil
}

// persist stores the new token pair unless the operation was superseded.
func (s *SessionService) persist(epoch uint64, op string, pair domain.TokenPair) error {
	s.tokensMu.Lock()
	defer s.tokensMu.Unlock()

	if s.superseded(epoch, op) {
		s.log.Debug().Str("operation", op).Msg("discarding tokens of superseded operation")
		return domain.ErrSuperseded
	}
	s.tokens.Save(context.Background(), pair)
	return nil
}

func (s *SessionService) fetchUser(ctx context.Context) (*domain.User, error) {
	user, err := s.gateway.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.Rol.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, user.Rol)
	}
	return user, nil
}

// fail ends op anonymous with a display message derived from err and
// returns err.
func (s *SessionService) fail(epoch uint64, op string, err error, fallback string) error {
	s.log.Warn().Err(err).Str("operation", op).Msg("auth operation failed")
	s.settle(epoch, op, nil, domain.UserMessage(err, fallback))
	return err
}

// settle applies the outcome of op. A nil user settles anonymous with the
// tokens cleared and errMsg displayed. It reports false when the result was
// discarded as stale.
func (s *SessionService) settle(epoch uint64, op string, user *domain.User, errMsg string) bool {
	s.tokensMu.Lock()
	defer s.tokensMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		metrics.StaleResultsTotal.WithLabelValues(op).Inc()
		s.mu.Unlock()
		s.log.Debug().Str("operation", op).Msg("discarding result of superseded operation")
		return false
	}

	s.busy = false

	if user != nil {
		s.transition(domain.State{
			Status:          domain.StatusAuthenticated,
			User:            user,
			IsAuthenticated: true,
		}, op)
		s.mu.Unlock()
		return true
	}

	s.transition(domain.State{Status: domain.StatusAnonymous, Error: errMsg}, op)
	s.mu.Unlock()

	s.tokens.Clear(context.Background())
	return true
}

// reject records a local failure without changing the session status.
func (s *SessionService) reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return domain.ErrOperationInFlight
	}
	s.setError(domain.UserMessage(err, domain.MsgRegisterFailed))
	return err
}

func (s *SessionService) checkRegistration(data domain.RegisterData) error {
	if data.Password != data.Password2 {
		return domain.ErrPasswordMismatch
	}
	if s.validate == nil {
		return nil
	}
	return s.validate.Validate(data)
}

func (s *SessionService) superseded(epoch uint64, op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		metrics.StaleResultsTotal.WithLabelValues(op).Inc()
		return true
	}
	return false
}

// advance starts a new epoch. Results of older operations, profile updates
// included, are discarded from now on. Callers hold mu.
func (s *SessionService) advance() {
	s.epoch++
	s.updating = false
}

// setError changes only the error field. Callers hold mu.
func (s *SessionService) setError(msg string) {
	if s.state.Error == msg {
		return
	}
	s.state.Error = msg
	s.publish()
}

// transition replaces the state. Callers hold mu.
func (s *SessionService) transition(next domain.State, cause string) {
	if next.Status != s.state.Status {
		metrics.SessionTransitionsTotal.WithLabelValues(string(next.Status), cause).Inc()
		s.log.Debug().
			Str("from", string(s.state.Status)).
			Str("to", string(next.Status)).
			Str("cause", cause).
			Msg("session transition")
	}
	s.state = next
	s.publish()
}

func (s *SessionService) publish() {
	snap := s.snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

func (s *SessionService) snapshot() domain.State {
	out := s.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}
