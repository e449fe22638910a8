// Package session maps external identity-provider sessions to application
// user records and publishes the resolved user to dependents. It is the only
// writer of the local session cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/models"
)

// ErrDirectoryLookup means a read or write against the user directory failed
// during reconciliation. The session resolves to no user; the caller may
// retry sign-in.
var ErrDirectoryLookup = errors.New("directory lookup failed")

// DefaultDisplayName is assigned when the provider reports no display name.
const DefaultDisplayName = "New User"

// reconcileTimeout bounds a single reconciliation's directory round trips.
const reconcileTimeout = 10 * time.Second

// Directory is the subset of the user store the reconciler needs.
type Directory interface {
	// FindByEmail returns (nil, nil) when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateStudent inserts a student user with no club. It must be
	// conflict-safe: when another creation for the same email wins the
	// race, it returns the winner instead of a duplicate.
	CreateStudent(ctx context.Context, email, displayName string) (*models.User, error)
}

// Reconciler owns one logical session: it serializes identity notifications,
// resolves each to exactly one user (or none), keeps the cache in step, and
// notifies subscribers of every state change.
//
// Invariants:
//   - at most one reconciliation runs at a time; a notification arriving
//     mid-flight is queued (latest wins), never interleaved
//   - a sign-out invalidates any in-flight reconciliation: its result is
//     discarded when it completes
//   - every failure resolves to no user (fail closed)
type Reconciler struct {
	key       string
	directory Directory
	cache     Cache
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	epoch    uint64
	inflight bool
	pending  Notification
	subs     map[int]chan State
	nextSub  int
}

// NewReconciler creates a reconciler for the session identified by key.
func NewReconciler(key string, directory Directory, cache Cache, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		key:       key,
		directory: directory,
		cache:     cache,
		logger:    logger,
		state:     State{Phase: PhaseSignedOut},
		subs:      make(map[int]chan State),
	}
}

// Key returns the opaque session key.
func (r *Reconciler) Key() string { return r.key }

// Snapshot returns the current state.
func (r *Reconciler) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers a state-change listener. The returned cancel func must
// be called to release it. Slow subscribers miss intermediate states rather
// than blocking the reconciler.
func (r *Reconciler) Subscribe() (<-chan State, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	ch := make(chan State, 16)
	r.subs[id] = ch
	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// MarkAuthenticating publishes the Authenticating phase while the provider's
// interactive flow (token verification) is in progress. No-op when a
// reconciliation is already running.
func (r *Reconciler) MarkAuthenticating() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight {
		return
	}
	r.setStateLocked(State{Phase: PhaseAuthenticating, User: r.state.User})
}

// Notify feeds an identity-change notification into the reconciler.
// Processing is asynchronous; observe the outcome via Subscribe or Snapshot.
func (r *Reconciler) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := n.(Unauthenticated); ok {
		// Invalidate any in-flight reconciliation immediately: its result
		// must be discarded even though it completes after this sign-out.
		r.epoch++
	}
	if r.inflight {
		r.pending = n
		return
	}
	r.beginLocked(n)
}

// SignIn runs a full reconciliation for the identity and blocks until a
// terminal state or ctx is done.
func (r *Reconciler) SignIn(ctx context.Context, externalID, email, displayName string) (State, error) {
	return r.await(ctx, Authenticated{ExternalID: externalID, Email: email, DisplayName: displayName})
}

// SignOut clears the session and cache, blocking until done.
func (r *Reconciler) SignOut(ctx context.Context) (State, error) {
	return r.await(ctx, Unauthenticated{})
}

func (r *Reconciler) await(ctx context.Context, n Notification) (State, error) {
	ch, cancel := r.Subscribe()
	defer cancel()
	r.Notify(n)
	for {
		select {
		case <-ctx.Done():
			return State{}, ctx.Err()
		case st := <-ch:
			if st.Terminal() {
				return st, nil
			}
		}
	}
}

// Rehydrate restores a SignedIn state from the advisory cache, if present.
// Used after a restart; the directory copy may still differ.
func (r *Reconciler) Rehydrate(ctx context.Context) {
	user, err := r.cache.Get(ctx, r.key)
	if err != nil || user == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight || r.state.Phase != PhaseSignedOut {
		return
	}
	r.setStateLocked(State{Phase: PhaseSignedIn, User: user})
}

// beginLocked starts processing a notification. Caller holds mu.
func (r *Reconciler) beginLocked(n Notification) {
	r.inflight = true
	epoch := r.epoch
	switch v := n.(type) {
	case Authenticated:
		r.setStateLocked(State{Phase: PhaseReconciling, User: r.state.User})
		go r.reconcile(v, epoch)
	case Unauthenticated:
		go r.clear()
	}
}

// finishLocked ends the in-flight reconciliation and starts the queued
// notification, if any. Caller holds mu.
func (r *Reconciler) finishLocked() {
	r.inflight = false
	if r.pending != nil {
		n := r.pending
		r.pending = nil
		r.beginLocked(n)
	}
}

func (r *Reconciler) reconcile(n Authenticated, epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	user, err := r.directory.FindByEmail(ctx, n.Email)
	if err == nil && user == nil {
		name := n.DisplayName
		if name == "" {
			name = DefaultDisplayName
		}
		// First sight of this identity: create a student with no club.
		// The directory resolves creation races by adopting the winner.
		user, err = r.directory.CreateStudent(ctx, n.Email, name)
	}

	if err == nil && user != nil {
		// Persist before publishing so dependents never observe a
		// resolved user the cache does not know about. A queued sign-out
		// clears the cache after this write completes.
		if cerr := r.cache.Put(ctx, r.key, user); cerr != nil {
			r.logger.Warn("session cache write failed", zap.String("session", r.key), zap.Error(cerr))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch != r.epoch {
		// A sign-out arrived while we were reconciling; discard the result.
		r.logger.Debug("discarding stale reconciliation", zap.String("session", r.key), zap.String("email", n.Email))
		r.finishLocked()
		return
	}
	if err != nil {
		r.logger.Error("reconciliation failed", zap.String("session", r.key), zap.Error(err))
		r.setStateLocked(State{Phase: PhaseFailed, Err: fmt.Errorf("%w: %v", ErrDirectoryLookup, err)})
	} else {
		r.setStateLocked(State{Phase: PhaseSignedIn, User: user})
	}
	r.finishLocked()
}

func (r *Reconciler) clear() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	if err := r.cache.Clear(ctx, r.key); err != nil {
		r.logger.Warn("session cache clear failed", zap.String("session", r.key), zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.setStateLocked(State{Phase: PhaseSignedOut})
	r.finishLocked()
}

// setStateLocked updates the state and notifies subscribers. Caller holds mu.
func (r *Reconciler) setStateLocked(s State) {
	r.state = s
	for _, ch := range r.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
