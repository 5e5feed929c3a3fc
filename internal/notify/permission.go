package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/storage"
)

// PermissionKey is the settings-table key holding the permission decision.
const PermissionKey = "visionary:notification-permission"

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

var ErrInvalidPermission = errors.New("notify: invalid permission")

func ParsePermission(raw string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(raw))); p {
	case PermissionGranted, PermissionDenied, PermissionDefault:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, raw)
	}
}

type Permissions interface {
	State(ctx context.Context) Permission
	Request(ctx context.Context) Permission
}

type KV interface {
	GetSetting(ctx context.Context, key string) (storage.Setting, error)
	PutSetting(ctx context.Context, in storage.Setting) error
}

// StoredPermissions keeps the user's decision in the settings table. A
// request on an undecided state grants when some channel can deliver and
// notifications are not blocked; once decided, the answer sticks until Set.
type StoredPermissions struct {
	mu       sync.Mutex
	kv       KV
	blocked  bool
	channels []Channel
	log      *zap.Logger
}

func NewStoredPermissions(kv KV, blocked bool, log *zap.Logger, channels ...Channel) *StoredPermissions {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoredPermissions{kv: kv, blocked: blocked, channels: channels, log: log.Named("notify")}
}

func (p *StoredPermissions) State(ctx context.Context) Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *StoredPermissions) Request(ctx context.Context) Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current := p.load(ctx); current != PermissionDefault {
		return current
	}
	decision := PermissionDenied
	if !p.blocked && anyAvailable(p.channels) {
		decision = PermissionGranted
	}
	// An unpersisted decision is still honoured for this call.
	if err := p.store(ctx, decision); err != nil {
		p.log.Warn("failed to persist notification permission",
			zap.String("permission", string(decision)),
			zap.Error(err),
		)
	}
	return decision
}

// Set records an explicit decision, e.g. from the permission CLI.
func (p *StoredPermissions) Set(ctx context.Context, perm Permission) error {
	if _, err := ParsePermission(string(perm)); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store(ctx, perm)
}

func (p *StoredPermissions) load(ctx context.Context) Permission {
	item, err := p.kv.GetSetting(ctx, PermissionKey)
	if err != nil {
		return PermissionDefault
	}
	perm, err := ParsePermission(item.Value)
	if err != nil {
		return PermissionDefault
	}
	return perm
}

func (p *StoredPermissions) store(ctx context.Context, perm Permission) error {
	return p.kv.PutSetting(ctx, storage.Setting{Key: PermissionKey, Value: string(perm)})
}

func anyAvailable(channels []Channel) bool {
	for _, ch := range channels {
		if ch != nil && ch.Available() {
			return true
		}
	}
	return false
}
