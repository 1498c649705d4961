package service

import (
	"context"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// AllowedIPService manages the admin allowlist and answers membership checks.
type AllowedIPService interface {
	Add(ctx context.Context, actor Actor, cidr, label string) (*model.AllowedIP, error)
	List(ctx context.Context) ([]model.AllowedIP, error)
	Delete(ctx context.Context, actor Actor, id string) error
	// Allowed reports whether ip may reach admin routes. An empty allowlist admits everyone.
	Allowed(ctx context.Context, ip string) (bool, error)
}

type allowedIPService struct {
	repo     repository.AllowedIPRepository
	activity ActivityService
	log      *zap.Logger
	ttl      time.Duration
	now      clock

	mu       sync.RWMutex
	prefixes []netip.Prefix
	loadedAt time.Time
	loaded   bool
}

func NewAllowedIPService(repo repository.AllowedIPRepository, activity ActivityService, log *zap.Logger, ttl time.Duration) AllowedIPService {
	return &allowedIPService{repo: repo, activity: activity, log: log, ttl: ttl, now: utcNow}
}

// CanonicalCIDR parses an address or prefix. Single addresses become /32 or /128 and
// host bits of a prefix are cleared.
func CanonicalCIDR(raw string) (netip.Prefix, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Prefix{}, invalid("cidr", "is required")
	}
	if strings.Contains(raw, "/") {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, invalid("cidr", "not a valid CIDR")
		}
		if p.Addr().Is4In6() {
			if p.Bits() < 96 {
				return netip.Prefix{}, invalid("cidr", "IPv4-mapped prefix must be /96 or longer")
			}
			p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, invalid("cidr", "not a valid IP address")
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (s *allowedIPService) Add(ctx context.Context, actor Actor, cidr, label string) (*model.AllowedIP, error) {
	p, err := CanonicalCIDR(cidr)
	if err != nil {
		return nil, err
	}
	entry := &model.AllowedIP{
		ID:        uuid.NewString(),
		CIDR:      p.String(),
		Label:     strings.TrimSpace(label),
		CreatedAt: s.now(),
	}
	if actor.ID != "" {
		id := actor.ID
		entry.CreatedBy = &id
	}
	out, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, repoErr("create allowed ip", err)
	}
	s.invalidate()
	s.activity.Record(ctx, actor, "allowed_ip.create", "allowed_ip", out.ID, map[string]any{"cidr": out.CIDR})
	return out, nil
}

func (s *allowedIPService) List(ctx context.Context) ([]model.AllowedIP, error) {
	ips, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoErr("list allowed ips", err)
	}
	return ips, nil
}

func (s *allowedIPService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return repoErr("delete allowed ip", err)
	}
	s.invalidate()
	s.activity.Record(ctx, actor, "allowed_ip.delete", "allowed_ip", id, nil)
	return nil
}

func (s *allowedIPService) Allowed(ctx context.Context, ip string) (bool, error) {
	prefixes, err := s.snapshot(ctx)
	if err != nil {
		return false, err
	}
	if len(prefixes) == 0 {
		return true, nil
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false, nil
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true, nil
		}
	}
	return false, nil
}

func (s *allowedIPService) snapshot(ctx context.Context) ([]netip.Prefix, error) {
	s.mu.RLock()
	if s.loaded && s.now().Sub(s.loadedAt) < s.ttl {
		p := s.prefixes
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	ips, err := s.repo.List(ctx)
	if err != nil {
		return nil, repoErr("load allowlist", err)
	}
	prefixes := make([]netip.Prefix, 0, len(ips))
	for _, ip := range ips {
		p, err := netip.ParsePrefix(ip.CIDR)
		if err != nil {
			s.log.Warn("allowlist_entry_skipped", zap.String("id", ip.ID), zap.String("cidr", ip.CIDR), zap.Error(err))
			continue
		}
		prefixes = append(prefixes, p)
	}

	s.mu.Lock()
	s.prefixes = prefixes
	s.loadedAt = s.now()
	s.loaded = true
	s.mu.Unlock()
	return prefixes, nil
}

func (s *allowedIPService) invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}
