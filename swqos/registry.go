package swqos

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config declares one relay provider. Region selects a well-known endpoint;
// Endpoint overrides the region table entirely.
type Config struct {
	Kind          string        `yaml:"kind"`
	Region        string        `yaml:"region,omitempty"`
	Endpoint      string        `yaml:"endpoint,omitempty"`
	Credential    string        `yaml:"credential,omitempty"`
	SubmitTimeout time.Duration `yaml:"submit_timeout,omitempty"`
}

func resolveEndpoint(cfg Config, table map[string]string) (string, error) {
	if cfg.Endpoint != "" {
		return cfg.Endpoint, nil
	}
	endpoint, present := table[cfg.Region]
	if !present {
		return "", fmt.Errorf("unknown region %q for swqos kind %q", cfg.Region, cfg.Kind)
	}
	return endpoint, nil
}

// Registry holds the provider set for the lifetime of the process. It is
// immutable after construction; the only dynamic bit is each entry's
// disabled flag, fixed from the denylist at build time.
type Registry struct {
	providers []Provider
}

// BuildRegistry instantiates one client per config entry. Kinds on the
// denylist become inert stand-ins instead of being dropped silently, so a
// denylisted entry still shows up in diagnostics.
func BuildRegistry(cfgs []Config, sender TxSender, denylist []Kind) (*Registry, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("no swqos providers configured")
	}
	denied := make(map[Kind]bool, len(denylist))
	for _, k := range denylist {
		denied[k] = true
	}

	providers := make([]Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		kind, err := ParseKind(cfg.Kind)
		if err != nil {
			return nil, err
		}
		if denied[kind] {
			log.Warnf("swqos %s is denylisted, instantiating inert stand-in", kind)
			providers = append(providers, NewInertClient(kind))
			continue
		}
		p, err := buildProvider(kind, cfg, sender)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return &Registry{providers: providers}, nil
}

func buildProvider(kind Kind, cfg Config, sender TxSender) (Provider, error) {
	switch kind {
	case KindDefault:
		if sender == nil {
			return nil, errors.New("default swqos requires a ledger rpc client")
		}
		return NewRpcNodeClient(sender), nil
	case KindJito:
		return NewJitoClient(cfg)
	case KindNextBlock:
		return NewNextBlockClient(cfg)
	case KindZeroSlot:
		return NewZeroSlotClient(cfg)
	case KindTemporal:
		return NewTemporalClient(cfg)
	case KindBloxroute:
		return NewBloxrouteClient(cfg)
	default:
		return nil, fmt.Errorf("no client for swqos kind %s", kind)
	}
}

// NewRegistry wraps an explicit provider list. Intended for tests and for
// callers that construct providers themselves.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Enabled returns the providers eligible for traffic.
func (r *Registry) Enabled() []Provider {
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if !p.Disabled() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Lookup(kind Kind) (Provider, bool) {
	for _, p := range r.providers {
		if p.Identity() == kind {
			return p, true
		}
	}
	return nil, false
}

func (r *Registry) Size() int {
	return len(r.providers)
}
