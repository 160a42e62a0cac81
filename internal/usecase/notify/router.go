package notify

import (
	"fmt"
	"strings"
)

// StatusPolicy selects which channels receive source status reports.
type StatusPolicy string

const (
	// StatusDiscord sends status reports to the Discord channel only.
	StatusDiscord StatusPolicy = "discord"
	// StatusPrimary sends status reports to the article channel.
	StatusPrimary StatusPolicy = "primary"
	// StatusAll sends status reports to every configured channel.
	StatusAll StatusPolicy = "all"
	// StatusNone disables status reports.
	StatusNone StatusPolicy = "none"
)

// DefaultStatusPolicy is used when the configuration does not set one.
const DefaultStatusPolicy = StatusDiscord

// ParseStatusPolicy parses a policy name; empty input yields the default.
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	p := StatusPolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return DefaultStatusPolicy, nil
	case StatusDiscord, StatusPrimary, StatusAll, StatusNone:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatusPolicy, s)
}

// Router holds the configured channels in preference order.
type Router struct {
	channels []Channel
	policy   StatusPolicy
}

// NewRouter builds a router. channels are in preference order; nil entries
// are ignored. At least one channel is required.
func NewRouter(policy StatusPolicy, channels ...Channel) (*Router, error) {
	var cs []Channel
	for _, c := range channels {
		if c != nil {
			cs = append(cs, c)
		}
	}
	if len(cs) == 0 {
		return nil, ErrNoChannel
	}
	if policy == "" {
		policy = DefaultStatusPolicy
	}
	if _, err := ParseStatusPolicy(string(policy)); err != nil {
		return nil, err
	}
	return &Router{channels: cs, policy: policy}, nil
}

// Primary returns the channel that receives articles.
func (r *Router) Primary() Channel {
	return r.channels[0]
}

// Channels returns every configured channel in preference order.
func (r *Router) Channels() []Channel {
	return append([]Channel(nil), r.channels...)
}

// Policy returns the status policy in effect.
func (r *Router) Policy() StatusPolicy {
	return r.policy
}

// StatusTargets returns the channels that receive status reports.
func (r *Router) StatusTargets() []Channel {
	switch r.policy {
	case StatusNone:
		return nil
	case StatusPrimary:
		return []Channel{r.Primary()}
	case StatusAll:
		return r.Channels()
	default:
		for _, c := range r.channels {
			if c.Name() == ChannelDiscord {
				return []Channel{c}
			}
		}
		return nil
	}
}
