package domain

import "strings"

// Member is a channel member as reported by the platform. Built fresh from
// API responses on every run, never persisted.
type Member struct {
	ID      string
	Name    string // real name, falling back to the account name
	IsBot   bool
	IsAdmin bool
	Deleted bool
}

// Mention renders the member as a Slack mention.
func (m Member) Mention() string {
	return "<@" + m.ID + ">"
}

// FilterHumans drops bots, workspace admins, deleted accounts, and members
// whose name is on the exclusion list. Order-preserving; an empty result is
// a valid output.
func FilterHumans(members []Member, excluded []string) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.IsBot || m.IsAdmin || m.Deleted {
			continue
		}
		if nameExcluded(m.Name, excluded) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func nameExcluded(name string, excluded []string) bool {
	for _, e := range excluded {
		if strings.EqualFold(name, e) {
			return true
		}
	}
	return false
}
