package mapper

import (
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
)

type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress"`
}

// Filter collects the list query parameters.
type Filter struct {
	Search string `form:"q"`
	Action string `form:"action"`
}

func (f Filter) ToListInput() ports.ListInput {
	return ports.ListInput{Search: f.Search, Action: f.Action}
}

func FromDomainEntry(e *domain.Entry) Entry {
	return Entry{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC(),
		User:      e.Actor,
		Action:    string(e.Action),
		Target:    e.Target,
		Details:   e.Detail,
		IPAddress: e.Address,
	}
}

func FromDomainEntries(entries []*domain.Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromDomainEntry(e))
	}
	return out
}
