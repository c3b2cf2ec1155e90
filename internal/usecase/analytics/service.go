// Package analytics summarizes scan activity for administrators.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/docsim/internal/domain"
)

// UserScans is the number of documents one user has uploaded.
type UserScans struct {
	UserID string `json:"user_id"`
	Scans  int    `json:"scans"`
}

// Summary aggregates uploads across all users.
type Summary struct {
	TotalScans  int         `json:"total_scans"`
	ActiveUsers int         `json:"active_users"`
	TopUsers    []UserScans `json:"top_users"`
}

// Service computes admin analytics.
type Service struct {
	docs DocumentLister
	top  int
}

// New creates an analytics service listing at most top users (0 = all).
func New(docs DocumentLister, top int) *Service {
	return &Service{docs: docs, top: top}
}

// Summary counts uploads per user, busiest first. Ties keep first-upload order.
func (s *Service) Summary(ctx context.Context, p domain.Principal) (Summary, error) {
	if !p.IsAdmin() {
		return Summary{}, domain.ErrUnauthorized
	}

	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list documents: %w", err)
	}

	counts := make(map[string]int)
	users := make([]UserScans, 0)
	for i := range docs {
		owner := docs[i].OwnerID()
		if _, seen := counts[owner]; !seen {
			users = append(users, UserScans{UserID: owner})
		}
		counts[owner]++
	}
	for i := range users {
		users[i].Scans = counts[users[i].UserID]
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Scans > users[j].Scans })

	out := Summary{TotalScans: len(docs), ActiveUsers: len(users), TopUsers: users}
	if s.top > 0 && len(out.TopUsers) > s.top {
		out.TopUsers = out.TopUsers[:s.top]
	}
	return out, nil
}
