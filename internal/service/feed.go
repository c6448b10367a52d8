package service

import (
	"context"
	"sort"
	"strings"

	"devlink/server/internal/models"
)

// Feed pagination bounds.
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// Feed returns swipe candidates for the user, ranked by profile affinity.
// Hidden from the feed: the user themself, both sides of accepted or
// blocked pairs, and anyone the user already swiped on (interested or
// ignore). Users who rejected the caller stay visible so a reconnect
// remains possible.
func (s *ConnectionService) Feed(ctx context.Context, user *models.User, page, limit int) ([]models.UserResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	skip := (page - 1) * limit

	requests, err := s.connections.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	hidden := map[string]bool{user.ID: true}
	for _, req := range requests {
		switch req.Status {
		case models.StatusAccepted, models.StatusBlocked:
			hidden[req.FromUserID] = true
			hidden[req.ToUserID] = true
		case models.StatusInterested, models.StatusIgnore:
			if req.FromUserID == user.ID {
				hidden[req.ToUserID] = true
			}
		}
	}
	excludeIDs := make([]string, 0, len(hidden))
	for id := range hidden {
		excludeIDs = append(excludeIDs, id)
	}

	gender := ""
	if user.InterestedToConnectWith != nil {
		switch *user.InterestedToConnectWith {
		case "male", "female":
			gender = *user.InterestedToConnectWith
		}
	}

	candidates, err := s.users.ListCandidates(ctx, excludeIDs, gender)
	if err != nil {
		return nil, err
	}

	scored := make([]scoredUser, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, scoredUser{
			user:  candidate,
			score: matchScore(user, &candidate),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	if skip >= len(scored) {
		return []models.UserResponse{}, nil
	}
	scored = scored[skip:]
	if limit < len(scored) {
		scored = scored[:limit]
	}

	feed := make([]models.UserResponse, 0, len(scored))
	for _, entry := range scored {
		feed = append(feed, entry.user.ToResponse())
	}
	return feed, nil
}

type scoredUser struct {
	user  models.User
	score int
}

// matchScore ranks a candidate against the viewer's profile: same college
// 100, each common skill 10, same course 50, same branch 30.
func matchScore(viewer, candidate *models.User) int {
	score := 0

	if fieldsEqual(viewer.College, candidate.College) {
		score += 100
	}
	score += 10 * commonSkills(viewer.Skills, candidate.Skills)
	if fieldsEqual(viewer.Course, candidate.Course) {
		score += 50
	}
	if fieldsEqual(viewer.Branch, candidate.Branch) {
		score += 30
	}
	return score
}

func fieldsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	av := strings.ToLower(strings.TrimSpace(*a))
	bv := strings.ToLower(strings.TrimSpace(*b))
	return av != "" && av == bv
}

func commonSkills(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, skill := range a {
		set[strings.ToLower(strings.TrimSpace(skill))] = true
	}
	count := 0
	for _, skill := range b {
		if set[strings.ToLower(strings.TrimSpace(skill))] {
			count++
		}
	}
	return count
}
