package ledger

import (
	"sort"

	"github.com/calriss/corsair/internal/models"
)

// ComputeShares turns a crew roster into CrewMember rows with proportional
// shares: share_i = ratio_i / sum(ratio_j). Shares always sum to 1 within
// floating-point tolerance. Rows come back in user-ID order so repeated
// computation over the same roster is deterministic.
func ComputeShares(hitID string, crew map[string]models.CrewRole) []models.CrewMember {
	if len(crew) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(crew))
	var total float64
	for userID, role := range crew {
		userIDs = append(userIDs, userID)
		total += role.Ratio()
	}
	sort.Strings(userIDs)

	members := make([]models.CrewMember, 0, len(crew))
	for _, userID := range userIDs {
		role := crew[userID]
		members = append(members, models.CrewMember{
			HitID:     hitID,
			UserID:    userID,
			Role:      role,
			RoleRatio: role.Ratio(),
			Share:     role.Ratio() / total,
		})
	}

	return members
}
