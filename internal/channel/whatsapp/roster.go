package whatsapp

import (
	"context"

	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/logging"
)

// Roster resolves group membership and creates groups through the session.
// All failures come back as structured results, never as panics, so the
// dashboard flows that call these stay up.
type Roster struct {
	sess *Session
	log  *logging.Logger
}

// NewRoster creates a roster service over the session.
func NewRoster(sess *Session, log *logging.Logger) *Roster {
	return &Roster{sess: sess, log: log.Sub("roster")}
}

// ExtractGroupNumbers resolves a group and returns its participant phone
// numbers. A non-group target yields success=false with no participant
// list and no mutation on the network.
func (r *Roster) ExtractGroupNumbers(ctx context.Context, groupID string) domain.GroupRoster {
	if !r.sess.Ready() {
		r.log.Warn().Msg("client not ready, extraction skipped")
		return domain.GroupRoster{Success: false, Error: ErrNotReady.Error(), Numbers: []string{}}
	}

	addr := NormalizeGroup(groupID)

	chat, err := r.sess.net.ChatInfo(ctx, addr)
	if err != nil {
		r.log.Error().Err(err).Str("group", addr).Msg("failed to resolve group")
		return domain.GroupRoster{Success: false, Error: err.Error(), Numbers: []string{}}
	}

	if !chat.IsGroup {
		return domain.GroupRoster{Success: false, Error: ErrInvalidTarget.Error(), Numbers: []string{}}
	}

	seen := make(map[string]bool, len(chat.Participants))
	numbers := make([]string, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		number := StripUser(p)
		if seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}

	r.log.Info().Str("group", chat.Name).Int("participants", len(numbers)).Msg("group numbers extracted")
	return domain.GroupRoster{
		Success:          true,
		GroupName:        chat.Name,
		ParticipantCount: len(numbers),
		Numbers:          numbers,
	}
}

// CreateGroup creates a group with the given participants, normalizing
// each identifier to the contact address form.
func (r *Roster) CreateGroup(ctx context.Context, name string, participants []string) domain.GroupCreation {
	if !r.sess.Ready() {
		r.log.Warn().Msg("client not ready, group creation skipped")
		return domain.GroupCreation{Success: false, Error: ErrNotReady.Error()}
	}

	addrs := make([]string, len(participants))
	for i, p := range participants {
		addrs[i] = NormalizeUser(p)
	}

	groupID, err := r.sess.net.CreateGroup(ctx, name, addrs)
	if err != nil {
		r.log.Error().Err(err).Str("name", name).Msg("failed to create group")
		return domain.GroupCreation{Success: false, Error: err.Error()}
	}

	r.log.Info().Str("name", name).Str("group", groupID).Msg("group created")
	return domain.GroupCreation{
		Success:          true,
		GroupID:          groupID,
		GroupName:        name,
		ParticipantCount: len(addrs),
	}
}
