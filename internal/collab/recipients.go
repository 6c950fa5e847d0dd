package collab

import (
	"context"

	"taskhub/internal/models"
)

// RecipientResolver decides who is notified about a comment. Implementations
// return each user id at most once.
type RecipientResolver interface {
	Recipients(task *models.Task, comment *models.Comment) []string
}

// WatcherMentionResolver notifies task watchers and mentioned users,
// excluding the comment author. Watchers come first, in watch order.
type WatcherMentionResolver struct{}

func (WatcherMentionResolver) Recipients(task *models.Task, comment *models.Comment) []string {
	var author string
	var mentioned []string
	if comment != nil {
		author = comment.AuthorID
		mentioned = comment.MentionedUserIDs
	}
	var watchers []string
	if task != nil {
		watchers = task.Watchers
	}

	seen := make(map[string]struct{}, len(watchers)+len(mentioned))
	out := make([]string, 0, len(watchers)+len(mentioned))
	for _, group := range [][]string{watchers, mentioned} {
		for _, id := range group {
			if id == "" || id == author {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// UsernameLookup finds users by username.
type UsernameLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// MentionResolver maps @mentioned usernames to user ids.
type MentionResolver struct {
	users UsernameLookup
}

func NewMentionResolver(users UsernameLookup) *MentionResolver {
	return &MentionResolver{users: users}
}

// Resolve returns the ids of existing, active users among usernames, in
// mention order. Unknown names are skipped.
func (r *MentionResolver) Resolve(ctx context.Context, usernames []string) ([]string, error) {
	out := make([]string, 0, len(usernames))
	seen := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		user, err := r.users.FindByUsername(ctx, name)
		if err != nil {
			return nil, err
		}
		if user == nil || !user.IsActive {
			continue
		}
		if _, ok := seen[user.ID]; ok {
			continue
		}
		seen[user.ID] = struct{}{}
		out = append(out, user.ID)
	}
	return out, nil
}
