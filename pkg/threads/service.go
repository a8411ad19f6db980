// Package threads orchestrates thread lookup and creation and keeps the
// denormalized per-thread bookkeeping (last message, activity, unread
// counts) consistent.
package threads

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"careline/pkg/directory"
	"careline/pkg/errs"
	"careline/pkg/logger"
	"careline/pkg/models"
	"careline/pkg/store"
	"careline/pkg/utils"
)

type Service struct {
	Dir directory.Resolver
}

func NewService(dir directory.Resolver) *Service {
	return &Service{Dir: dir}
}

// List returns summaries of every thread the principal participates in,
// most recently active first. The other participant's identity is
// resolved through the directory; a directory miss fails the listing.
func (s *Service) List(principal string) ([]models.ThreadSummary, error) {
	ths, err := store.ListThreadsFor(principal)
	if err != nil {
		return nil, err
	}
	sort.Slice(ths, func(i, j int) bool { return ths[i].UpdatedTS > ths[j].UpdatedTS })

	out := make([]models.ThreadSummary, 0, len(ths))
	for _, th := range ths {
		other, err := s.Dir.Resolve(th.Other(principal))
		if err != nil {
			return nil, fmt.Errorf("resolve participant %s: %w", th.Other(principal), err)
		}
		sum := models.ThreadSummary{
			ID:              th.ID,
			ParticipantName: other.Name,
			ParticipantID:   other.ID,
			ParticipantRole: other.Role,
			LastMessageTime: th.UpdatedTS,
			Avatar:          other.Avatar,
		}
		msgs, err := store.ListMessages(th.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			if !m.IsRead && m.Sender != principal {
				sum.UnreadCount++
			}
			if m.ID == th.LastMessageID {
				content := m.Content
				sum.LastMessage = &content
				sum.LastMessageTime = m.CreatedTS
			}
		}
		out = append(out, sum)
	}
	logger.Debug("threads_listed", "principal", principal, "count", len(out))
	return out, nil
}

// FindOrCreate returns the thread id for the unordered pair (principal,
// other), creating the thread when none exists. created reports which
// case occurred. An other that does not resolve in the directory, or that
// equals principal, is an invalid argument.
func (s *Service) FindOrCreate(principal, other string) (string, bool, error) {
	if other == "" || other == principal {
		return "", false, fmt.Errorf("%w: participant must be a distinct principal", errs.ErrInvalidArgument)
	}
	if _, err := s.Dir.Resolve(other); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", false, fmt.Errorf("%w: unknown participant %s", errs.ErrInvalidArgument, other)
		}
		return "", false, err
	}

	if id, err := store.PairThreadID(principal, other); err == nil {
		return id, false, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", false, err
	}

	now := time.Now().UTC().UnixNano()
	th := models.Thread{
		ID:           utils.GenThreadID(),
		Participants: [2]string{principal, other},
		CreatedTS:    now,
		UpdatedTS:    now,
	}
	err := store.CreateThreadForPair(th)
	if errors.Is(err, errs.ErrConflict) {
		// lost the race; the pair index now holds the winner
		id, perr := store.PairThreadID(principal, other)
		if perr != nil {
			return "", false, perr
		}
		return id, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return th.ID, true, nil
}

// MarkAllRead marks every message in the thread not sent by principal as
// read. Idempotent; never touches edit flags or the thread's activity
// timestamp.
func (s *Service) MarkAllRead(threadID, principal string) error {
	_, err := store.MarkThreadRead(threadID, principal)
	return err
}
