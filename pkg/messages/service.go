// Package messages orchestrates send/edit/delete/read against a thread's
// message log, enforcing ownership and validation rules.
package messages

import (
	"errors"
	"fmt"
	"time"

	"careline/pkg/directory"
	"careline/pkg/errs"
	"careline/pkg/logger"
	"careline/pkg/models"
	"careline/pkg/store"
	"careline/pkg/threads"
	"careline/pkg/utils"
	"careline/pkg/validation"
)

type Service struct {
	Dir     directory.Resolver
	Threads *threads.Service
}

func NewService(dir directory.Resolver, ts *threads.Service) *Service {
	return &Service{Dir: dir, Threads: ts}
}

// loadFor returns the thread when principal is one of its participants.
// A missing thread and a non-participant caller produce the same
// ErrNotFound so responses never reveal which it was.
func loadFor(threadID, principal string) (models.Thread, error) {
	th, err := store.GetThread(threadID)
	if err != nil {
		return th, err
	}
	if !th.Has(principal) {
		return th, errs.ErrNotFound
	}
	return th, nil
}

// Get returns the thread's messages in creation order with sender
// identities resolved. Fetching marks every message from the other
// participant as read.
func (s *Service) Get(threadID, principal string) ([]models.MessageView, error) {
	th, err := loadFor(threadID, principal)
	if err != nil {
		return nil, err
	}
	if err := s.Threads.MarkAllRead(th.ID, principal); err != nil {
		return nil, err
	}
	msgs, err := store.ListMessages(th.ID)
	if err != nil {
		return nil, err
	}
	// two participants, so at most two directory lookups
	idents := make(map[string]models.Identity, 2)
	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		ident, ok := idents[m.Sender]
		if !ok {
			ident, err = s.Dir.Resolve(m.Sender)
			if err != nil && !errors.Is(err, errs.ErrNotFound) {
				return nil, err
			}
			idents[m.Sender] = ident
		}
		out = append(out, models.ViewOf(m, ident))
	}
	return out, nil
}

// Send appends a message to the thread. Content must trim non-empty;
// attachments of an unrecognized kind are dropped silently, recognized
// kinds are validated. The thread's last-message pointer and activity
// timestamp move with the append.
func (s *Service) Send(threadID, principal, content string, att *models.Attachment) (models.MessageView, error) {
	var view models.MessageView
	trimmed, err := validation.Content(content)
	if err != nil {
		return view, err
	}
	th, err := loadFor(threadID, principal)
	if err != nil {
		return view, err
	}
	if att != nil {
		switch att.Kind {
		case models.AttachmentImage, models.AttachmentLocation, models.AttachmentDocument:
			if err := validation.Attachment(att); err != nil {
				return view, err
			}
		default:
			logger.Debug("attachment_kind_dropped", "thread", threadID, "kind", att.Kind)
			att = nil
		}
	}

	now := time.Now().UTC().UnixNano()
	m := models.Message{
		ID:         utils.GenMessageID(),
		Thread:     th.ID,
		Sender:     principal,
		Content:    trimmed,
		Attachment: att,
		CreatedTS:  now,
		UpdatedTS:  now,
	}
	if err := store.AppendMessage(&m); err != nil {
		return view, err
	}
	sender, err := s.Dir.Resolve(principal)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return view, err
	}
	return models.ViewOf(m, sender), nil
}

// Edit replaces a message's content and marks it edited. Only the sender
// may edit; a foreign or missing message is the same ErrNotFound. Read
// state is left as-is: editing does not un-read a message the recipient
// already saw.
func (s *Service) Edit(threadID, messageID, principal, content string) error {
	trimmed, err := validation.Content(content)
	if err != nil {
		return err
	}
	if _, err := loadFor(threadID, principal); err != nil {
		return err
	}
	return store.UpdateMessage(threadID, messageID, true, func(m *models.Message) error {
		if m.Sender != principal {
			return fmt.Errorf("%w: message not editable by caller", errs.ErrNotFound)
		}
		m.Content = trimmed
		m.IsEdited = true
		m.UpdatedTS = time.Now().UTC().UnixNano()
		return nil
	})
}

// Delete removes a message from the log. Only the sender may delete; the
// store reassigns the thread's last-message pointer when the tail goes.
func (s *Service) Delete(threadID, messageID, principal string) error {
	if _, err := loadFor(threadID, principal); err != nil {
		return err
	}
	return store.DeleteMessage(threadID, messageID, func(m models.Message) error {
		if m.Sender != principal {
			return fmt.Errorf("%w: message not deletable by caller", errs.ErrNotFound)
		}
		return nil
	})
}
