package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TxRunner runs fn in one unit of work. *persistence.TxManager implements it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TextSanitizer turns user input into plain text. *markup.Renderer implements it.
type TextSanitizer interface {
	PlainText(s string) string
}

// MarkdownRenderer renders markdown to safe HTML. *markup.Renderer implements it.
type MarkdownRenderer interface {
	ToHTML(markdown string) (string, error)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// notFoundOr maps a missing row to NotFound and anything else through MapError.
func notFoundOr(err error, resource string, id int64) error {
	if isNoRows(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

// exists reports whether a lookup found a row; other failures are returned.
func exists[T any](v *T, err error) (*T, bool, error) {
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, apperrors.MapError(err)
	}
	return v, true, nil
}

func requireName(name, field string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperrors.NewValidationError(field+" is required", map[string]any{"field": strings.ToLower(field)})
	}
	return trimmed, nil
}

func duplicateName(message, name string) error {
	return apperrors.NewValidationError(message, map[string]any{"name": name})
}

// nextUpdatedAt returns a timestamp strictly after prev at database precision.
func nextUpdatedAt(now, prev time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func publish(ctx context.Context, d events.Dispatcher, event events.Event) {
	if d == nil {
		return
	}
	_ = d.Publish(ctx, event)
}

func activeUser(u *domain.User, ok bool) bool {
	return ok && u.IsActive
}
