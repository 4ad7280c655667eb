package payment

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evidenceledger/noticegen/internal/cache"
	"github.com/evidenceledger/noticegen/internal/notice"
)

// sandboxSessionTTL bounds how long a development session can be resolved.
const sandboxSessionTTL = 30 * time.Minute

type sandboxEntry struct {
	metadata map[string]string
}

// Sandbox is a development gateway. Sessions are kept in memory, count as paid
// immediately and redirect straight to the success URL.
type Sandbox struct {
	cache *cache.Cache
}

// NewSandbox creates a sandbox gateway storing sessions in c.
func NewSandbox(c *cache.Cache) *Sandbox {
	return &Sandbox{cache: c}
}

func (s *Sandbox) CreateSession(ctx context.Context, meta notice.Metadata, fs notice.FieldSet, successURL, cancelURL string) (*Session, error) {
	md, err := EncodeMetadata(fs)
	if err != nil {
		return nil, err
	}

	id := "cs_sandbox_" + uuid.NewString()
	s.cache.Set(id, sandboxEntry{metadata: maps.Clone(md)}, sandboxSessionTTL)

	slog.Debug("Sandbox payment session created", "session_id", id, "notice_type", meta.Type, "price", meta.Price)

	return &Session{
		ID:     id,
		URL:    strings.ReplaceAll(successURL, SessionIDPlaceholder, id),
		Paid:   true,
		Fields: fs,
	}, nil
}

func (s *Sandbox) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}

	fs, err := DecodeMetadata(v.(sandboxEntry).metadata)
	if err != nil {
		return nil, err
	}

	return &Session{ID: id, Paid: true, Fields: fs}, nil
}
