package notify

import (
	"context"
	"errors"
	"sync"

	"trainflow/email"
	"trainflow/notifylog"
	"trainflow/session"
)

type fakeRenderer struct {
	pdf   []byte
	err   error
	calls int
}

func (f *fakeRenderer) Render(session.Session) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

type fakeSource struct {
	sessions []session.Session
	err      error
}

func (f *fakeSource) FetchActive(context.Context) ([]session.Session, error) {
	return f.sessions, f.err
}

// fakeLog mirrors the append-only store, keyed by type|sessionID.
type fakeLog struct {
	mu        sync.Mutex
	entries   map[string]notifylog.Entry
	hasErr    error
	createErr error
}

func newFakeLog() *fakeLog {
	return &fakeLog{entries: map[string]notifylog.Entry{}}
}

func (f *fakeLog) key(ruleType, sessionID string) string {
	return ruleType + "|" + sessionID
}

func (f *fakeLog) HasLog(_ context.Context, ruleType, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasErr != nil {
		return false, f.hasErr
	}
	_, ok := f.entries[f.key(ruleType, sessionID)]
	return ok, nil
}

func (f *fakeLog) Create(_ context.Context, entry notifylog.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.entries[f.key(entry.Type, entry.SessionID)] = entry
	return nil
}

func (f *fakeLog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeLog) has(ruleType, sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[f.key(ruleType, sessionID)]
	return ok
}

type sentMail struct {
	to          string
	subject     string
	html        string
	attachments []email.Attachment
}

type fakeSender struct {
	sent   []sentMail
	failTo map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, subject, html string) error {
	if err := f.failTo[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func (f *fakeSender) SendWithAttachments(_ context.Context, to, subject, html string, attachments []email.Attachment) error {
	if err := f.failTo[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html, attachments: attachments})
	return nil
}

var errSMTP = errors.New("transport refused the message")
