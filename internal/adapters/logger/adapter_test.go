package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockLogger implements Logger interface for testing.
type mockLogger struct {
	infoCalled  bool
	debugCalled bool
	warnCalled  bool
	errorCalled bool
	lastMsg     string
	lastFields  map[string]any
	lastErr     error
}

func (m *mockLogger) Info(_ context.Context, msg string, fields map[string]any) {
	m.infoCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Debug(_ context.Context, msg string, fields map[string]any) {
	m.debugCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Warn(_ context.Context, msg string, fields map[string]any) {
	m.warnCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Error(_ context.Context, msg string, err error, fields map[string]any) {
	m.errorCalled = true
	m.lastMsg = msg
	m.lastErr = err
	m.lastFields = fields
}

func TestZapAdapter_Levels(t *testing.T) {
	ctx := context.Background()
	fields := map[string]any{"remote_tag": "registry.humanitec.io/org/app:v1"}

	tests := []struct {
		name   string
		log    func(a *ZapAdapter)
		called func(m *mockLogger) bool
	}{
		{
			name:   "info",
			log:    func(a *ZapAdapter) { a.Info(ctx, "pushed image", fields) },
			called: func(m *mockLogger) bool { return m.infoCalled },
		},
		{
			name:   "debug",
			log:    func(a *ZapAdapter) { a.Debug(ctx, "pushed image", fields) },
			called: func(m *mockLogger) bool { return m.debugCalled },
		},
		{
			name:   "warn",
			log:    func(a *ZapAdapter) { a.Warn(ctx, "pushed image", fields) },
			called: func(m *mockLogger) bool { return m.warnCalled },
		},
		{
			name:   "error",
			log:    func(a *ZapAdapter) { a.Error(ctx, "pushed image", assert.AnError, fields) },
			called: func(m *mockLogger) bool { return m.errorCalled },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockLogger{}
			adapter := NewZapAdapter(mock)

			tt.log(adapter)

			assert.True(t, tt.called(mock))
			assert.Equal(t, "pushed image", mock.lastMsg)
			assert.Equal(t, fields, mock.lastFields)
		})
	}
}

func TestZapAdapter_Error_PassesError(t *testing.T) {
	mock := &mockLogger{}
	adapter := NewZapAdapter(mock)

	adapter.Error(context.Background(), "build failed", assert.AnError, nil)

	assert.Equal(t, assert.AnError, mock.lastErr)
	assert.Nil(t, mock.lastFields)
}

func TestZapAdapter_With(t *testing.T) {
	mock := &mockLogger{}
	root := NewZapAdapter(mock)
	child := root.ForComponent("docker").With(map[string]any{"registry": "registry.humanitec.io"})

	child.Info(context.Background(), "logged in", map[string]any{"registry": "override"})

	assert.Equal(t, map[string]any{
		"component": "docker",
		"registry":  "override",
	}, mock.lastFields)

	root.Info(context.Background(), "root entry", nil)
	assert.Nil(t, mock.lastFields, "With must not modify the parent adapter")
}

func TestZapAdapter_RedactsSensitiveFields(t *testing.T) {
	mock := &mockLogger{}
	adapter := NewZapAdapter(mock).With(map[string]any{"humanitec_token": "abc"})

	adapter.Debug(context.Background(), "credentials", map[string]any{
		"username":      "robot",
		"Password":      "s3cret",
		"registry_auth": "eyJ1c2VybmFtZSI6",
	})

	assert.Equal(t, map[string]any{
		"humanitec_token": redacted,
		"username":        "robot",
		"Password":        redacted,
		"registry_auth":   redacted,
	}, mock.lastFields)
}
