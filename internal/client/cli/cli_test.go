package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/gateway/gatewaytest"
	"github.com/iudanet/medicnote/internal/client/iocli"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
	"github.com/iudanet/medicnote/internal/logging"
	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/pkg/api"
)

const testOwner = "0190a8f4-6c1e-7b3a-9f2d-3c4e5f6a7b8c"

// output collects everything the command printed
type output struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func newMockIO(out *output, inputs ...string) *iocli.IOMock {
	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			out.mu.Lock()
			defer out.mu.Unlock()
			fmt.Fprintln(&out.buf, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			out.mu.Lock()
			defer out.mu.Unlock()
			fmt.Fprintf(&out.buf, format, a...)
		},
		WriteFunc: func(p []byte) (int, error) {
			out.mu.Lock()
			defer out.mu.Unlock()
			return out.buf.Write(p)
		},
		ReadInputFunc: func(prompt string) (string, error) {
			if len(inputs) == 0 {
				return "", fmt.Errorf("no input left")
			}
			in := inputs[0]
			inputs = inputs[1:]
			return in, nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			return "correct horse battery", nil
		},
	}
}

type harness struct {
	cli     *Cli
	out     *output
	store   *boltdb.Storage
	remote  *gatewaytest.Memory
	authAPI *gateway.AuthAPIMock
}

func newHarness(t *testing.T, loggedIn bool, inputs ...string) *harness {
	t.Helper()
	ctx := context.Background()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if loggedIn {
		require.NoError(t, store.SaveAuth(ctx, &storage.AuthData{
			Username:    "alice",
			UserID:      testOwner,
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		}))
	}

	remote := gatewaytest.NewMemory()
	authAPI := &gateway.AuthAPIMock{
		LoginFunc: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{AccessToken: "tok", UserID: testOwner, ExpiresIn: 3600}, nil
		},
		RegisterFunc: func(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
			return &api.RegisterResponse{UserID: testOwner}, nil
		},
	}

	out := &output{}
	c := newCli(newMockIO(out, inputs...), components{
		store:         store,
		gateway:       remote.Mock(),
		authAPI:       authAPI,
		state:         session.New(),
		probeInterval: time.Hour,
	}, logging.Discard())
	t.Cleanup(func() { _ = c.Close() })

	return &harness{cli: c, out: out, store: store, remote: remote, authAPI: authAPI}
}

func (h *harness) offline() {
	h.remote.FailWith(func(op, id string) error { return gatewaytest.Network(op) })
}

func TestCli_RequiresSession(t *testing.T) {
	h := newHarness(t, false)

	err := h.cli.runNoteList(context.Background())
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCli_NoteAddOffline(t *testing.T) {
	h := newHarness(t, true)
	h.offline()
	ctx := context.Background()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever", patient: "bed 4"}))
	assert.Contains(t, h.out.String(), "✓ Note saved")
	assert.Contains(t, h.out.String(), "change queued for sync")
	assert.Zero(t, h.remote.Len())

	require.NoError(t, h.cli.runNoteList(ctx))
	assert.Contains(t, h.out.String(), "Found 1 note(s)")
	assert.Contains(t, h.out.String(), "fever (not synced)")
	assert.Contains(t, h.out.String(), "Patient: bed 4")
}

func TestCli_NoteAddOnline(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever"}))
	assert.Contains(t, h.out.String(), "✓ Synced with server")
	require.Equal(t, 1, h.remote.Len())

	notes, err := h.cli.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Synced)
	assert.Equal(t, "alice", notes[0].Fields["author"], "author defaults to the signed-in user")
}

func TestCli_NoteAddPromptsForText(t *testing.T) {
	h := newHarness(t, true, "prompted text")
	h.offline()

	require.NoError(t, h.cli.runNoteAdd(context.Background(), noteOptions{}))

	notes, err := h.cli.records.List(context.Background(), models.TableNotes)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "prompted text", notes[0].Fields["text"])
}

func TestCli_NoteEditAndShow(t *testing.T) {
	h := newHarness(t, true)
	h.offline()
	ctx := context.Background()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever", patient: "bed 4"}))
	notes, err := h.cli.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	id := notes[0].ID

	err = h.cli.runNoteEdit(ctx, id, noteOptions{}, false, false)
	assert.Error(t, err)

	require.NoError(t, h.cli.runNoteEdit(ctx, id, noteOptions{text: "fever 39C"}, true, false))
	require.NoError(t, h.cli.runNoteShow(ctx, id))

	out := h.out.String()
	assert.Contains(t, out, "=== Note ===")
	assert.Contains(t, out, "fever 39C")
	assert.Contains(t, out, "Patient:  bed 4", "unchanged fields are kept")
	assert.Contains(t, out, "Synced:   no")
}

func TestCli_Delete(t *testing.T) {
	h := newHarness(t, true)
	h.offline()
	ctx := context.Background()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever"}))
	notes, err := h.cli.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	id := notes[0].ID

	err = h.cli.runDelete(ctx, models.TableTrainingCompletions, id)
	assert.ErrorContains(t, err, "is not in")

	require.NoError(t, h.cli.runDelete(ctx, models.TableNotes, id))
	err = h.cli.runNoteShow(ctx, id)
	assert.ErrorContains(t, err, "no record with id")
}

func TestCli_SyncOfflineThenOnline(t *testing.T) {
	h := newHarness(t, true)
	h.offline()
	ctx := context.Background()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever"}))
	require.NoError(t, h.cli.runSync(ctx))
	assert.Contains(t, h.out.String(), "Server unreachable. 1 change(s) stay queued.")

	h.remote.FailWith(nil)
	require.NoError(t, h.cli.runSync(ctx))
	assert.Contains(t, h.out.String(), "Pushed:   1 change(s)")
	assert.Equal(t, 1, h.remote.Len())
}

func TestCli_QueueListAndRetry(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.remote.FailWith(func(op, id string) error {
		if op == "create" {
			return &gateway.RemoteError{Op: op, Kind: gateway.KindRejected, StatusCode: 400}
		}
		return nil
	})

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever"}))
	require.NoError(t, h.cli.runSync(ctx))
	assert.Contains(t, h.out.String(), "Failed:   1 change(s)")

	require.NoError(t, h.cli.runQueueList(ctx, false))
	assert.Contains(t, h.out.String(), "failed 1 time(s): rejected")

	h.remote.FailWith(nil)
	require.NoError(t, h.cli.runQueueRetry(ctx, ""))
	assert.Contains(t, h.out.String(), "✓ 1 entr(ies) queued again")

	require.NoError(t, h.cli.runSync(ctx))
	assert.Equal(t, 1, h.remote.Len())

	err := h.cli.runQueueRetry(ctx, "missing")
	assert.Error(t, err)
}

func TestCli_Training(t *testing.T) {
	h := newHarness(t, true)
	h.offline()
	ctx := context.Background()

	err := h.cli.runTrainingAdd(ctx, trainingOptions{module: "triage", score: 120})
	assert.Error(t, err)

	require.NoError(t, h.cli.runTrainingAdd(ctx, trainingOptions{module: "triage", score: 92.5, completed: "2026-05-01T10:00:00Z"}))
	require.NoError(t, h.cli.runTrainingList(ctx))

	out := h.out.String()
	assert.Contains(t, out, "Module:    triage")
	assert.Contains(t, out, "Score:     92.5%")
}

func TestCli_Login(t *testing.T) {
	h := newHarness(t, false, "alice")
	ctx := context.Background()

	h.remote.Put(&models.Record{
		ID:        "0190a8f4-0000-7000-8000-000000000001",
		OwnerID:   testOwner,
		Table:     models.TableNotes,
		Fields:    models.Note{Text: "from another device"}.Fields(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})

	require.NoError(t, h.cli.runLogin(ctx))
	out := h.out.String()
	assert.Contains(t, out, "✓ Login successful!")
	assert.Contains(t, out, "Merged with server: 1 pulled, 0 pushed, 0 removed")

	calls := h.authAPI.LoginCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "alice", calls[0].Req.Username)

	notes, err := h.cli.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestCli_RegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t, false, "alice")
	calls := 0
	h.cli.io.(*iocli.IOMock).ReadPasswordFunc = func(prompt string) (string, error) {
		calls++
		return fmt.Sprintf("password number %d", calls), nil
	}

	err := h.cli.runRegister(context.Background())
	assert.ErrorContains(t, err, "passwords do not match")
	assert.Empty(t, h.authAPI.RegisterCalls())
}

func TestCli_StatusAndLogout(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.offline()

	require.NoError(t, h.cli.runNoteAdd(ctx, noteOptions{text: "fever"}))
	require.NoError(t, h.cli.runStatus(ctx))

	out := h.out.String()
	assert.Contains(t, out, "Session: alice")
	assert.Contains(t, out, "Server: unreachable")
	assert.Contains(t, out, "Queue: 1 pending, 0 failed, 0 synced")

	require.NoError(t, h.cli.runLogout(ctx))
	require.NoError(t, h.cli.runStatus(ctx))
	assert.Contains(t, h.out.String(), "Session: not authenticated")

	// queued change survives logout
	entries, err := h.cli.queue.List(ctx, testOwner)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCli_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.cli.runDaemon(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), "Server reachable")
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
	assert.Contains(t, h.out.String(), "Stopping")
}

func TestRootCommand_StatusWithoutSession(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(VersionInfo{Version: "test"})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "client.db"), "status"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Session: not authenticated")
}

func TestRootCommand_InvalidServer(t *testing.T) {
	root := NewRootCommand(VersionInfo{Version: "test"})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "client.db"), "--server", "ftp://nowhere", "status"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "invalid configuration")
}
