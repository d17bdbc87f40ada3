package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/model"
)

// mockMailer records every e-mail handed to it.
type mockMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *mockMailer) Send(_ context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockSES struct {
	input *sesv2.SendEmailInput
}

func (m *mockSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = in
	return &sesv2.SendEmailOutput{}, nil
}

func testConfirmation(status model.Status) Confirmation {
	return Confirmation{
		GroupID:   uuid.MustParse("7b0e4c1a-3f7e-4d2b-9d55-0c8f1a2b3c4d"),
		Status:    status,
		Email:     "familia@example.org",
		Origin:    "Borja",
		Campers:   []string{"Lucía Pérez", "<b>Mario</b> Pérez"},
		Guardians: []string{"Ana López", "Luis <Pérez>"},
	}
}

func TestRender(t *testing.T) {
	e, err := Render(testConfirmation(model.StatusReserved))
	require.NoError(t, err)

	assert.Equal(t, "familia@example.org", e.To)
	assert.Equal(t, "Inscripción confirmada", e.Subject)
	assert.Contains(t, e.Text, "- Lucía Pérez\n")
	assert.Contains(t, e.Text, "7b0e4c1a-3f7e-4d2b-9d55-0c8f1a2b3c4d")
	assert.Contains(t, e.HTML, "&lt;b&gt;Mario&lt;/b&gt;")
	assert.NotContains(t, e.HTML, "<b>Mario</b>")
	assert.True(t, strings.HasPrefix(e.Text, "Hola, Ana López y Luis <Pérez>,\n"))
	assert.Contains(t, e.HTML, "<p>Hola, Ana López y Luis &lt;Pérez&gt;,</p>")

	e, err = Render(testConfirmation(model.StatusWaitlist))
	require.NoError(t, err)
	assert.Equal(t, "Inscripción en lista de espera", e.Subject)
	assert.Contains(t, e.Text, "lista de espera")
}

func TestRender_GreetingWithoutGuardians(t *testing.T) {
	c := testConfirmation(model.StatusReserved)
	c.Guardians = []string{" ", ""}

	e, err := Render(c)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(e.Text, "Hola,\n\n"))
	assert.Contains(t, e.HTML, "<p>Hola,</p>")
}

func TestEmailNotifier_WrapsMailerError(t *testing.T) {
	m := &mockMailer{err: errors.New("relay down")}
	err := NewEmailNotifier(m).NotifyAdmission(context.Background(), testConfirmation(model.StatusReserved))
	assert.ErrorContains(t, err, "relay down")
}

func TestSESMailer_BuildsInput(t *testing.T) {
	api := &mockSES{}
	m := newSESMailer(api, "inscripciones@example.org", "Campamento")

	require.NoError(t, m.Send(context.Background(), Email{To: "familia@example.org", Subject: "s", Text: "t", HTML: "h"}))

	require.NotNil(t, api.input)
	assert.Equal(t, "Campamento <inscripciones@example.org>", *api.input.FromEmailAddress)
	assert.Equal(t, []string{"familia@example.org"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "s", *api.input.Content.Simple.Subject.Data)
	assert.Equal(t, "t", *api.input.Content.Simple.Body.Text.Data)
	assert.Equal(t, "h", *api.input.Content.Simple.Body.Html.Data)
}

func TestSMTPMailer_Message(t *testing.T) {
	m, err := NewSMTPMailer(&config.SMTPConfig{Host: "smtp.example.org", Port: 587}, "inscripciones@example.org", "Campamento")
	require.NoError(t, err)

	msg, err := m.message(Email{To: "familia@example.org", Subject: "Hola", Text: "t", HTML: "h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hola"}, msg.GetGenHeader(mail.HeaderSubject))

	_, err = m.message(Email{To: "not an address"})
	assert.Error(t, err)
}

func TestNew_EmptyProviderIsNop(t *testing.T) {
	n, err := New(context.Background(), &config.NotifyConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, n.NotifyAdmission(context.Background(), testConfirmation(model.StatusReserved)))
}

func TestWorkerPool_DeliversQueued(t *testing.T) {
	m := &mockMailer{}
	wp := NewWorkerPool(2, 8, NewEmailNotifier(m), time.Second, zap.NewNop())
	wp.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, wp.NotifyAdmission(context.Background(), testConfirmation(model.StatusReserved)))
	}
	wp.Close()

	assert.Equal(t, 5, m.count())
}

func TestWorkerPool_SwallowsFailures(t *testing.T) {
	m := &mockMailer{err: errors.New("throttled")}
	wp := NewWorkerPool(1, 1, NewEmailNotifier(m), time.Second, zap.NewNop())
	wp.Start(context.Background())

	assert.NoError(t, wp.NotifyAdmission(context.Background(), testConfirmation(model.StatusWaitlist)))
	wp.Close()
	assert.Zero(t, m.count())
}

func TestWorkerPool_FullQueueHonoursContext(t *testing.T) {
	wp := NewWorkerPool(1, 0, Nop(), time.Second, zap.NewNop())
	// not started: nothing drains the unbuffered queue

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := wp.NotifyAdmission(ctx, testConfirmation(model.StatusReserved))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// gatedNotifier blocks every delivery until release is closed.
type gatedNotifier struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedNotifier) NotifyAdmission(ctx context.Context, _ Confirmation) error {
	g.started <- struct{}{}
	<-g.release
	return nil
}

func TestWorkerPool_CloseReleasesWaitingSenders(t *testing.T) {
	g := &gatedNotifier{started: make(chan struct{}, 1), release: make(chan struct{})}
	wp := NewWorkerPool(1, 0, g, time.Minute, zap.NewNop())
	wp.Start(context.Background())

	require.NoError(t, wp.NotifyAdmission(context.Background(), testConfirmation(model.StatusReserved)))
	<-g.started // the only worker is now busy

	waiting := make(chan error, 1)
	go func() {
		waiting <- wp.NotifyAdmission(context.Background(), testConfirmation(model.StatusWaitlist))
	}()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		wp.Close()
		close(closed)
	}()

	select {
	case err := <-waiting:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("sender still blocked after Close")
	}

	close(g.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the worker finished")
	}

	assert.ErrorIs(t, wp.NotifyAdmission(context.Background(), testConfirmation(model.StatusReserved)), ErrPoolClosed)
	wp.Close()
}
