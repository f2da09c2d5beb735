package notification

import (
	"errors"
	"sync"
	"testing"

	"enquiry-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	fail    bool
}

func (s *recordingSink) Deliver(e models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if s.fail {
		return errors.New("sink down")
	}
	return nil
}

type recordingMailer struct {
	to      []string
	subject string
	body    string
}

func (m *recordingMailer) Send(to []string, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	ok := &recordingSink{}
	broken := &recordingSink{fail: true}
	d := NewDispatcher(zap.NewNop(), 8, broken, ok)

	d.Publish(models.ActivityLog{ActionName: "one"}, models.ActivityLog{ActionName: "two"})
	d.Close()
	d.Close()

	require.Len(t, ok.entries, 2)
	assert.Equal(t, "one", ok.entries[0].ActionName)
	assert.Len(t, broken.entries, 2)
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(zap.NewNop(), 8, sink)
	d.Close()

	assert.NotPanics(t, func() {
		d.Publish(models.ActivityLog{ActionName: "late"})
	})
	assert.Empty(t, sink.entries)
}

func TestConcurrentPublishAndClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(zap.NewNop(), 64, sink)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				d.Publish(models.ActivityLog{ActionName: "entry"})
			}
		}()
	}
	d.Close()
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.LessOrEqual(t, len(sink.entries), 160)
}

func TestMailSinkEscapesAction(t *testing.T) {
	m := &recordingMailer{}
	sink := NewMailSink(m, []string{"ops@example.com"})

	require.NoError(t, sink.Deliver(models.ActivityLog{EntityType: models.EntityEnquiry, EntityID: 42, ActionName: "<b>PO</b> created"}))
	assert.Equal(t, []string{"ops@example.com"}, m.to)
	assert.Equal(t, "[enquiry 42] activity", m.subject)
	assert.Contains(t, m.body, "&lt;b&gt;PO&lt;/b&gt; created")
}

func TestRenderSupplierEnquiry(t *testing.T) {
	body, err := RenderSupplierEnquiry(SupplierEnquiryMail{
		EnquiryNo:    "EQ2610150001",
		SupplierName: "Acme & Sons",
		Lines:        []SupplierEnquiryLine{{PartNumber: "AB-12/3", Quantity: "10"}},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "EQ2610150001")
	assert.Contains(t, body, "Acme &amp; Sons")
	assert.Contains(t, body, "<td>AB-12/3</td>")
}
