package session_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	deviceRepo "pharmalink/database/repository/device"
	doctorRepo "pharmalink/database/repository/doctor"
	sessionRepo "pharmalink/database/repository/session"
	"pharmalink/models"
	"pharmalink/services/registry"
	"pharmalink/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishRecord struct {
	Topic   string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishRecord
}

func (r *recordingNotifier) Publish(topic string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishRecord{Topic: topic, Payload: payload})
}

func (r *recordingNotifier) all() []publishRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]publishRecord, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	doctors  *doctorRepo.MemoryDoctorRepo
	devices  *deviceRepo.MemoryDeviceRepo
	ledger   *sessionRepo.MemorySessionRepo
	notifier *recordingNotifier
	svc      *session.DefaultSessionService
}

func newFixture() *fixture {
	f := &fixture{
		doctors:  doctorRepo.NewMemoryDoctorRepo(),
		devices:  deviceRepo.NewMemoryDeviceRepo(),
		ledger:   sessionRepo.NewMemorySessionRepo(),
		notifier: &recordingNotifier{},
	}
	f.svc = &session.DefaultSessionService{
		Registry: &registry.DefaultResourceRegistry{Doctors: f.doctors, Devices: f.devices},
		Ledger:   f.ledger,
		Notifier: f.notifier,
		Logger:   zap.NewNop(),
	}
	return f
}

func (f *fixture) addDoctor(t *testing.T, id string, online bool, status string) {
	t.Helper()
	require.NoError(t, f.doctors.Create(&models.Doctor{
		ID:       id,
		Name:     "Dr " + id,
		Email:    id + "@example.com",
		IsOnline: online,
		Status:   status,
	}))
}

func (f *fixture) addDevice(t *testing.T, deviceID, status string) {
	t.Helper()
	_, err := f.devices.Upsert(&models.Device{DeviceID: deviceID, GPS: models.GPS{Lat: 1, Lng: 2}})
	require.NoError(t, err)
	if status != models.DeviceActive {
		require.NoError(t, f.devices.SetStatus(deviceID, status))
	}
}

// checkInvariant asserts that a resource is busy iff exactly one active
// session references it.
func (f *fixture) checkInvariant(t *testing.T) {
	t.Helper()
	doctors, err := f.doctors.GetAll()
	require.NoError(t, err)
	for _, d := range doctors {
		_, err := f.ledger.FindActiveByDoctor(d.ID)
		if d.Status == models.DoctorBusy {
			require.NoError(t, err, "busy doctor %s has no active session", d.ID)
		} else {
			require.ErrorIs(t, err, sessionRepo.ErrNotFound, "doctor %s is %s but has an active session", d.ID, d.Status)
		}
	}
	devices, err := f.devices.GetAll()
	require.NoError(t, err)
	for _, d := range devices {
		_, err := f.ledger.FindActiveByDevice(d.DeviceID)
		if d.Status == models.DeviceBusy {
			require.NoError(t, err, "busy device %s has no active session", d.DeviceID)
		} else {
			require.ErrorIs(t, err, sessionRepo.ErrNotFound, "device %s is %s but has an active session", d.DeviceID, d.Status)
		}
	}
}

func TestInitiateMatchesAvailableDoctor(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	require.Equal(t, models.SessionActive, sess.Status)
	require.Equal(t, "dr1", sess.DoctorID)
	require.Equal(t, "kiosk-1", sess.DeviceID)
	require.Equal(t, "Alice", sess.PatientName)
	require.Nil(t, sess.EndedAt)
	require.NotNil(t, sess.Doctor)
	require.NotNil(t, sess.Device)
	assert.Equal(t, models.DoctorBusy, sess.Doctor.Status)
	assert.Equal(t, models.DeviceBusy, sess.Device.Status)

	doc, err := f.doctors.GetByID("dr1")
	require.NoError(t, err)
	assert.Equal(t, models.DoctorBusy, doc.Status)
	dev, err := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceBusy, dev.Status)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, models.TopicSessionUpdate, events[0].Topic)
	assert.Equal(t, models.TopicDoctorStatus, events[1].Topic)
	sessEvent, ok := events[0].Payload.(models.SessionEvent)
	require.True(t, ok)
	assert.Equal(t, models.SessionEventInitiated, sessEvent.Type)
	statusEvent, ok := events[1].Payload.(models.DoctorStatusEvent)
	require.True(t, ok)
	assert.Equal(t, models.DoctorBusy, statusEvent.Status)
	assert.True(t, statusEvent.IsOnline)

	f.checkInvariant(t)
}

func TestInitiateDeviceNotFound(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)

	_, err := f.svc.Initiate("ghost", "Alice", "")
	require.True(t, session.IsNotFound(err), "expected NotFound, got %v", err)
	assert.Empty(t, f.notifier.all())
}

func TestInitiateBusyDeviceFailsBeforeDoctorLookup(t *testing.T) {
	// No doctors registered at all: if the device were checked after the
	// doctor, this would surface a doctor error instead.
	f := newFixture()
	f.addDevice(t, "kiosk-1", models.DeviceBusy)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.True(t, session.IsUnavailable(err), "expected Unavailable, got %v", err)
	var ue *session.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "device", ue.Entity)
}

func TestInitiateSpecificDoctorBusy(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorBusy)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "dr1")
	require.True(t, session.IsUnavailable(err), "expected Unavailable, got %v", err)

	// Nothing may have been mutated.
	dev, err2 := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err2)
	assert.Equal(t, models.DeviceActive, dev.Status)
	assert.Empty(t, f.notifier.all())
	f.checkInvariant(t)
}

func TestInitiateSpecificDoctorOffline(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", false, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "dr1")
	require.True(t, session.IsUnavailable(err), "expected Unavailable, got %v", err)
}

func TestInitiateSpecificDoctorNotFound(t *testing.T) {
	f := newFixture()
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "ghost")
	require.True(t, session.IsNotFound(err), "expected NotFound, got %v", err)
}

func TestInitiateNoAvailableDoctor(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", false, models.DoctorAvailable) // offline
	f.addDoctor(t, "dr2", true, models.DoctorBusy)       // busy
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.True(t, session.IsNotFound(err), "expected NotFound, got %v", err)
}

func TestInitiateRejectsDriftedDeviceState(t *testing.T) {
	// The device status flag says active but the ledger still holds an
	// active session for it: the double-check must refuse to double-book.
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)
	require.NoError(t, f.ledger.Create(&models.Session{
		ID:        "stale",
		DoctorID:  "dr-gone",
		DeviceID:  "kiosk-1",
		Status:    models.SessionActive,
		StartedAt: time.Now(),
	}))

	_, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.True(t, session.IsUnavailable(err), "expected Unavailable, got %v", err)
}

type failingLedger struct {
	sessionRepo.SessionRepository
	failCreate bool
}

func (f *failingLedger) Create(s *models.Session) error {
	if f.failCreate {
		return errors.New("storage down")
	}
	return f.SessionRepository.Create(s)
}

func TestInitiateRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)
	f.svc.Ledger = &failingLedger{SessionRepository: f.ledger, failCreate: true}

	_, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.Error(t, err)
	require.False(t, session.IsNotFound(err))
	require.False(t, session.IsUnavailable(err))

	// Both resources must have been reverted: no orphaned-busy state.
	doc, err2 := f.doctors.GetByID("dr1")
	require.NoError(t, err2)
	assert.Equal(t, models.DoctorAvailable, doc.Status)
	dev, err2 := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err2)
	assert.Equal(t, models.DeviceActive, dev.Status)
	assert.Empty(t, f.notifier.all())
	f.checkInvariant(t)
}

func TestConcurrentInitiateSameDoctor(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)
	f.addDevice(t, "kiosk-2", models.DeviceActive)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, deviceID := range []string{"kiosk-1", "kiosk-2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Initiate(id, "Alice", "dr1")
			results <- err
		}(deviceID)
	}
	wg.Wait()
	close(results)

	var successes, unavailable int
	for err := range results {
		if err == nil {
			successes++
		} else if session.IsUnavailable(err) {
			unavailable++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one initiate must win the doctor")
	assert.Equal(t, 1, unavailable)
	f.checkInvariant(t)
}

func TestConcurrentInitiateSameDevice(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDoctor(t, "dr2", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Initiate("kiosk-1", "Alice", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.True(t, session.IsUnavailable(err), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one initiate must win the device")
	f.checkInvariant(t)
}

func TestCompleteRevertsResources(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	f.notifier.reset()

	done, err := f.svc.Complete(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Status)
	require.NotNil(t, done.EndedAt)

	doc, err := f.doctors.GetByID("dr1")
	require.NoError(t, err)
	assert.Equal(t, models.DoctorAvailable, doc.Status)
	assert.True(t, doc.IsOnline, "completion must not touch the online flag")
	dev, err := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceActive, dev.Status)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, models.TopicSessionUpdate, events[0].Topic)
	assert.Equal(t, models.TopicDoctorStatus, events[1].Topic)
	sessEvent := events[0].Payload.(models.SessionEvent)
	assert.Equal(t, models.SessionEventCompleted, sessEvent.Type)
	statusEvent := events[1].Payload.(models.DoctorStatusEvent)
	assert.Equal(t, models.DoctorAvailable, statusEvent.Status)

	f.checkInvariant(t)
}

func TestCancelScenario(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, sess.Status)

	cancelled, err := f.svc.Cancel(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndedAt)

	doc, _ := f.doctors.GetByID("dr1")
	assert.Equal(t, models.DoctorAvailable, doc.Status)
	dev, _ := f.devices.GetByDeviceID("kiosk-1")
	assert.Equal(t, models.DeviceActive, dev.Status)
	f.checkInvariant(t)
}

func TestTerminateTwiceIsInvalidState(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	_, err = f.svc.Complete(sess.ID)
	require.NoError(t, err)
	f.notifier.reset()

	_, err = f.svc.Cancel(sess.ID)
	require.True(t, session.IsInvalidState(err), "expected InvalidState, got %v", err)
	_, err = f.svc.Complete(sess.ID)
	require.True(t, session.IsInvalidState(err), "expected InvalidState, got %v", err)

	// State and endedAt must be untouched by the failed attempts.
	stored, err := f.ledger.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, stored.Status)
	assert.Empty(t, f.notifier.all())
	f.checkInvariant(t)
}

func TestTerminateUnknownSessionNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Complete("ghost")
	require.True(t, session.IsNotFound(err), "expected NotFound, got %v", err)
	_, err = f.svc.Cancel("ghost")
	require.True(t, session.IsNotFound(err), "expected NotFound, got %v", err)
}

func TestCompleteSurvivesMissingResources(t *testing.T) {
	// Session references a doctor and device deleted out-of-band: the
	// session must still terminate.
	f := newFixture()
	require.NoError(t, f.ledger.Create(&models.Session{
		ID:        "orphan",
		DoctorID:  "dr-gone",
		DeviceID:  "kiosk-gone",
		Status:    models.SessionActive,
		StartedAt: time.Now(),
	}))

	done, err := f.svc.Complete("orphan")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Status)
	require.NotNil(t, done.EndedAt)

	// The doctor status event must still go out, keyed by the known ID.
	events := f.notifier.all()
	require.Len(t, events, 2)
	statusEvent := events[1].Payload.(models.DoctorStatusEvent)
	assert.Equal(t, "dr-gone", statusEvent.DoctorID)
}

func TestRoundTripRestoresPreInitiateState(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	before, err := f.doctors.GetByID("dr1")
	require.NoError(t, err)
	beforeDev, err := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err)

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	_, err = f.svc.Complete(sess.ID)
	require.NoError(t, err)

	after, err := f.doctors.GetByID("dr1")
	require.NoError(t, err)
	afterDev, err := f.devices.GetByDeviceID("kiosk-1")
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.IsOnline, after.IsOnline)
	assert.Equal(t, beforeDev.Status, afterDev.Status)

	// The ledger keeps the terminal session.
	history, err := f.svc.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.SessionCompleted, history[0].Status)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
		require.NoError(t, err)
		ids = append(ids, sess.ID)
		_, err = f.svc.Complete(sess.ID)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	history, err := f.svc.History()
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[1], history[1].ID)
	assert.Equal(t, ids[0], history[2].ID)
}

func TestActiveEmbedsDoctorAndDevice(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)

	_, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)

	active, err := f.svc.Active()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Doctor)
	require.NotNil(t, active[0].Device)
	assert.Equal(t, "dr1", active[0].Doctor.ID)
	assert.Equal(t, "kiosk-1", active[0].Device.DeviceID)
}

type recordingWatchdog struct {
	mu        sync.Mutex
	scheduled []string
	delays    []time.Duration
}

func (w *recordingWatchdog) ScheduleExpiry(sessionID string, delay time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduled = append(w.scheduled, sessionID)
	w.delays = append(w.delays, delay)
	return nil
}

func TestInitiateSchedulesWatchdogExpiry(t *testing.T) {
	f := newFixture()
	f.addDoctor(t, "dr1", true, models.DoctorAvailable)
	f.addDevice(t, "kiosk-1", models.DeviceActive)
	wd := &recordingWatchdog{}
	f.svc.Watchdog = wd
	f.svc.MaxDuration = 30 * time.Minute

	sess, err := f.svc.Initiate("kiosk-1", "Alice", "")
	require.NoError(t, err)
	require.Len(t, wd.scheduled, 1)
	assert.Equal(t, sess.ID, wd.scheduled[0])
	assert.Equal(t, 30*time.Minute, wd.delays[0])
}
