package doctor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"pharmalink/config"
	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
	"pharmalink/services/doctor"
	"pharmalink/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	config.AppConfig.JWTSecret = "test-secret"
}

// fakeTokenCache is an in-memory AuthTokenCache.
type fakeTokenCache struct {
	mu     sync.Mutex
	hashes map[string]string
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{hashes: make(map[string]string)}
}

func (c *fakeTokenCache) Store(_ context.Context, subject, tokenHash string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[subject] = tokenHash
	return nil
}

func (c *fakeTokenCache) Valid(_ context.Context, subject, tokenHash string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.hashes[subject]
	return ok && stored == tokenHash, nil
}

func (c *fakeTokenCache) Revoke(_ context.Context, subject string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hashes, subject)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
	last   interface{}
}

func (r *recordingNotifier) Publish(topic string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.last = payload
}

func newService() (*doctor.DefaultDoctorService, *doctorRepo.MemoryDoctorRepo, *fakeTokenCache, *recordingNotifier) {
	repo := doctorRepo.NewMemoryDoctorRepo()
	tokens := newFakeTokenCache()
	rec := &recordingNotifier{}
	svc := &doctor.DefaultDoctorService{
		Repo:     repo,
		Notifier: rec,
		Tokens:   tokens,
		Logger:   zap.NewNop(),
	}
	return svc, repo, tokens, rec
}

func TestRegisterHashesPasswordAndStartsOffline(t *testing.T) {
	svc, repo, _, _ := newService()

	doc, err := svc.Register("Grace", "grace@example.com", "s3cret", "cardiology")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.IsOnline)
	assert.Equal(t, models.DoctorAvailable, doc.Status)
	assert.NotEqual(t, "s3cret", doc.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(doc.Password), []byte("s3cret")))

	stored, err := repo.GetByEmail("grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.Register("Grace", "grace@example.com", "s3cret", "")
	require.NoError(t, err)

	_, err = svc.Register("Imposter", "grace@example.com", "other", "")
	require.ErrorIs(t, err, doctor.ErrEmailTaken)
}

func TestLoginMarksOnlineAndCachesToken(t *testing.T) {
	svc, repo, tokens, rec := newService()
	doc, err := svc.Register("Grace", "grace@example.com", "s3cret", "")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login("grace@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, loggedIn.IsOnline)

	stored, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOnline)

	claims, err := utils.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, claims.Subject)
	assert.Equal(t, models.RoleDoctor.String(), claims.Role)

	valid, err := tokens.Valid(context.Background(), doc.ID, utils.HashToken(token))
	require.NoError(t, err)
	assert.True(t, valid)

	require.Equal(t, []string{models.TopicDoctorStatus}, rec.topics)
	event := rec.last.(models.DoctorStatusEvent)
	assert.True(t, event.IsOnline)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.Register("Grace", "grace@example.com", "s3cret", "")
	require.NoError(t, err)

	_, _, err = svc.Login("grace@example.com", "wrong")
	require.ErrorIs(t, err, doctor.ErrInvalidCredentials)
	_, _, err = svc.Login("nobody@example.com", "s3cret")
	require.ErrorIs(t, err, doctor.ErrInvalidCredentials)
}

func TestLogoutRevokesTokenAndGoesOffline(t *testing.T) {
	svc, repo, tokens, rec := newService()
	doc, err := svc.Register("Grace", "grace@example.com", "s3cret", "")
	require.NoError(t, err)
	token, _, err := svc.Login("grace@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(doc.ID))

	stored, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsOnline)

	valid, err := tokens.Valid(context.Background(), doc.ID, utils.HashToken(token))
	require.NoError(t, err)
	assert.False(t, valid, "token must be revoked on logout")

	event := rec.last.(models.DoctorStatusEvent)
	assert.False(t, event.IsOnline)
}

func TestLogoutUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newService()
	require.ErrorIs(t, svc.Logout("ghost"), doctor.ErrNotFound)
}

func TestToggleAvailabilityFlipsOnlineFlag(t *testing.T) {
	svc, repo, _, rec := newService()
	doc, err := svc.Register("Grace", "grace@example.com", "s3cret", "")
	require.NoError(t, err)

	toggled, err := svc.ToggleAvailability(doc.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsOnline)
	event := rec.last.(models.DoctorStatusEvent)
	assert.True(t, event.IsOnline)

	toggled, err = svc.ToggleAvailability(doc.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsOnline)

	stored, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsOnline)
}

func TestToggleAvailabilityUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.ToggleAvailability("ghost")
	require.ErrorIs(t, err, doctor.ErrNotFound)
}
