package services

import (
	"context"
	"fmt"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMilestoneRepo struct {
	mu   sync.Mutex
	rows map[string]*models.MilestoneFeedback
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{rows: make(map[string]*models.MilestoneFeedback)}
}

func milestoneKey(consultationID uuid.UUID, day int) string {
	return fmt.Sprintf("%s:%d", consultationID, day)
}

func (f *fakeMilestoneRepo) CreateOnce(ctx context.Context, feedback *models.MilestoneFeedback) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := milestoneKey(feedback.ConsultationID, feedback.Day)
	if _, exists := f.rows[key]; exists {
		return false, nil
	}
	copied := *feedback
	f.rows[key] = &copied
	return true, nil
}

func (f *fakeMilestoneRepo) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]models.MilestoneFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.MilestoneFeedback
	for _, row := range f.rows {
		if row.ConsultationID == consultationID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func newMilestoneServiceForTest(consultations *fakeConsultationRepo) (MilestoneService, *fakeMilestoneRepo) {
	repo := newFakeMilestoneRepo()
	return NewMilestoneService(repo, consultations), repo
}

func TestSubmitFeedback_RewardSchedule(t *testing.T) {
	consultations := newFakeConsultationRepo()
	id := seedConsultation(consultations, models.StandardTier, 0, 0)
	svc, _ := newMilestoneServiceForTest(consultations)

	rewards := map[int]int{3: 5, 7: 10, 14: 15, 21: 20, 30: 25}
	for day, reward := range rewards {
		feedback, err := svc.SubmitFeedback(context.Background(), id, day, models.Metrics{"pain": 3})
		require.NoError(t, err)
		assert.Equal(t, reward, feedback.TokenReward, "day %d reward", day)
		assert.True(t, feedback.Validated)
	}
}

func TestSubmitFeedback_InvalidDay(t *testing.T) {
	consultations := newFakeConsultationRepo()
	id := seedConsultation(consultations, models.StandardTier, 0, 0)
	svc, _ := newMilestoneServiceForTest(consultations)

	for _, day := range []int{0, 1, 5, 15, 31, -3} {
		_, err := svc.SubmitFeedback(context.Background(), id, day, models.Metrics{"pain": 3})
		require.Error(t, err, "day %d", day)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestSubmitFeedback_RequiresMetrics(t *testing.T) {
	consultations := newFakeConsultationRepo()
	id := seedConsultation(consultations, models.StandardTier, 0, 0)
	svc, _ := newMilestoneServiceForTest(consultations)

	_, err := svc.SubmitFeedback(context.Background(), id, 7, models.Metrics{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmitFeedback_UnknownConsultation(t *testing.T) {
	svc, _ := newMilestoneServiceForTest(newFakeConsultationRepo())

	_, err := svc.SubmitFeedback(context.Background(), uuid.New(), 7, models.Metrics{"pain": 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmitFeedback_OneRowPerDay(t *testing.T) {
	consultations := newFakeConsultationRepo()
	id := seedConsultation(consultations, models.StandardTier, 0, 0)
	svc, _ := newMilestoneServiceForTest(consultations)

	_, err := svc.SubmitFeedback(context.Background(), id, 7, models.Metrics{"pain": 4})
	require.NoError(t, err)

	_, err = svc.SubmitFeedback(context.Background(), id, 7, models.Metrics{"pain": 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	// A different milestone day still goes through.
	_, err = svc.SubmitFeedback(context.Background(), id, 14, models.Metrics{"pain": 2})
	require.NoError(t, err)
}
