package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batchplan-api/internal/dto"
	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

type notificationRepoStub struct {
	items []models.Notification
	reads map[string]bool
}

func (s *notificationRepoStub) Create(_ context.Context, n *models.Notification) error {
	n.ID = "n-" + n.Title
	s.items = append(s.items, *n)
	return nil
}

func (s *notificationRepoStub) visible(n models.Notification, userID string, audience models.NotificationAudience) bool {
	if n.Audience == models.AudienceAll || n.Audience == audience {
		return true
	}
	for _, id := range n.RecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *notificationRepoStub) ListForUser(_ context.Context, userID string, audience models.NotificationAudience, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := s.items[i]
		if s.visible(n, userID, audience) {
			n.Read = s.reads[n.ID+"/"+userID]
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *notificationRepoStub) MarkRead(_ context.Context, id, userID string, audience models.NotificationAudience) (bool, error) {
	for _, n := range s.items {
		if n.ID == id && s.visible(n, userID, audience) {
			s.reads[id+"/"+userID] = true
			return true, nil
		}
	}
	return false, nil
}

func TestNotificationServiceAudience(t *testing.T) {
	repo := &notificationRepoStub{reads: map[string]bool{}}
	svc := NewNotificationService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "holiday", Message: "closed", Audience: "all"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "review", Message: "week 10", Audience: "faculty"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "resubmit", Message: "report", Audience: "specific", RecipientIDs: []string{"stu-1"}})
	require.NoError(t, err)

	student := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}
	feed, err := svc.Feed(ctx, student)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "resubmit", feed[0].Title)
	assert.Equal(t, "holiday", feed[1].Title)

	other := &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent}
	feed, err = svc.Feed(ctx, other)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	faculty := &models.JWTClaims{UserID: "fac-1", Role: models.RoleFaculty}
	feed, err = svc.Feed(ctx, faculty)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	repo := &notificationRepoStub{reads: map[string]bool{}}
	svc := NewNotificationService(repo, nil, nil)
	ctx := context.Background()
	student := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}

	n, err := svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "review", Message: "week 10", Audience: "faculty"})
	require.NoError(t, err)
	assert.True(t, errors.Is(svc.MarkRead(ctx, n.ID, student), appErrors.ErrNotFound))

	n, err = svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "holiday", Message: "closed", Audience: "all"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, n.ID, student))

	feed, err := svc.Feed(ctx, student)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Read)
}

func TestNotificationServiceValidation(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{reads: map[string]bool{}}, nil, nil)
	ctx := context.Background()

	_, err := svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "x", Message: "y", Audience: "everyone"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Publish(ctx, "admin-1", dto.CreateNotificationRequest{Title: "x", Message: "y", Audience: "specific"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Feed(ctx, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
