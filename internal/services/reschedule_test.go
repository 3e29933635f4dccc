package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/idtoken"
)

type fakeRescheduleRepo struct {
	requests map[uuid.UUID]*entities.RescheduleRequest
}

var _ repositories.RescheduleRepositoryInterface = (*fakeRescheduleRepo)(nil)

func (f *fakeRescheduleRepo) Create(ctx context.Context, req *entities.RescheduleRequest) error {
	req.ID = uuid.New()
	req.Status = entities.RescheduleStatusPending
	req.CreatedAt = time.Now()
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRescheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.RescheduleRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRescheduleRepo) Acknowledge(ctx context.Context, id uuid.UUID) error {
	r, ok := f.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if r.Status != entities.RescheduleStatusPending {
		return apperrors.ErrAlreadyDecided
	}
	r.Status = entities.RescheduleStatusAcknowledged
	r.AcknowledgedAt = null.TimeFrom(time.Now())
	return nil
}

func (f *fakeRescheduleRepo) ListByRecipient(ctx context.Context, recipientID uint64, pendingOnly bool) ([]entities.RescheduleRequest, error) {
	out := make([]entities.RescheduleRequest, 0)
	for _, r := range f.requests {
		if r.RecipientID != recipientID {
			continue
		}
		if pendingOnly && r.Status != entities.RescheduleStatusPending {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRescheduleRepo) ListByRecord(ctx context.Context, recordID uint64) ([]entities.RescheduleRequest, error) {
	out := make([]entities.RescheduleRequest, 0)
	for _, r := range f.requests {
		if r.RecordID == recordID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type rescheduleFixture struct {
	svc            RescheduleServiceInterface
	rescheduleRepo *fakeRescheduleRepo
	recordRepo     *fakeRecordRepo
	userRepo       *fakeUserRepo
	codec          *idtoken.Codec
	appointment    time.Time
}

func newRescheduleFixture(t *testing.T) *rescheduleFixture {
	t.Helper()
	codec := idtoken.NewCodec("test-key")
	appointment := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)

	recordRepo := &fakeRecordRepo{records: map[uint64]*entities.Record{
		recordID: {
			ID:            recordID,
			State:         constants.StateConfirmed,
			CentreID:      10,
			ProductType:   constants.ProductHeating,
			CommercialIDs: []int64{int64(commercialID)},
			ConfirmerIDs:  []int64{int64(confirmerID)},
			AppointmentAt: null.TimeFrom(appointment),
			Version:       1,
		},
	}}
	userRepo := &fakeUserRepo{users: map[uint64]*entities.User{
		adminID:      {ID: adminID, Fio: "Alice Admin", Role: constants.RoleAdmin, IsActive: true},
		commercialID: {ID: commercialID, Fio: "Carl Commercial", Role: constants.RoleCommercial, IsActive: true},
		confirmerID:  {ID: confirmerID, Fio: "Connie Confirmer", Role: constants.RoleConfirmer, IsActive: true},
	}}
	rescheduleRepo := &fakeRescheduleRepo{requests: map[uuid.UUID]*entities.RescheduleRequest{}}

	svc := NewRescheduleService(rescheduleRepo, recordRepo, userRepo, codec, zap.NewNop())
	return &rescheduleFixture{
		svc:            svc,
		rescheduleRepo: rescheduleRepo,
		recordRepo:     recordRepo,
		userRepo:       userRepo,
		codec:          codec,
		appointment:    appointment,
	}
}

func (f *rescheduleFixture) token() string { return f.codec.Encode(recordID) }

// A commercial's 60-minute proposal on a 09:00 appointment lands at 10:00 in
// the assigned confirmer's inbox, with the appointment itself untouched.
func TestPropose_CommercialRoutedToConfirmer(t *testing.T) {
	f := newRescheduleFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	out, err := f.svc.Propose(ctx, f.token(), dto.ProposeRescheduleDTO{
		OffsetMinutes: 60,
		Message:       "stuck on the A7, need an hour",
	})
	require.NoError(t, err)

	assert.Equal(t, f.appointment, out.OriginalTime)
	assert.Equal(t, f.appointment.Add(time.Hour), out.NewTime)
	assert.Equal(t, confirmerID, out.Recipient.ID)
	assert.Equal(t, string(entities.RescheduleStatusPending), out.Status)

	rec, _ := f.recordRepo.FindByID(ctx, recordID)
	assert.Equal(t, f.appointment, rec.AppointmentAt.Time, "proposing must not move the appointment")

	inbox, err := f.svc.ListInbox(ctxForUser(confirmerID, constants.RoleConfirmer), true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, out.ID, inbox[0].ID)
}

func TestPropose_Validation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(f *rescheduleFixture)
		actor       uint64
		role        constants.Role
		payload     dto.ProposeRescheduleDTO
		wantErr     error
		wantInvalid bool
	}{
		{
			name:        "offset outside the allowed set",
			actor:       commercialID,
			role:        constants.RoleCommercial,
			payload:     dto.ProposeRescheduleDTO{OffsetMinutes: 25, Message: "late"},
			wantInvalid: true,
		},
		{
			name:        "empty message",
			actor:       commercialID,
			role:        constants.RoleCommercial,
			payload:     dto.ProposeRescheduleDTO{OffsetMinutes: 30, Message: "   "},
			wantInvalid: true,
		},
		{
			name:  "no confirmer assigned",
			actor: commercialID,
			role:  constants.RoleCommercial,
			mutate: func(f *rescheduleFixture) {
				f.recordRepo.records[recordID].ConfirmerIDs = nil
			},
			payload: dto.ProposeRescheduleDTO{OffsetMinutes: 30, Message: "late"},
			wantErr: apperrors.ErrNoConfirmerAssigned,
		},
		{
			name:  "no appointment to shift",
			actor: commercialID,
			role:  constants.RoleCommercial,
			mutate: func(f *rescheduleFixture) {
				f.recordRepo.records[recordID].AppointmentAt = null.Time{}
			},
			payload: dto.ProposeRescheduleDTO{OffsetMinutes: 30, Message: "late"},
			wantErr: apperrors.ErrNoAppointment,
		},
		{
			name:    "admin without explicit recipient",
			actor:   adminID,
			role:    constants.RoleAdmin,
			payload: dto.ProposeRescheduleDTO{OffsetMinutes: 30, Message: "late"},
			wantErr: apperrors.ErrRecipientRequired,
		},
		{
			name:  "unassigned commercial",
			actor: 999,
			role:  constants.RoleCommercial,
			mutate: func(f *rescheduleFixture) {
				f.userRepo.users[999] = &entities.User{ID: 999, Role: constants.RoleCommercial, IsActive: true}
			},
			payload: dto.ProposeRescheduleDTO{OffsetMinutes: 30, Message: "late"},
			wantErr: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRescheduleFixture(t)
			if tt.mutate != nil {
				tt.mutate(f)
			}
			_, err := f.svc.Propose(ctxForUser(tt.actor, tt.role), f.token(), tt.payload)
			if tt.wantInvalid {
				var invalid *apperrors.InvalidInputError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, f.rescheduleRepo.requests)
		})
	}
}

func TestPropose_StaleObservedTime(t *testing.T) {
	f := newRescheduleFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	stale := f.appointment.Add(-30 * time.Minute)
	_, err := f.svc.Propose(ctx, f.token(), dto.ProposeRescheduleDTO{
		OffsetMinutes: 30,
		Message:       "running late",
		ObservedTime:  &stale,
	})
	assert.ErrorIs(t, err, apperrors.ErrStaleOriginal)

	// a matching observation goes through
	observed := f.appointment
	_, err = f.svc.Propose(ctx, f.token(), dto.ProposeRescheduleDTO{
		OffsetMinutes: 30,
		Message:       "running late",
		ObservedTime:  &observed,
	})
	assert.NoError(t, err)
}

func TestPropose_ConfirmerFilesToSelf(t *testing.T) {
	f := newRescheduleFixture(t)
	ctx := ctxForUser(confirmerID, constants.RoleConfirmer)

	out, err := f.svc.Propose(ctx, f.token(), dto.ProposeRescheduleDTO{
		OffsetMinutes: 15,
		Message:       "client asked to push back",
	})
	require.NoError(t, err)
	assert.Equal(t, confirmerID, out.Recipient.ID)
}

func TestAcknowledge(t *testing.T) {
	f := newRescheduleFixture(t)

	out, err := f.svc.Propose(ctxForUser(commercialID, constants.RoleCommercial), f.token(), dto.ProposeRescheduleDTO{
		OffsetMinutes: 90,
		Message:       "double booked",
	})
	require.NoError(t, err)
	id := uuid.MustParse(out.ID)

	// only the recipient (or an admin) may acknowledge
	err = f.svc.Acknowledge(ctxForUser(commercialID, constants.RoleCommercial), id)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = f.svc.Acknowledge(ctxForUser(confirmerID, constants.RoleConfirmer), id)
	require.NoError(t, err)

	err = f.svc.Acknowledge(ctxForUser(confirmerID, constants.RoleConfirmer), id)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

	inbox, err := f.svc.ListInbox(ctxForUser(confirmerID, constants.RoleConfirmer), true)
	require.NoError(t, err)
	assert.Empty(t, inbox, "an acknowledged request leaves the pending inbox")
}
