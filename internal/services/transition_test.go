package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	"lead-system/pkg/contextkeys"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/idtoken"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeRecordRepo struct {
	records map[uint64]*entities.Record
}

func (f *fakeRecordRepo) FindByID(ctx context.Context, id uint64) (*entities.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Record, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRecordRepo) GetRecords(ctx context.Context, filter dto.RecordFilter) ([]entities.Record, uint64, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) ApplyTransitionInTx(ctx context.Context, tx pgx.Tx, rec *entities.Record) error {
	stored, ok := f.records[rec.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.Version != rec.Version {
		return apperrors.ErrStaleOriginal
	}
	rec.Version++
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

type fakeHistoryRepo struct {
	entries []entities.RecordHistory
}

func (f *fakeHistoryRepo) AppendInTx(ctx context.Context, tx pgx.Tx, entry *entities.RecordHistory) error {
	entry.ID = uint64(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByRecord(ctx context.Context, recordID uint64) ([]entities.RecordHistory, error) {
	out := make([]entities.RecordHistory, 0)
	for _, e := range f.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) LastByRecord(ctx context.Context, recordID uint64) (*entities.RecordHistory, error) {
	entries, _ := f.ListByRecord(ctx, recordID)
	if len(entries) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &entries[len(entries)-1], nil
}

type fakePendingRepo struct {
	changes map[uuid.UUID]*entities.PendingChange
}

func (f *fakePendingRepo) pendingFor(recordID uint64) *entities.PendingChange {
	for _, c := range f.changes {
		if c.RecordID == recordID && c.Status == entities.PendingStatusPending {
			return c
		}
	}
	return nil
}

func (f *fakePendingRepo) UpsertPendingInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	if existing := f.pendingFor(change.RecordID); existing != nil {
		existing.ProposerID = change.ProposerID
		existing.TargetState = change.TargetState
		existing.TargetSubState = change.TargetSubState
		existing.ProposedFields = change.ProposedFields
		existing.FreeComment = change.FreeComment
		existing.CreatedAt = time.Now()
		*change = *existing
		return nil
	}
	change.ID = uuid.New()
	change.Status = entities.PendingStatusPending
	change.CreatedAt = time.Now()
	cp := *change
	f.changes[change.ID] = &cp
	return nil
}

func (f *fakePendingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingChange, error) {
	c, ok := f.changes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakePendingRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.PendingChange, error) {
	return f.FindByID(ctx, id)
}

func (f *fakePendingRepo) UpdateProposalInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	stored, ok := f.changes[change.ID]
	if !ok || stored.Status != entities.PendingStatusPending {
		return apperrors.ErrAlreadyDecided
	}
	cp := *change
	f.changes[change.ID] = &cp
	return nil
}

func (f *fakePendingRepo) MarkDecidedInTx(ctx context.Context, tx pgx.Tx, change *entities.PendingChange) error {
	stored, ok := f.changes[change.ID]
	if !ok || stored.Status != entities.PendingStatusPending {
		return apperrors.ErrAlreadyDecided
	}
	now := time.Now()
	change.DecidedAt = null.TimeFrom(now)
	cp := *change
	f.changes[change.ID] = &cp
	return nil
}

func (f *fakePendingRepo) ListByRecord(ctx context.Context, recordID uint64) ([]entities.PendingChange, error) {
	out := make([]entities.PendingChange, 0)
	for _, c := range f.changes {
		if c.RecordID == recordID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakePendingRepo) ListByStatus(ctx context.Context, status entities.PendingChangeStatus, limit, offset uint64) ([]entities.PendingChange, uint64, error) {
	out := make([]entities.PendingChange, 0)
	for _, c := range f.changes {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, uint64(len(out)), nil
}

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindByIDs(ctx context.Context, ids []int64) (map[uint64]entities.User, error) {
	out := make(map[uint64]entities.User)
	for _, id := range ids {
		if u, ok := f.users[uint64(id)]; ok {
			out[u.ID] = *u
		}
	}
	return out, nil
}

// --- test harness ---

type engineFixture struct {
	engine      RecordTransitionServiceInterface
	pendingSvc  PendingChangeServiceInterface
	recordRepo  *fakeRecordRepo
	historyRepo *fakeHistoryRepo
	pendingRepo *fakePendingRepo
	userRepo    *fakeUserRepo
	codec       *idtoken.Codec
}

var _ repositories.RecordRepositoryInterface = (*fakeRecordRepo)(nil)
var _ repositories.RecordHistoryRepositoryInterface = (*fakeHistoryRepo)(nil)
var _ repositories.PendingChangeRepositoryInterface = (*fakePendingRepo)(nil)
var _ repositories.UserRepositoryInterface = (*fakeUserRepo)(nil)

const (
	adminID      = uint64(1)
	commercialID = uint64(100)
	confirmerID  = uint64(200)
	recordID     = uint64(7)
)

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	logger := zap.NewNop()
	codec := idtoken.NewCodec("test-key")

	recordRepo := &fakeRecordRepo{records: map[uint64]*entities.Record{
		recordID: {
			ID:               recordID,
			State:            constants.StateNew,
			CentreID:         10,
			ProductType:      constants.ProductSolar,
			CommercialIDs:    []int64{int64(commercialID)},
			ConfirmerIDs:     []int64{int64(confirmerID)},
			StructuredFields: map[string]interface{}{},
			Version:          1,
		},
	}}
	historyRepo := &fakeHistoryRepo{}
	pendingRepo := &fakePendingRepo{changes: map[uuid.UUID]*entities.PendingChange{}}
	userRepo := &fakeUserRepo{users: map[uint64]*entities.User{
		adminID:      {ID: adminID, Fio: "Alice Admin", Role: constants.RoleAdmin, IsActive: true},
		commercialID: {ID: commercialID, Fio: "Carl Commercial", Role: constants.RoleCommercial, IsActive: true},
		confirmerID:  {ID: confirmerID, Fio: "Connie Confirmer", Role: constants.RoleConfirmer, IsActive: true},
	}}

	txManager := &fakeTxManager{}
	engine := NewRecordTransitionService(txManager, recordRepo, historyRepo, pendingRepo, userRepo, codec, logger)
	pendingSvc := NewPendingChangeService(txManager, pendingRepo, recordRepo, userRepo, engine, codec, logger)

	return &engineFixture{
		engine:      engine,
		pendingSvc:  pendingSvc,
		recordRepo:  recordRepo,
		historyRepo: historyRepo,
		pendingRepo: pendingRepo,
		userRepo:    userRepo,
		codec:       codec,
	}
}

func ctxForUser(id uint64, role constants.Role, caps ...string) context.Context {
	capSet := make(map[string]bool, len(caps))
	for _, c := range caps {
		capSet[c] = true
	}
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, id)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	return context.WithValue(ctx, contextkeys.UserCapabilitiesKey, capSet)
}

func signedFields() map[string]string {
	return map[string]string{
		"signature_date":   "2024-03-01",
		"signature_time":   "16:00",
		"price":            "18500",
		"financing_months": "120",
		"panel_count":      "12",
	}
}

func (f *engineFixture) token() string { return f.codec.Encode(recordID) }

// A commercial's signature outcome is queued, not applied.
func TestSubmitTransition_CommercialSignedIsQueued(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial, constants.CapReportCommentWrite)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
		FreeComment: "client signed after second visit",
	})
	require.NoError(t, err)

	assert.Equal(t, "QUEUED", outcome.Status)
	require.NotNil(t, outcome.PendingChangeID)

	rec, _ := f.recordRepo.FindByID(ctx, recordID)
	assert.Equal(t, constants.StateNew, rec.State, "record must stay untouched")
	assert.Empty(t, f.historyRepo.entries)

	pending := f.pendingRepo.pendingFor(recordID)
	require.NotNil(t, pending)
	assert.Equal(t, constants.StateSigned, pending.TargetState)
	assert.Equal(t, "client signed after second visit", pending.FreeComment.String)
}

// Approval applies the stored proposal and closes it.
func TestApprove_AppliesProposal(t *testing.T) {
	f := newEngineFixture(t)

	commercialCtx := ctxForUser(commercialID, constants.RoleCommercial, constants.CapReportCommentWrite)
	outcome, err := f.engine.SubmitTransition(commercialCtx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)
	pendingID := uuid.MustParse(*outcome.PendingChangeID)

	adminCtx := ctxForUser(adminID, constants.RoleAdmin)
	decision, err := f.pendingSvc.Approve(adminCtx, pendingID, dto.DecidePendingChangeDTO{Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, string(entities.PendingStatusApproved), decision.Status)

	rec, _ := f.recordRepo.FindByID(adminCtx, recordID)
	assert.Equal(t, constants.StateSigned, rec.State)
	assert.Equal(t, 18500.0, rec.StructuredFields["price"])

	require.Len(t, f.historyRepo.entries, 1)
	last := f.historyRepo.entries[0]
	assert.Equal(t, rec.State, last.State)
	assert.Equal(t, adminID, last.ActorID)

	stored, _ := f.pendingRepo.FindByID(adminCtx, pendingID)
	assert.Equal(t, entities.PendingStatusApproved, stored.Status)
	assert.Equal(t, adminID, stored.DecidedBy.Uint64)
	assert.True(t, stored.DecidedAt.Valid)
}

// A commercial confirming a brand-new slot writes directly.
func TestSubmitTransition_CommercialNewSlotIsDirect(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateConfirmed),
		Fields: map[string]string{
			"appointment_date": "2024-03-01",
			"appointment_time": "09:00",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "APPLIED", outcome.Status)
	assert.Nil(t, outcome.PendingChangeID)

	rec, _ := f.recordRepo.FindByID(ctx, recordID)
	assert.Equal(t, constants.StateConfirmed, rec.State)
	require.True(t, rec.AppointmentAt.Valid)
	assert.Equal(t, 9, rec.AppointmentAt.Time.Hour())
	assert.Nil(t, f.pendingRepo.pendingFor(recordID))

	require.Len(t, f.historyRepo.entries, 1)
	assert.Equal(t, rec.State, f.historyRepo.entries[0].State)
}

// A signature payload without the price never touches anything.
func TestSubmitTransition_MissingPriceRejected(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	fields := signedFields()
	delete(fields, "price")
	_, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      fields,
	})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, apperrors.MissingField, vErr.Kind)
	assert.Equal(t, "price", vErr.Field)

	rec, _ := f.recordRepo.FindByID(ctx, recordID)
	assert.Equal(t, constants.StateNew, rec.State)
	assert.Nil(t, f.pendingRepo.pendingFor(recordID))
	assert.Empty(t, f.historyRepo.entries)
}

func TestSubmitTransition_UnassignedCommercialForbidden(t *testing.T) {
	f := newEngineFixture(t)
	f.userRepo.users[999] = &entities.User{ID: 999, Role: constants.RoleCommercial, IsActive: true}
	ctx := ctxForUser(999, constants.RoleCommercial)

	_, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateRefused),
		Fields:      map[string]string{"comment": "no"},
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// At-most-one-pending: a second proposal overwrites the first in place.
func TestSubmitTransition_SecondProposalUpdatesInPlace(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	first, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)

	second, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateClientThinking),
		SubState:    string(constants.SubThinkingSpouse),
		Fields:      map[string]string{"comment": "wants to talk it over"},
	})
	require.NoError(t, err)

	assert.Equal(t, *first.PendingChangeID, *second.PendingChangeID)
	pendings, _, err := f.pendingRepo.ListByStatus(ctx, entities.PendingStatusPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pendings, 1)
	assert.Equal(t, constants.StateClientThinking, pendings[0].TargetState)
}

func TestSubmitTransition_FreeCommentNeedsCapability(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial) // no capability

	_, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
		FreeComment: "should be dropped",
	})
	require.NoError(t, err)

	pending := f.pendingRepo.pendingFor(recordID)
	require.NotNil(t, pending)
	assert.False(t, pending.FreeComment.Valid)
}

// Transition merge: fields outside the target schema are cleared, the rest
// survive, and the history tail always matches the record.
func TestSubmitTransition_MergeAndHistoryInvariant(t *testing.T) {
	f := newEngineFixture(t)
	adminCtx := ctxForUser(adminID, constants.RoleAdmin)

	_, err := f.engine.SubmitTransition(adminCtx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)

	_, err = f.engine.SubmitTransition(adminCtx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateRefused),
		SubState:    string(constants.SubRefusedPrice),
		Fields:      map[string]string{"comment": "changed his mind"},
	})
	require.NoError(t, err)

	rec, _ := f.recordRepo.FindByID(adminCtx, recordID)
	assert.Equal(t, constants.StateRefused, rec.State)
	assert.Equal(t, string(constants.SubRefusedPrice), rec.SubState.String)
	assert.NotContains(t, rec.StructuredFields, "price", "signature fields must be cleared by the REFUSED schema")
	assert.Equal(t, "changed his mind", rec.StructuredFields["comment"])

	last, err := f.historyRepo.LastByRecord(adminCtx, recordID)
	require.NoError(t, err)
	assert.Equal(t, rec.State, last.State)
	assert.Equal(t, rec.SubState, last.SubState)
}

func TestDecide_AlreadyDecided(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)
	pendingID := uuid.MustParse(*outcome.PendingChangeID)

	adminCtx := ctxForUser(adminID, constants.RoleAdmin)
	_, err = f.pendingSvc.Reject(adminCtx, pendingID, dto.DecidePendingChangeDTO{Comment: "not valid"})
	require.NoError(t, err)

	_, err = f.pendingSvc.Reject(adminCtx, pendingID, dto.DecidePendingChangeDTO{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)
	_, err = f.pendingSvc.Approve(adminCtx, pendingID, dto.DecidePendingChangeDTO{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDecided)

	rec, _ := f.recordRepo.FindByID(adminCtx, recordID)
	assert.Equal(t, constants.StateNew, rec.State, "rejection must leave the record untouched")
}

func TestDecide_NonAdminForbidden(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)

	_, err = f.pendingSvc.Approve(ctx, uuid.MustParse(*outcome.PendingChangeID), dto.DecidePendingChangeDTO{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// Round-trip: an approved proposal ends up exactly where a direct admin
// transition with the same payload would have landed.
func TestApprove_RoundTripMatchesDirect(t *testing.T) {
	direct := newEngineFixture(t)
	queued := newEngineFixture(t)

	adminCtx := ctxForUser(adminID, constants.RoleAdmin)
	commercialCtx := ctxForUser(commercialID, constants.RoleCommercial)

	_, err := direct.engine.SubmitTransition(adminCtx, direct.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)

	outcome, err := queued.engine.SubmitTransition(commercialCtx, queued.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)
	_, err = queued.pendingSvc.Approve(adminCtx, uuid.MustParse(*outcome.PendingChangeID), dto.DecidePendingChangeDTO{})
	require.NoError(t, err)

	directRec, _ := direct.recordRepo.FindByID(adminCtx, recordID)
	queuedRec, _ := queued.recordRepo.FindByID(adminCtx, recordID)
	assert.Equal(t, directRec.State, queuedRec.State)
	assert.Equal(t, directRec.SubState, queuedRec.SubState)
	assert.Equal(t, directRec.StructuredFields, queuedRec.StructuredFields)
}

func TestEdit_ReshapesPendingProposal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)
	pendingID := uuid.MustParse(*outcome.PendingChangeID)

	adminCtx := ctxForUser(adminID, constants.RoleAdmin)
	edited, err := f.pendingSvc.Edit(adminCtx, pendingID, dto.EditPendingChangeDTO{
		TargetState: string(constants.StateSignedPartial),
		Fields: map[string]string{
			"signature_date":   "2024-03-02",
			"price":            "17000",
			"financing_months": "96",
		},
		FreeComment: "partial delivery only",
	})
	require.NoError(t, err)
	assert.Equal(t, string(constants.StateSignedPartial), edited.TargetState)

	_, err = f.pendingSvc.Approve(adminCtx, pendingID, dto.DecidePendingChangeDTO{})
	require.NoError(t, err)

	rec, _ := f.recordRepo.FindByID(adminCtx, recordID)
	assert.Equal(t, constants.StateSignedPartial, rec.State)
	assert.Equal(t, 17000.0, rec.StructuredFields["price"])
}

func TestEdit_InvalidPayloadRejected(t *testing.T) {
	f := newEngineFixture(t)
	ctx := ctxForUser(commercialID, constants.RoleCommercial)

	outcome, err := f.engine.SubmitTransition(ctx, f.token(), dto.SubmitTransitionDTO{
		TargetState: string(constants.StateSigned),
		Fields:      signedFields(),
	})
	require.NoError(t, err)

	adminCtx := ctxForUser(adminID, constants.RoleAdmin)
	_, err = f.pendingSvc.Edit(adminCtx, uuid.MustParse(*outcome.PendingChangeID), dto.EditPendingChangeDTO{
		TargetState: string(constants.StateSigned),
		Fields:      map[string]string{"signature_date": "2024-03-02"}, // price missing
	})
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
