package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	"lead-system/internal/lifecycle"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/idtoken"
	"lead-system/pkg/utils"
)

type RecordTransitionServiceInterface interface {
	SubmitTransition(ctx context.Context, recordToken string, data dto.SubmitTransitionDTO) (*dto.TransitionOutcomeDTO, error)

	// ApplyDirectInTx is the forced-direct application step shared with the
	// pending-change approval path. It validates, merges and writes the
	// record plus its history row inside the caller's transaction.
	ApplyDirectInTx(
		ctx context.Context,
		tx pgx.Tx,
		actorID uint64,
		rec *entities.Record,
		target constants.RecordState,
		subState constants.SubState,
		rawFields map[string]string,
	) error
}

type RecordTransitionService struct {
	txManager   repositories.TxManagerInterface
	recordRepo  repositories.RecordRepositoryInterface
	historyRepo repositories.RecordHistoryRepositoryInterface
	pendingRepo repositories.PendingChangeRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	codec       *idtoken.Codec
	logger      *zap.Logger
}

func NewRecordTransitionService(
	txManager repositories.TxManagerInterface,
	recordRepo repositories.RecordRepositoryInterface,
	historyRepo repositories.RecordHistoryRepositoryInterface,
	pendingRepo repositories.PendingChangeRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	codec *idtoken.Codec,
	logger *zap.Logger,
) RecordTransitionServiceInterface {
	return &RecordTransitionService{
		txManager:   txManager,
		recordRepo:  recordRepo,
		historyRepo: historyRepo,
		pendingRepo: pendingRepo,
		userRepo:    userRepo,
		codec:       codec,
		logger:      logger,
	}
}

// SubmitTransition runs one transition attempt: authorize, validate, then
// either apply directly with a history row or queue a pending change. The
// whole decision executes inside one transaction holding the record row lock,
// so it is all-or-nothing.
func (s *RecordTransitionService) SubmitTransition(ctx context.Context, recordToken string, data dto.SubmitTransitionDTO) (*dto.TransitionOutcomeDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	recordID, err := s.codec.Decode(recordToken)
	if err != nil {
		return nil, err
	}
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target := constants.RecordState(data.TargetState)
	subState := constants.SubState(data.SubState)

	var outcome dto.TransitionOutcomeDTO
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		rec, err := s.recordRepo.FindForUpdateInTx(ctx, tx, recordID)
		if err != nil {
			return err
		}

		newSlot := lifecycle.HasNewSlotInput(data.Fields) && !rec.AppointmentAt.Valid
		decision := lifecycle.Authorize(lifecycle.Attempt{
			Actor:   actor,
			Record:  rec,
			Target:  target,
			NewSlot: newSlot,
		})

		switch decision {
		case lifecycle.Denied:
			s.logger.Warn("transition denied",
				zap.Uint64("actorID", actorID),
				zap.Uint64("recordID", rec.ID),
				zap.String("target", string(target)),
			)
			return apperrors.ErrForbidden

		case lifecycle.Direct:
			if err := s.ApplyDirectInTx(ctx, tx, actorID, rec, target, subState, data.Fields); err != nil {
				return err
			}
			outcome = dto.TransitionOutcomeDTO{
				Status:      "APPLIED",
				RecordToken: recordToken,
			}
			return nil

		case lifecycle.ProposeOnly:
			// validate now so the proposer learns about a broken payload
			// immediately, not at approval time
			if _, err := lifecycle.Validate(target, subState, data.Fields, rec.ProductType); err != nil {
				return err
			}

			freeComment := data.FreeComment
			if freeComment != "" && !utils.GetCapabilitiesFromCtx(ctx)[constants.CapReportCommentWrite] {
				s.logger.Warn("free comment dropped: capability missing",
					zap.Uint64("actorID", actorID), zap.Uint64("recordID", rec.ID))
				freeComment = ""
			}

			change := &entities.PendingChange{
				RecordID:       rec.ID,
				ProposerID:     actorID,
				TargetState:    target,
				TargetSubState: nullStringFromSub(subState),
				ProposedFields: data.Fields,
				FreeComment:    null.NewString(freeComment, freeComment != ""),
			}
			if err := s.pendingRepo.UpsertPendingInTx(ctx, tx, change); err != nil {
				return err
			}
			id := change.ID.String()
			outcome = dto.TransitionOutcomeDTO{
				Status:          "QUEUED",
				RecordToken:     recordToken,
				PendingChangeID: &id,
			}
			return nil
		}
		return apperrors.ErrForbidden
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (s *RecordTransitionService) ApplyDirectInTx(
	ctx context.Context,
	tx pgx.Tx,
	actorID uint64,
	rec *entities.Record,
	target constants.RecordState,
	subState constants.SubState,
	rawFields map[string]string,
) error {
	normalized, err := lifecycle.Validate(target, subState, rawFields, rec.ProductType)
	if err != nil {
		return err
	}

	// The appointment lives in its own column; everything else merges into
	// the structured bag. Old fields survive only while the target schema
	// still admits them.
	allowed := lifecycle.SchemaFieldNames(target, rec.ProductType)
	merged := make(map[string]interface{})
	for k, v := range rec.StructuredFields {
		if allowed[k] && k != lifecycle.FieldAppointment {
			merged[k] = v
		}
	}
	for k, v := range normalized {
		if k == lifecycle.FieldAppointment {
			continue
		}
		merged[k] = storable(v)
	}

	if ts, ok := normalized[lifecycle.FieldAppointment].(time.Time); ok {
		rec.AppointmentAt = null.TimeFrom(ts)
		rec.IsUrgent = utils.IsUrgentAppointment(ts, time.Now())
	}

	rec.State = target
	rec.SubState = nullStringFromSub(subState)
	rec.StructuredFields = merged

	if err := s.recordRepo.ApplyTransitionInTx(ctx, tx, rec); err != nil {
		return err
	}

	payload := make(map[string]interface{}, len(normalized))
	for k, v := range normalized {
		payload[k] = storable(v)
	}
	return s.historyRepo.AppendInTx(ctx, tx, &entities.RecordHistory{
		RecordID: rec.ID,
		ActorID:  actorID,
		State:    rec.State,
		SubState: rec.SubState,
		Payload:  payload,
	})
}

// storable flattens timestamps to RFC3339 so structured fields and history
// payloads hold one representation regardless of whether they were just
// written or read back from jsonb.
func storable(v interface{}) interface{} {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(time.RFC3339)
	}
	return v
}

func nullStringFromSub(sub constants.SubState) null.String {
	return null.NewString(string(sub), sub != "")
}
