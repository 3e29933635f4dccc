package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
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

type PendingChangeServiceInterface interface {
	Approve(ctx context.Context, id uuid.UUID, data dto.DecidePendingChangeDTO) (*dto.DecisionOutcomeDTO, error)
	Reject(ctx context.Context, id uuid.UUID, data dto.DecidePendingChangeDTO) (*dto.DecisionOutcomeDTO, error)
	Edit(ctx context.Context, id uuid.UUID, data dto.EditPendingChangeDTO) (*dto.PendingChangeDTO, error)
	ListByRecord(ctx context.Context, recordToken string) ([]dto.PendingChangeDTO, error)
	ListByStatus(ctx context.Context, status string, limit, offset uint64) ([]dto.PendingChangeDTO, uint64, error)
}

type PendingChangeService struct {
	txManager   repositories.TxManagerInterface
	pendingRepo repositories.PendingChangeRepositoryInterface
	recordRepo  repositories.RecordRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	engine      RecordTransitionServiceInterface
	codec       *idtoken.Codec
	logger      *zap.Logger
}

func NewPendingChangeService(
	txManager repositories.TxManagerInterface,
	pendingRepo repositories.PendingChangeRepositoryInterface,
	recordRepo repositories.RecordRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	engine RecordTransitionServiceInterface,
	codec *idtoken.Codec,
	logger *zap.Logger,
) PendingChangeServiceInterface {
	return &PendingChangeService{
		txManager:   txManager,
		pendingRepo: pendingRepo,
		recordRepo:  recordRepo,
		userRepo:    userRepo,
		engine:      engine,
		codec:       codec,
		logger:      logger,
	}
}

func (s *PendingChangeService) requireAdmin(ctx context.Context) (uint64, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if role != constants.RoleAdmin {
		return 0, apperrors.ErrForbidden
	}
	return actorID, nil
}

// Approve re-runs the transition engine in forced-direct mode with the stored
// proposal. If the payload no longer validates the whole transaction rolls
// back and the proposal stays pending; an approval never silently discards a
// proposal.
func (s *PendingChangeService) Approve(ctx context.Context, id uuid.UUID, data dto.DecidePendingChangeDTO) (*dto.DecisionOutcomeDTO, error) {
	adminID, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		change, err := s.pendingRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if change.IsDecided() {
			return apperrors.ErrAlreadyDecided
		}

		rec, err := s.recordRepo.FindForUpdateInTx(ctx, tx, change.RecordID)
		if err != nil {
			return err
		}

		subState := constants.SubState(change.TargetSubState.String)
		if err := s.engine.ApplyDirectInTx(ctx, tx, adminID, rec, change.TargetState, subState, change.ProposedFields); err != nil {
			s.logger.Warn("pending change approval failed at apply step",
				zap.String("pendingChangeID", id.String()), zap.Error(err))
			return err
		}

		change.Status = entities.PendingStatusApproved
		change.AdminComment = null.NewString(data.Comment, data.Comment != "")
		change.DecidedBy = null.Uint64From(adminID)
		return s.pendingRepo.MarkDecidedInTx(ctx, tx, change)
	})
	if err != nil {
		return nil, err
	}
	return &dto.DecisionOutcomeDTO{ID: id.String(), Status: string(entities.PendingStatusApproved)}, nil
}

// Reject is a pure status transition: the record is untouched.
func (s *PendingChangeService) Reject(ctx context.Context, id uuid.UUID, data dto.DecidePendingChangeDTO) (*dto.DecisionOutcomeDTO, error) {
	adminID, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		change, err := s.pendingRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if change.IsDecided() {
			return apperrors.ErrAlreadyDecided
		}
		change.Status = entities.PendingStatusRejected
		change.AdminComment = null.NewString(data.Comment, data.Comment != "")
		change.DecidedBy = null.Uint64From(adminID)
		return s.pendingRepo.MarkDecidedInTx(ctx, tx, change)
	})
	if err != nil {
		return nil, err
	}
	return &dto.DecisionOutcomeDTO{ID: id.String(), Status: string(entities.PendingStatusRejected)}, nil
}

// Edit lets an administrator reshape a proposal before deciding it. The
// edited payload is validated against the target state right away.
func (s *PendingChangeService) Edit(ctx context.Context, id uuid.UUID, data dto.EditPendingChangeDTO) (*dto.PendingChangeDTO, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	target := constants.RecordState(data.TargetState)
	subState := constants.SubState(data.SubState)

	var edited *entities.PendingChange
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		change, err := s.pendingRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if change.IsDecided() {
			return apperrors.ErrAlreadyDecided
		}

		rec, err := s.recordRepo.FindForUpdateInTx(ctx, tx, change.RecordID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Validate(target, subState, data.Fields, rec.ProductType); err != nil {
			return err
		}

		change.TargetState = target
		change.TargetSubState = null.NewString(data.SubState, data.SubState != "")
		change.ProposedFields = data.Fields
		change.FreeComment = null.NewString(data.FreeComment, data.FreeComment != "")
		if err := s.pendingRepo.UpdateProposalInTx(ctx, tx, change); err != nil {
			return err
		}
		edited = change
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, edited), nil
}

func (s *PendingChangeService) ListByRecord(ctx context.Context, recordToken string) ([]dto.PendingChangeDTO, error) {
	recordID, err := s.codec.Decode(recordToken)
	if err != nil {
		return nil, err
	}
	changes, err := s.pendingRepo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, changes), nil
}

func (s *PendingChangeService) ListByStatus(ctx context.Context, status string, limit, offset uint64) ([]dto.PendingChangeDTO, uint64, error) {
	changes, total, err := s.pendingRepo.ListByStatus(ctx, entities.PendingChangeStatus(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.toDTOs(ctx, changes), total, nil
}

func (s *PendingChangeService) toDTOs(ctx context.Context, changes []entities.PendingChange) []dto.PendingChangeDTO {
	out := make([]dto.PendingChangeDTO, 0, len(changes))
	for i := range changes {
		out = append(out, *s.toDTO(ctx, &changes[i]))
	}
	return out
}

func (s *PendingChangeService) toDTO(ctx context.Context, p *entities.PendingChange) *dto.PendingChangeDTO {
	d := &dto.PendingChangeDTO{
		ID:             p.ID.String(),
		RecordToken:    s.codec.Encode(p.RecordID),
		Proposer:       dto.ShortUserDTO{ID: p.ProposerID},
		TargetState:    string(p.TargetState),
		ProposedFields: p.ProposedFields,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt.Format(utils.DateTimeLayout),
	}
	if p.TargetSubState.Valid {
		d.TargetSubState = utils.Ptr(p.TargetSubState.String)
	}
	if p.FreeComment.Valid {
		d.FreeComment = utils.Ptr(p.FreeComment.String)
	}
	if p.AdminComment.Valid {
		d.AdminComment = utils.Ptr(p.AdminComment.String)
	}
	if p.DecidedAt.Valid {
		d.DecidedAt = utils.Ptr(p.DecidedAt.Time.Format(utils.DateTimeLayout))
	}

	ids := []int64{int64(p.ProposerID)}
	if p.DecidedBy.Valid {
		ids = append(ids, int64(p.DecidedBy.Uint64))
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve users for pending change", zap.Error(err))
		return d
	}
	if u, ok := users[p.ProposerID]; ok {
		d.Proposer = dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}
	}
	if p.DecidedBy.Valid {
		if u, ok := users[p.DecidedBy.Uint64]; ok {
			d.DecidedBy = &dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}
		}
	}
	return d
}
