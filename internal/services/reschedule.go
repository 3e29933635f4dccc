package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/idtoken"
	"lead-system/pkg/utils"
)

type RescheduleServiceInterface interface {
	Propose(ctx context.Context, recordToken string, data dto.ProposeRescheduleDTO) (*dto.RescheduleRequestDTO, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
	ListInbox(ctx context.Context, pendingOnly bool) ([]dto.RescheduleRequestDTO, error)
	ListByRecord(ctx context.Context, recordToken string) ([]dto.RescheduleRequestDTO, error)
}

// RescheduleService handles décalage requests: advisory proposals to shift a
// confirmed appointment, routed to a human recipient and never auto-applied.
type RescheduleService struct {
	rescheduleRepo repositories.RescheduleRepositoryInterface
	recordRepo     repositories.RecordRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	codec          *idtoken.Codec
	logger         *zap.Logger
}

func NewRescheduleService(
	rescheduleRepo repositories.RescheduleRepositoryInterface,
	recordRepo repositories.RecordRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	codec *idtoken.Codec,
	logger *zap.Logger,
) RescheduleServiceInterface {
	return &RescheduleService{
		rescheduleRepo: rescheduleRepo,
		recordRepo:     recordRepo,
		userRepo:       userRepo,
		codec:          codec,
		logger:         logger,
	}
}

// resolveRecipient applies the routing rule: a commercial's request goes to
// the record's primary confirmer, a confirmer files it to themself, an
// administrative caller must name the confirmer explicitly.
func (s *RescheduleService) resolveRecipient(actor *entities.User, rec *entities.Record, explicit uint64) (uint64, error) {
	switch actor.Role {
	case constants.RoleCommercial:
		confirmer, ok := rec.FirstConfirmer()
		if !ok {
			return 0, apperrors.ErrNoConfirmerAssigned
		}
		return confirmer, nil
	case constants.RoleConfirmer:
		return actor.ID, nil
	case constants.RoleAdmin, constants.RoleManager:
		if explicit == 0 {
			return 0, apperrors.ErrRecipientRequired
		}
		return explicit, nil
	}
	return 0, apperrors.ErrForbidden
}

func (s *RescheduleService) Propose(ctx context.Context, recordToken string, data dto.ProposeRescheduleDTO) (*dto.RescheduleRequestDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	recordID, err := s.codec.Decode(recordToken)
	if err != nil {
		return nil, err
	}
	rec, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(data.Message) == "" {
		return nil, apperrors.NewInvalidInputError("a reschedule request needs a message for its recipient")
	}
	if !constants.IsAllowedRescheduleOffset(data.OffsetMinutes) {
		return nil, apperrors.NewInvalidInputError("offset of %d minutes is not in the allowed set", data.OffsetMinutes)
	}
	if actor.Role == constants.RoleCommercial && !rec.IsAssignedCommercial(actor.ID) {
		return nil, apperrors.ErrForbidden
	}
	if !rec.AppointmentAt.Valid {
		return nil, apperrors.ErrNoAppointment
	}

	// The server's appointment time is the source of truth for originalTime.
	// A caller that passes what its UI last displayed gets a conflict when
	// someone moved the appointment first.
	original := rec.AppointmentAt.Time
	if data.ObservedTime != nil && !data.ObservedTime.Equal(original) {
		return nil, apperrors.ErrStaleOriginal
	}

	recipientID, err := s.resolveRecipient(actor, rec, data.RecipientID)
	if err != nil {
		return nil, err
	}

	req := &entities.RescheduleRequest{
		RecordID:      rec.ID,
		ProposerID:    actorID,
		RecipientID:   recipientID,
		OriginalTime:  original,
		OffsetMinutes: data.OffsetMinutes,
		NewTime:       original.Add(time.Duration(data.OffsetMinutes) * time.Minute),
		Message:       strings.TrimSpace(data.Message),
	}
	if err := s.rescheduleRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("reschedule request created",
		zap.String("id", req.ID.String()),
		zap.Uint64("recordID", rec.ID),
		zap.Uint64("recipientID", recipientID),
		zap.Int("offsetMinutes", data.OffsetMinutes),
	)
	return s.toDTO(ctx, req), nil
}

// Acknowledge marks a request handled by its recipient. There is no apply
// step: moving the appointment itself goes through the transition engine.
func (s *RescheduleService) Acknowledge(ctx context.Context, id uuid.UUID) error {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	req, err := s.rescheduleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return err
	}
	if req.RecipientID != actorID && role != constants.RoleAdmin {
		return apperrors.ErrForbidden
	}
	return s.rescheduleRepo.Acknowledge(ctx, id)
}

func (s *RescheduleService) ListInbox(ctx context.Context, pendingOnly bool) ([]dto.RescheduleRequestDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := s.rescheduleRepo.ListByRecipient(ctx, actorID, pendingOnly)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, reqs), nil
}

func (s *RescheduleService) ListByRecord(ctx context.Context, recordToken string) ([]dto.RescheduleRequestDTO, error) {
	recordID, err := s.codec.Decode(recordToken)
	if err != nil {
		return nil, err
	}
	reqs, err := s.rescheduleRepo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, reqs), nil
}

func (s *RescheduleService) toDTOs(ctx context.Context, reqs []entities.RescheduleRequest) []dto.RescheduleRequestDTO {
	out := make([]dto.RescheduleRequestDTO, 0, len(reqs))
	for i := range reqs {
		out = append(out, *s.toDTO(ctx, &reqs[i]))
	}
	return out
}

func (s *RescheduleService) toDTO(ctx context.Context, req *entities.RescheduleRequest) *dto.RescheduleRequestDTO {
	d := &dto.RescheduleRequestDTO{
		ID:            req.ID.String(),
		RecordToken:   s.codec.Encode(req.RecordID),
		Proposer:      dto.ShortUserDTO{ID: req.ProposerID},
		Recipient:     dto.ShortUserDTO{ID: req.RecipientID},
		OriginalTime:  req.OriginalTime,
		OffsetMinutes: req.OffsetMinutes,
		NewTime:       req.NewTime,
		Message:       req.Message,
		Status:        string(req.Status),
		CreatedAt:     req.CreatedAt.Format(utils.DateTimeLayout),
	}
	if req.AcknowledgedAt.Valid {
		d.AcknowledgedAt = utils.Ptr(req.AcknowledgedAt.Time.Format(utils.DateTimeLayout))
	}

	users, err := s.userRepo.FindByIDs(ctx, []int64{int64(req.ProposerID), int64(req.RecipientID)})
	if err != nil {
		s.logger.Warn("failed to resolve users for reschedule request", zap.Error(err))
		return d
	}
	if u, ok := users[req.ProposerID]; ok {
		d.Proposer = dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}
	}
	if u, ok := users[req.RecipientID]; ok {
		d.Recipient = dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}
	}
	return d
}
