package services

import (
	"context"

	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/entities"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	"lead-system/pkg/idtoken"
	"lead-system/pkg/utils"
)

type RecordServiceInterface interface {
	GetRecords(ctx context.Context, filter dto.RecordFilter) ([]dto.RecordDTO, uint64, error)
	FindRecord(ctx context.Context, token string) (*dto.RecordDTO, error)
	GetHistory(ctx context.Context, token string) ([]dto.RecordHistoryDTO, error)
}

type RecordService struct {
	recordRepo  repositories.RecordRepositoryInterface
	historyRepo repositories.RecordHistoryRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	codec       *idtoken.Codec
	logger      *zap.Logger
}

func NewRecordService(
	recordRepo repositories.RecordRepositoryInterface,
	historyRepo repositories.RecordHistoryRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	codec *idtoken.Codec,
	logger *zap.Logger,
) RecordServiceInterface {
	return &RecordService{
		recordRepo:  recordRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		codec:       codec,
		logger:      logger,
	}
}

// scopeFilter narrows the list to what the caller may see: commercials their
// own records, managers their centre. Admins and confirmers see everything.
func (s *RecordService) scopeFilter(ctx context.Context, filter dto.RecordFilter) (dto.RecordFilter, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return filter, err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return filter, err
	}

	switch role {
	case constants.RoleCommercial:
		filter.CommercialID = actorID
	case constants.RoleManager:
		actor, err := s.userRepo.FindByID(ctx, actorID)
		if err != nil {
			return filter, err
		}
		if actor.CentreID.Valid {
			filter.CentreID = actor.CentreID.Uint64
		}
	}
	return filter, nil
}

func (s *RecordService) GetRecords(ctx context.Context, filter dto.RecordFilter) ([]dto.RecordDTO, uint64, error) {
	filter, err := s.scopeFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	records, total, err := s.recordRepo.GetRecords(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.RecordDTO, 0, len(records))
	for i := range records {
		out = append(out, *s.toDTO(ctx, &records[i]))
	}
	return out, total, nil
}

func (s *RecordService) FindRecord(ctx context.Context, token string) (*dto.RecordDTO, error) {
	id, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	rec, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, rec), nil
}

func (s *RecordService) GetHistory(ctx context.Context, token string) ([]dto.RecordHistoryDTO, error) {
	id, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		actorIDs = append(actorIDs, int64(e.ActorID))
	}
	actors, err := s.userRepo.FindByIDs(ctx, actorIDs)
	if err != nil {
		s.logger.Warn("failed to resolve history actors", zap.Error(err))
		actors = map[uint64]entities.User{}
	}

	out := make([]dto.RecordHistoryDTO, 0, len(entries))
	for _, e := range entries {
		d := dto.RecordHistoryDTO{
			ID:        e.ID,
			State:     string(e.State),
			Payload:   e.Payload,
			Actor:     dto.ShortUserDTO{ID: e.ActorID},
			CreatedAt: e.CreatedAt.Format(utils.DateTimeLayout),
		}
		if e.SubState.Valid {
			d.SubState = utils.Ptr(e.SubState.String)
		}
		if u, ok := actors[e.ActorID]; ok {
			d.Actor = dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *RecordService) toDTO(ctx context.Context, rec *entities.Record) *dto.RecordDTO {
	d := &dto.RecordDTO{
		Token:            s.codec.Encode(rec.ID),
		State:            string(rec.State),
		CentreID:         rec.CentreID,
		ProductType:      string(rec.ProductType),
		ClientName:       rec.ClientName,
		ClientPhone:      rec.ClientPhone,
		Commercials:      []dto.ShortUserDTO{},
		Confirmers:       []dto.ShortUserDTO{},
		IsUrgent:         rec.IsUrgent,
		StructuredFields: rec.StructuredFields,
		CreatedAt:        rec.CreatedAt.Format(utils.DateTimeLayout),
		UpdatedAt:        rec.UpdatedAt.Format(utils.DateTimeLayout),
	}
	if rec.SubState.Valid {
		d.SubState = utils.Ptr(rec.SubState.String)
	}
	if rec.AppointmentAt.Valid {
		d.AppointmentAt = utils.Ptr(rec.AppointmentAt.Time)
	}

	ids := append([]int64{}, rec.CommercialIDs...)
	ids = append(ids, rec.ConfirmerIDs...)
	if rec.AgentID.Valid {
		ids = append(ids, int64(rec.AgentID.Uint64))
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve assigned users", zap.Uint64("recordID", rec.ID), zap.Error(err))
		return d
	}

	short := func(id uint64) (dto.ShortUserDTO, bool) {
		u, ok := users[id]
		if !ok {
			return dto.ShortUserDTO{ID: id}, false
		}
		return dto.ShortUserDTO{ID: u.ID, Fio: u.Fio, Role: string(u.Role)}, true
	}
	if rec.AgentID.Valid {
		if u, ok := short(rec.AgentID.Uint64); ok {
			d.Agent = &u
		}
	}
	for _, id := range rec.CommercialIDs {
		u, _ := short(uint64(id))
		d.Commercials = append(d.Commercials, u)
	}
	for _, id := range rec.ConfirmerIDs {
		u, _ := short(uint64(id))
		d.Confirmers = append(d.Confirmers, u)
	}
	return d
}
