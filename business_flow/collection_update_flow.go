package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
)

// CollectionUpdateFlow handles free-text collection notes
type CollectionUpdateFlow interface {
	ListDebtorUpdates(ctx context.Context, userID, debtorID uint) ([]dto.CollectionUpdateDTO, error)
	CreateUpdate(ctx context.Context, userID, debtorID uint, req *dto.CreateCollectionUpdateRequest) (*dto.CollectionUpdateDTO, error)
	ListUpdates(ctx context.Context, userID uint, req *dto.ListCollectionUpdatesRequest) (*dto.ListCollectionUpdatesResponse, error)
}

type CollectionUpdateFlowImpl struct {
	userRepo   repository.UserRepository
	debtorRepo repository.DebtorRepository
	updateRepo repository.CollectionUpdateRepository
	now        func() time.Time
}

func NewCollectionUpdateFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	updateRepo repository.CollectionUpdateRepository,
) CollectionUpdateFlow {
	return &CollectionUpdateFlowImpl{
		userRepo:   userRepo,
		debtorRepo: debtorRepo,
		updateRepo: updateRepo,
		now:        utils.UTCNow,
	}
}

func (f *CollectionUpdateFlowImpl) ListDebtorUpdates(ctx context.Context, userID, debtorID uint) ([]dto.CollectionUpdateDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	rows, err := f.updateRepo.ByFilter(ctx, models.CollectionUpdateFilter{DebtorID: &debtor.ID}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	return collectionUpdateDTOs(rows), nil
}

func (f *CollectionUpdateFlowImpl) CreateUpdate(ctx context.Context, userID, debtorID uint, req *dto.CreateCollectionUpdateRequest) (*dto.CollectionUpdateDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(req.CollectionNotes)
	if notes == "" {
		return nil, NewValidationError("NOTES_REQUIRED", "collection_notes is required")
	}

	update := &models.CollectionUpdate{
		DebtorID:        debtor.ID,
		AgentID:         utils.ToPtr(scope.UserID),
		UpdateDate:      f.now(),
		CollectionNotes: notes,
	}
	if err := f.updateRepo.Save(ctx, update); err != nil {
		return nil, err
	}
	update.Debtor = debtor
	out := ToCollectionUpdateDTO(*update)
	return &out, nil
}

func (f *CollectionUpdateFlowImpl) ListUpdates(ctx context.Context, userID uint, req *dto.ListCollectionUpdatesRequest) (*dto.ListCollectionUpdatesResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	filter := models.CollectionUpdateFilter{DebtorID: req.DebtorID, Scope: scope}
	if scope.IsAdmin() {
		filter.AgentID = req.AgentID
	}
	if req.Period != "" {
		start, ok := utils.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, ErrInvalidPeriod
		}
		filter.UpdatedAfter = &start
	}

	limit, offset, page, pageSize := pageBounds(req.Page, req.PageSize)
	total, err := f.updateRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.updateRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ListCollectionUpdatesResponse{
		Updates:    collectionUpdateDTOs(rows),
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func collectionUpdateDTOs(rows []*models.CollectionUpdate) []dto.CollectionUpdateDTO {
	out := make([]dto.CollectionUpdateDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, ToCollectionUpdateDTO(*c))
	}
	return out
}
